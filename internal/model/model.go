package model

import "strings"

// Header describes the column layout shared by every row of one CSV source.
// Lookups are by exact column name; duplicate names keep the first position.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a Header from the raw header record of a file.
// Surrounding whitespace is trimmed from every name.
func NewHeader(names []string) *Header {
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		name = strings.TrimSpace(name)
		h.names[i] = name
		if _, ok := h.index[name]; !ok {
			h.index[name] = i
		}
	}
	return h
}

// Index returns the position of a column, or false when the file lacks it.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Has reports whether the column exists in this file.
func (h *Header) Has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Names returns the column names in file order.
func (h *Header) Names() []string {
	return h.names
}

// Len returns the number of columns.
func (h *Header) Len() int {
	return len(h.names)
}

// Missing returns the subset of required that the header does not contain.
func (h *Header) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if !h.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Batch is a bounded run of rows read from one file in order. All rows share
// the same Header; short rows simply report absent values for the trailing
// columns. Every field is raw text exactly as it appeared in the file.
type Batch struct {
	Header *Header
	Rows   [][]string
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return len(b.Rows)
}

// Value returns the raw field of row for the named column. ok is false when
// the column is not in the header or the row is too short to reach it.
func (b *Batch) Value(row []string, name string) (string, bool) {
	i, ok := b.Header.Index(name)
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// Field is Value with placeholder handling: empty strings and the literal
// "nan" markers some exports carry report ok=false.
func (b *Batch) Field(row []string, name string) (string, bool) {
	v, ok := b.Value(row, name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "nan") {
		return "", false
	}
	return v, true
}

// RowMap flattens one row into a column name to value map, covering every
// header column. Fields the row is too short to contain are filled with
// "N/A" so provenance snapshots always carry the full column set.
func (b *Batch) RowMap(row []string) map[string]string {
	m := make(map[string]string, b.Header.Len())
	for i, name := range b.Header.Names() {
		if i < len(row) {
			m[name] = row[i]
		} else {
			m[name] = "N/A"
		}
	}
	return m
}
