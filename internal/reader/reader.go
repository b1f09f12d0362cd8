// Package reader streams forensics CSV exports as bounded row batches.
// A Reader is single-use and strictly sequential; passes that need to walk
// the same file again re-open it, optionally skipping rows already seen.
package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"ForensicFlow/internal/model"

	"golang.org/x/text/encoding"
)

// DefaultChunkSize is the row count per batch when none is configured.
const DefaultChunkSize = 50000

// Options adjusts how a file is opened.
type Options struct {
	// ChunkSize is the maximum rows per batch. Defaults to DefaultChunkSize.
	ChunkSize int

	// Encoding overrides charset auto-detection, mainly for tests.
	Encoding encoding.Encoding
}

// Reader yields fixed-size row batches from one CSV file in file order.
// Malformed rows are counted and dropped, never fatal: forensics exports
// routinely carry truncated trailer lines and stray quotes.
type Reader struct {
	f         *os.File
	cr        *csv.Reader
	header    *model.Header
	columns   model.ColumnMap
	chunkSize int
	encoding  string
	malformed int64
	rowsRead  int64
	done      bool
}

// Open prepares a file for chunked reading: detects its encoding, reads the
// header record and resolves column-name variants against it.
func Open(path string, opts Options) (*Reader, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	enc := opts.Encoding
	encName := "utf-8"
	if enc == nil {
		var err error
		enc, encName, err = DetectEncoding(path)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}

	cr := csv.NewReader(decodingReader(f, enc))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	headerRec, err := cr.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("file %q has no header row", path)
		}
		return nil, fmt.Errorf("failed to read header of %q: %w", path, err)
	}

	header := model.NewHeader(headerRec)
	return &Reader{
		f:         f,
		cr:        cr,
		header:    header,
		columns:   model.MapColumns(header),
		chunkSize: opts.ChunkSize,
		encoding:  encName,
	}, nil
}

// Header returns the column layout shared by all batches.
func (r *Reader) Header() *model.Header {
	return r.header
}

// Columns returns the canonical-to-actual column mapping for this file.
func (r *Reader) Columns() model.ColumnMap {
	return r.columns
}

// Encoding names the charset the file is being decoded with.
func (r *Reader) Encoding() string {
	return r.encoding
}

// Malformed returns how many unparseable rows were dropped so far.
func (r *Reader) Malformed() int64 {
	return r.malformed
}

// RowsRead returns how many data rows have been consumed, dropped rows and
// skipped rows included.
func (r *Reader) RowsRead() int64 {
	return r.rowsRead
}

// Skip discards the next n data rows after the header, so a pass can resume
// from an arbitrary row offset. Running past the end of the file is not an
// error; the next call to Next reports io.EOF.
func (r *Reader) Skip(n int) error {
	for i := 0; i < n; i++ {
		if r.done {
			return nil
		}
		_, err := r.cr.Read()
		switch {
		case err == nil:
			r.rowsRead++
		case err == io.EOF:
			r.done = true
			return nil
		case isParseError(err):
			r.rowsRead++
			r.malformed++
		default:
			return fmt.Errorf("failed to skip row: %w", err)
		}
	}
	return nil
}

// Next returns the next batch of at most ChunkSize rows. The final batch may
// be shorter; once the file is exhausted Next returns (nil, io.EOF).
func (r *Reader) Next() (*model.Batch, error) {
	if r.done {
		return nil, io.EOF
	}

	rows := make([][]string, 0, r.chunkSize)
	for len(rows) < r.chunkSize {
		rec, err := r.cr.Read()
		switch {
		case err == nil:
			r.rowsRead++
			rows = append(rows, rec)
		case err == io.EOF:
			r.done = true
		case isParseError(err):
			r.rowsRead++
			r.malformed++
			continue
		default:
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if r.done {
			break
		}
	}

	if len(rows) == 0 {
		return nil, io.EOF
	}
	return &model.Batch{Header: r.header, Rows: rows}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

func isParseError(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}
