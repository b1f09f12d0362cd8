// Package filter drops configured row classes from batches before they reach
// any scanner or accumulator.
package filter

import "ForensicFlow/internal/model"

// Rules maps a column name to the set of values that disqualify a row.
// Rules for columns a file does not carry are ignored for that file; the
// remaining rules combine with AND, so a row must match every applicable
// rule to be dropped.
type Rules map[string]map[string]struct{}

// FromConfig builds Rules from the configured column-to-values exclusions.
func FromConfig(exclude map[string][]string) Rules {
	rules := make(Rules, len(exclude))
	for column, values := range exclude {
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		rules[column] = set
	}
	return rules
}

// Apply returns the batch with excluded rows removed, preserving row order.
// The input batch is not modified; when no rule applies the batch is
// returned as-is. Apply is idempotent.
func Apply(b *model.Batch, rules Rules) *model.Batch {
	if b == nil || len(rules) == 0 {
		return b
	}

	applicable := make([]string, 0, len(rules))
	for column := range rules {
		if b.Header.Has(column) {
			applicable = append(applicable, column)
		}
	}
	if len(applicable) == 0 {
		return b
	}

	kept := make([][]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		if !excluded(b, row, applicable, rules) {
			kept = append(kept, row)
		}
	}
	return &model.Batch{Header: b.Header, Rows: kept}
}

// excluded reports whether every applicable rule matches the row.
func excluded(b *model.Batch, row []string, applicable []string, rules Rules) bool {
	for _, column := range applicable {
		v, ok := b.Value(row, column)
		if !ok {
			return false
		}
		if _, hit := rules[column][v]; !hit {
			return false
		}
	}
	return true
}
