// Package months decides which calendar months of a file's date range are
// sound enough for trend analysis. Candidacy is pure calendar math; the
// validator then has to find real evidence inside the data.
package months

import (
	"time"

	"ForensicFlow/internal/model"
)

// Candidates enumerates the calendar months fully enclosed by the observed
// [min, max] event range, in chronological order. The month of min counts
// only when min falls on day 1; the month of max counts only when max
// reaches the month's final second.
func Candidates(min, max time.Time) []model.Month {
	if min.IsZero() || max.IsZero() || max.Before(min) {
		return nil
	}

	m := model.MonthOf(min)
	if min.Day() != 1 {
		m = m.Next()
	}

	var out []model.Month
	for !m.End().After(max) {
		out = append(out, m)
		m = m.Next()
	}
	return out
}
