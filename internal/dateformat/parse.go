package dateformat

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Parser parses event timestamps with a resolved primary layout, the
// configured candidates as fallback, and a last-resort free-form parse.
// One Parser is built per file after resolution and shared by every pass.
type Parser struct {
	Layout  string
	Formats []string
}

// Parse returns the parsed time and true, or the zero time and false when
// the value cannot be read as a timestamp at all. A single odd value never
// fails a batch; callers skip the row instead.
func (p Parser) Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "nan") {
		return time.Time{}, false
	}

	if p.Layout != "" {
		if t, err := time.Parse(p.Layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range p.Formats {
		if layout == p.Layout {
			continue
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseAny(value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
