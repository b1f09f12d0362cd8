package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComposeBatchEmail(t *testing.T) {
	t.Parallel()
	outcomes := []FileOutcome{
		{Name: "jan.csv", Events: 1200, Months: 3},
		{Name: "broken.csv", Err: errors.New("required columns missing")},
	}

	subject, body := ComposeBatchEmail(outcomes, 90*time.Second)

	assert.Equal(t, "ForensicFlow batch complete: 2 files, 1 failed", subject)
	// Markdown rendered to HTML: table cells, bold totals, failure reason.
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "jan.csv")
	assert.Contains(t, body, "1200")
	assert.Contains(t, body, "required columns missing")
	assert.Contains(t, body, "<strong>1200</strong>")
}
