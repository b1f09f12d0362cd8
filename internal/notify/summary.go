package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
)

// FileOutcome is one file's result line in the batch email.
type FileOutcome struct {
	Name   string
	Err    error
	Events int64
	Months int
}

// ComposeBatchEmail builds the subject and HTML body summarizing one batch
// run. The body is written in Markdown and rendered to HTML.
func ComposeBatchEmail(outcomes []FileOutcome, elapsed time.Duration) (subject, body string) {
	failed := 0
	var totalEvents int64
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		} else {
			totalEvents += o.Events
		}
	}

	subject = fmt.Sprintf("ForensicFlow batch complete: %d files, %d failed", len(outcomes), failed)

	var md strings.Builder
	md.WriteString("# ForensicFlow Batch Summary\n\n")
	md.WriteString(fmt.Sprintf("Processed **%d** files in %s. Total events: **%d**.\n\n",
		len(outcomes), elapsed.Round(time.Second), totalEvents))

	md.WriteString("| File | Status | Events | Trend Months |\n")
	md.WriteString("|---|---|---|---|\n")
	for _, o := range outcomes {
		if o.Err != nil {
			md.WriteString(fmt.Sprintf("| %s | FAILED: %v | - | - |\n", o.Name, o.Err))
			continue
		}
		md.WriteString(fmt.Sprintf("| %s | ok | %d | %d |\n", o.Name, o.Events, o.Months))
	}

	body = string(markdown.ToHTML([]byte(md.String()), nil, nil))
	return subject, body
}
