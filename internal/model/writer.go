package model

// ReportWriter renders an assembled report into one persistent form.
type ReportWriter interface {
	// Write persists the report and returns the path it was written to.
	Write(report *Report) (string, error)

	// Format names the output form, e.g. "json" or "html".
	Format() string
}
