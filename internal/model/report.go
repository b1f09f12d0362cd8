package model

import (
	"fmt"
	"time"
)

// InsufficientTrendData is the note embedded in a report when month
// validation left nothing to chart. It replaces an error on purpose: a file
// whose range never encloses a clean month is degraded, not broken.
const InsufficientTrendData = "insufficient data for trend analysis"

// FileInfo identifies one analyzed source file.
type FileInfo struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
	Encoding   string `json:"encoding"`
	DateFormat string `json:"date_format"`
}

// DateRange is the observed min/max event time of a file.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// ProcessingSummary captures how a file's pass went, for the report footer
// and the batch table.
type ProcessingSummary struct {
	EstimatedRows   int64         `json:"estimated_rows"`
	ProcessedRows   int64         `json:"processed_rows"`
	Chunks          int           `json:"chunks"`
	CandidateMonths int           `json:"candidate_months"`
	ValidatedMonths int           `json:"validated_months"`
	ExcludedMonths  []string      `json:"excluded_months,omitempty"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

// UnitDisplay describes how a raw metric is scaled for presentation.
type UnitDisplay struct {
	Label   string  `json:"label"`
	Divisor float64 `json:"divisor"`
}

// Apply scales a raw value and renders it with the unit label.
func (u UnitDisplay) Apply(raw float64) string {
	if u.Divisor <= 0 {
		return fmt.Sprintf("%.2f", raw)
	}
	scaled := raw / u.Divisor
	if u.Label == "" {
		return fmt.Sprintf("%.2f", scaled)
	}
	return fmt.Sprintf("%.2f %s", scaled, u.Label)
}

// Report is the fully assembled output for one file: holistic and monthly
// summaries plus the metadata writers and the API hand out.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	File        FileInfo  `json:"file"`
	Range       DateRange `json:"date_range"`

	Holistic *Summary `json:"holistic"`

	// Months holds the finalized monthly summaries keyed "YYYY-MM";
	// MonthOrder preserves chronology for renderers.
	Months     map[string]*Summary `json:"months"`
	MonthOrder []string            `json:"month_order"`

	TrendsAvailable bool   `json:"trends_available"`
	TrendNote       string `json:"trend_note,omitempty"`

	VolumeUnit  UnitDisplay `json:"volume_unit"`
	PacketsUnit UnitDisplay `json:"packets_unit"`

	Processing ProcessingSummary `json:"processing"`
}
