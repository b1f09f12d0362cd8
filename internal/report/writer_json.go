package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ForensicFlow/internal/model"
)

// JSONWriter persists the assembled report as one indented JSON file.
type JSONWriter struct {
	OutputDir string
}

// Format names the output form.
func (w *JSONWriter) Format() string { return "json" }

// Write writes the report to <output>/<stem>_<timestamp>/report.json and
// returns the path.
func (w *JSONWriter) Write(report *model.Report) (string, error) {
	dir, err := reportDir(w.OutputDir, report)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// reportDir creates the per-report output directory, named after the input
// file stem and the generation timestamp so re-runs never clobber.
func reportDir(outputDir string, report *model.Report) (string, error) {
	stem := strings.TrimSuffix(report.File.Name, filepath.Ext(report.File.Name))
	dir := filepath.Join(outputDir, fmt.Sprintf("%s_%s", stem, report.GeneratedAt.Format("2006-01-02_15-04-05")))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	return dir, nil
}
