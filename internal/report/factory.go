package report

import (
	"fmt"

	"ForensicFlow/internal/model"
)

// WriterFactory builds a report writer that emits into outputDir.
type WriterFactory func(outputDir string) model.ReportWriter

// registry maps output format names to their factories.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a writer factory under a format name.
func RegisterWriter(format string, factory WriterFactory) {
	if _, exists := registry[format]; exists {
		panic(fmt.Sprintf("report writer format %q already registered", format))
	}
	registry[format] = factory
}

// NewWriters builds one writer per requested format.
func NewWriters(formats []string, outputDir string) ([]model.ReportWriter, error) {
	writers := make([]model.ReportWriter, 0, len(formats))
	for _, format := range formats {
		factory, ok := registry[format]
		if !ok {
			return nil, fmt.Errorf("unknown report format: %q", format)
		}
		writers = append(writers, factory(outputDir))
	}
	return writers, nil
}

func init() {
	RegisterWriter("json", func(outputDir string) model.ReportWriter {
		return &JSONWriter{OutputDir: outputDir}
	})
	RegisterWriter("html", func(outputDir string) model.ReportWriter {
		return &HTMLWriter{OutputDir: outputDir}
	})
}
