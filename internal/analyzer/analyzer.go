// Package analyzer orchestrates batch runs: it discovers input files, runs
// the per-file pipeline, hands reports to writers and optional sinks, and
// renders the batch summary. Failures stay per-file; one broken export never
// stops the rest of the batch.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/olekukonko/tablewriter"

	"ForensicFlow/internal/config"
	"ForensicFlow/internal/event"
	"ForensicFlow/internal/export"
	"ForensicFlow/internal/metrics"
	"ForensicFlow/internal/model"
	"ForensicFlow/internal/notify"
	"ForensicFlow/internal/processor"
	"ForensicFlow/internal/report"
)

// Analyzer wires the pipeline to its sinks for one configured run.
type Analyzer struct {
	cfg       *config.Config
	proc      *processor.Processor
	assembler *report.Assembler
	writers   []model.ReportWriter
	exporter  *export.ClickHouseExporter
	publisher *event.Publisher
	notifier  model.Notifier
	log       *slog.Logger
	clock     clockwork.Clock
}

// New builds an Analyzer from the loaded configuration. Optional sinks
// (ClickHouse export, NATS events, email) attach only when enabled.
func New(cfg *config.Config, log *slog.Logger, clock clockwork.Clock) (*Analyzer, error) {
	if log == nil {
		log = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	proc, err := processor.New(processor.Config{
		ChunkSize:       cfg.Analyzer.ChunkSize,
		MemoryCeilingGB: cfg.Analyzer.MemoryCeilingGB,
		RequiredColumns: cfg.Columns.Required,
		DateFormats:     cfg.Dates.Formats,
		ForceFormat:     cfg.Dates.ForceFormat,
		Exclude:         cfg.Filters.Exclude,
		Logger:          log,
		Clock:           clock,
	})
	if err != nil {
		return nil, err
	}

	writers, err := report.NewWriters(cfg.Analyzer.OutputFormats, cfg.Analyzer.OutputDir)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		cfg:  cfg,
		proc: proc,
		assembler: report.NewAssembler(
			model.UnitDisplay{Label: cfg.Units.Volume.Label, Divisor: cfg.Units.Volume.Divisor},
			model.UnitDisplay{Label: cfg.Units.Packets.Label, Divisor: cfg.Units.Packets.Divisor},
			clock,
		),
		writers: writers,
		log:     log,
		clock:   clock,
	}

	if cfg.Export.ClickHouse.Enabled {
		exporter, err := export.NewClickHouseExporter(cfg.Export.ClickHouse, log)
		if err != nil {
			return nil, err
		}
		a.exporter = exporter
	}
	if cfg.Events.NATS.Enabled {
		publisher, err := event.NewPublisher(cfg.Events.NATS, log)
		if err != nil {
			return nil, err
		}
		a.publisher = publisher
	}
	if cfg.Notify.Enabled {
		a.notifier = notify.NewEmailNotifier(cfg.Notify.SMTP)
	}
	return a, nil
}

// Close releases the optional sinks.
func (a *Analyzer) Close() {
	if a.exporter != nil {
		a.exporter.Close()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
}

// ProcessFile runs the full pipeline for one file and pushes the assembled
// report through every configured writer and sink.
func (a *Analyzer) ProcessFile(ctx context.Context, path string) (*model.Report, error) {
	started := a.clock.Now()

	res, err := a.proc.ProcessFile(path)
	if err != nil {
		metrics.FilesProcessed.WithLabelValues("failed").Inc()
		return nil, err
	}

	rep := a.assembler.Assemble(res)
	for _, w := range a.writers {
		path, err := w.Write(rep)
		if err != nil {
			metrics.FilesProcessed.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("%s writer failed: %w", w.Format(), err)
		}
		a.log.Info("report written", "format", w.Format(), "path", path)
	}

	if a.exporter != nil {
		if err := a.exporter.Export(ctx, rep); err != nil {
			// Export is a sink, not the deliverable; the report on disk
			// already succeeded.
			a.log.Error("clickhouse export failed", "file", rep.File.Name, "error", err)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.PublishCompleted(rep); err != nil {
			a.log.Error("failed to publish completion event", "file", rep.File.Name, "error", err)
		}
	}

	metrics.FilesProcessed.WithLabelValues("ok").Inc()
	metrics.RowsRead.Add(float64(rep.Processing.ProcessedRows))
	metrics.EventsAccumulated.Add(float64(rep.Holistic.TotalEvents))
	metrics.FileDuration.Observe(a.clock.Now().Sub(started).Seconds())
	return rep, nil
}

// RunBatch discovers every input under the configured directory, processes
// each sequentially, prints the batch table and sends the optional summary
// email. The returned error covers setup only; per-file failures are
// recorded in the outcomes.
func (a *Analyzer) RunBatch(ctx context.Context) error {
	started := a.clock.Now()

	discovery, err := Discover(a.cfg.Analyzer.InputDir)
	if err != nil {
		return err
	}
	defer discovery.Cleanup()

	if len(discovery.Files) == 0 {
		a.log.Warn("no CSV or ZIP inputs found", "dir", a.cfg.Analyzer.InputDir)
		return nil
	}
	a.log.Info("starting batch", "files", len(discovery.Files))

	outcomes := make([]notify.FileOutcome, 0, len(discovery.Files))
	for _, path := range discovery.Files {
		rep, err := a.ProcessFile(ctx, path)
		if err != nil {
			a.log.Error("file analysis failed", "file", path, "error", err)
			outcomes = append(outcomes, notify.FileOutcome{Name: path, Err: err})
			continue
		}
		outcomes = append(outcomes, notify.FileOutcome{
			Name:   rep.File.Name,
			Events: rep.Holistic.TotalEvents,
			Months: rep.Processing.ValidatedMonths,
		})
	}

	elapsed := a.clock.Now().Sub(started)
	renderBatchTable(outcomes)

	if a.notifier != nil {
		subject, body := notify.ComposeBatchEmail(outcomes, elapsed)
		if err := a.notifier.Send(subject, body); err != nil {
			a.log.Error("failed to send batch summary email", "error", err)
		}
	}
	return nil
}

// renderBatchTable prints the per-file outcomes to stdout.
func renderBatchTable(outcomes []notify.FileOutcome) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"File", "Status", "Events", "Trend Months"})

	for _, o := range outcomes {
		if o.Err != nil {
			table.Append([]string{o.Name, fmt.Sprintf("FAILED: %v", o.Err), "-", "-"})
			continue
		}
		table.Append([]string{
			o.Name, "ok",
			fmt.Sprintf("%d", o.Events),
			fmt.Sprintf("%d", o.Months),
		})
	}
	table.Render()
}
