// Package processor runs the per-file analysis pipeline: structure checks,
// date-format resolution, the date-range scan, month completeness
// validation and the monthly plus holistic accumulation passes. Every pass
// streams the file in bounded chunks through the same reader.
package processor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"ForensicFlow/internal/dateformat"
	"ForensicFlow/internal/filter"
	"ForensicFlow/internal/model"
	"ForensicFlow/internal/months"
	"ForensicFlow/internal/reader"
	"ForensicFlow/internal/stats"
)

// Fatal per-file conditions. The orchestrator records them against the file
// and moves on to the next one.
var (
	ErrMissingColumns = errors.New("required columns missing")
	ErrNoValidDates   = errors.New("no valid dates found in file")
)

// sampleCap bounds how many start-time values feed date-format detection.
const sampleCap = 1000

// Config carries the values the pipeline needs; the orchestrator builds it
// from the loaded configuration so tests can supply isolated ones.
type Config struct {
	ChunkSize       int
	MemoryCeilingGB float64
	RequiredColumns []string
	DateFormats     []string
	ForceFormat     string
	Exclude         map[string][]string

	Logger *slog.Logger
	Clock  clockwork.Clock
}

// Result is everything one file's pipeline produced, ready for the report
// assembler.
type Result struct {
	File     model.FileInfo
	Range    model.DateRange
	Holistic *model.Summary

	Months     map[string]*model.Summary
	MonthOrder []string

	ExcludedMonths  []string
	TrendsAvailable bool

	Processing model.ProcessingSummary
}

// Processor analyzes one file at a time, sequentially. It holds no per-file
// state and may be reused across files.
type Processor struct {
	cfg      Config
	rules    filter.Rules
	resolver *dateformat.Resolver
	log      *slog.Logger
	clock    clockwork.Clock
	mem      *memoryAdvisor
}

// New builds a Processor.
func New(cfg Config) (*Processor, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = reader.DefaultChunkSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if len(cfg.DateFormats) == 0 {
		return nil, errors.New("processor: at least one date format is required")
	}

	resolver, err := dateformat.New(dateformat.Config{
		Formats: cfg.DateFormats,
		Clock:   cfg.Clock,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Processor{
		cfg:      cfg,
		rules:    filter.FromConfig(cfg.Exclude),
		resolver: resolver,
		log:      cfg.Logger,
		clock:    cfg.Clock,
		mem:      newMemoryAdvisor(cfg.MemoryCeilingGB, cfg.Logger),
	}, nil
}

// ProcessFile runs the whole pipeline for one file and returns its Result.
// Fatal conditions (unreadable file, missing required columns, zero
// parseable dates) abort the file; everything row-level degrades silently.
func (p *Processor) ProcessFile(path string) (*Result, error) {
	started := p.clock.Now()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}

	probe, err := p.probeFile(path)
	if err != nil {
		return nil, err
	}

	layout, err := p.resolver.Resolve(probe.samples, p.cfg.ForceFormat)
	if err != nil {
		return nil, fmt.Errorf("file %q: %w: %w", path, ErrNoValidDates, err)
	}
	parser := dateformat.Parser{Layout: layout, Formats: p.cfg.DateFormats}
	p.log.Info("resolved date format", "file", filepath.Base(path), "layout", layout)

	scan, err := p.scanRange(path, parser)
	if err != nil {
		return nil, err
	}

	candidates := months.Candidates(scan.min, scan.max)
	validated, excluded, err := months.Validate(path, candidates, months.ValidateConfig{
		ChunkSize: p.cfg.ChunkSize,
		Rules:     p.rules,
		Parser:    parser,
		Logger:    p.log,
	})
	if err != nil {
		return nil, fmt.Errorf("month validation failed for %q: %w", path, err)
	}

	res := &Result{
		File: model.FileInfo{
			Name:       filepath.Base(path),
			Path:       path,
			SizeBytes:  info.Size(),
			Encoding:   probe.encoding,
			DateFormat: layout,
		},
		Range: model.DateRange{
			Start: scan.min,
			End:   scan.max,
			Days:  int(scan.max.Sub(scan.min).Hours()/24) + 1,
		},
		Months:          make(map[string]*model.Summary, len(validated)),
		ExcludedMonths:  excluded,
		TrendsAvailable: len(validated) > 0,
	}

	for _, m := range validated {
		summary, err := p.accumulateMonth(path, probe.columns, parser, m)
		if err != nil {
			return nil, err
		}
		res.Months[m.Key()] = summary
		res.MonthOrder = append(res.MonthOrder, m.Key())
	}

	holistic, chunks, err := p.accumulateHolistic(path, probe.columns, parser)
	if err != nil {
		return nil, err
	}
	res.Holistic = holistic

	res.Processing = model.ProcessingSummary{
		EstimatedRows:   probe.estimatedRows,
		ProcessedRows:   scan.rows,
		Chunks:          chunks,
		CandidateMonths: len(candidates),
		ValidatedMonths: len(validated),
		ExcludedMonths:  excluded,
		Elapsed:         p.clock.Now().Sub(started),
	}
	return res, nil
}

// probeResult is what one structural pass over the file head yields.
type probeResult struct {
	columns       model.ColumnMap
	encoding      string
	samples       []string
	estimatedRows int64
}

// probeFile opens the file once to check required columns, sample start
// times for format detection and estimate the row count from the average
// row width of the first chunk.
func (p *Processor) probeFile(path string) (*probeResult, error) {
	r, err := reader.Open(path, reader.Options{ChunkSize: p.cfg.ChunkSize})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	columns := r.Columns()
	var missing []string
	for _, name := range p.cfg.RequiredColumns {
		if !r.Header().Has(columns.Resolve(name)) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("file %q: %w: %v", path, ErrMissingColumns, missing)
	}

	res := &probeResult{columns: columns, encoding: r.Encoding()}
	startCol := columns.Resolve(model.ColStartTime)

	var sampledRows, sampledBytes int64
	for len(res.samples) < sampleCap {
		b, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, row := range b.Rows {
			sampledRows++
			for _, field := range row {
				sampledBytes += int64(len(field)) + 1
			}
			if len(res.samples) < sampleCap {
				if v, ok := b.Field(row, startCol); ok {
					res.samples = append(res.samples, v)
				}
			}
		}
	}

	if info, err := os.Stat(path); err == nil && sampledRows > 0 {
		res.estimatedRows = info.Size() / (sampledBytes/sampledRows + 1)
	}
	return res, nil
}

// rangeScan is the outcome of the min/max pass.
type rangeScan struct {
	min, max time.Time
	rows     int64
}

// scanRange streams the whole file once, filtering rows and folding every
// parseable start time into a running min/max. Zero parseable dates across
// the whole file is fatal.
func (p *Processor) scanRange(path string, parser dateformat.Parser) (*rangeScan, error) {
	r, err := reader.Open(path, reader.Options{ChunkSize: p.cfg.ChunkSize})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	startCol := r.Columns().Resolve(model.ColStartTime)
	scan := &rangeScan{}

	for {
		b, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("date-range scan failed for %q: %w", path, err)
		}
		b = filter.Apply(b, p.rules)
		scan.rows += int64(b.Len())

		for _, row := range b.Rows {
			raw, ok := b.Field(row, startCol)
			if !ok {
				continue
			}
			t, ok := parser.Parse(raw)
			if !ok {
				p.log.Debug("skipping unparseable start time", "value", raw)
				continue
			}
			if scan.min.IsZero() || t.Before(scan.min) {
				scan.min = t
			}
			if scan.max.IsZero() || t.After(scan.max) {
				scan.max = t
			}
		}
		p.mem.check()
	}

	if scan.min.IsZero() {
		return nil, fmt.Errorf("file %q: %w", path, ErrNoValidDates)
	}
	return scan, nil
}

// accumulateMonth re-reads the file and folds only the rows whose start time
// falls inside the month into a fresh accumulator.
func (p *Processor) accumulateMonth(path string, columns model.ColumnMap, parser dateformat.Parser, m model.Month) (*model.Summary, error) {
	acc := stats.New(stats.Config{Columns: columns, Parser: parser})

	err := p.stream(path, func(b *model.Batch) error {
		startCol := columns.Resolve(model.ColStartTime)
		kept := make([][]string, 0, len(b.Rows))
		for _, row := range b.Rows {
			raw, ok := b.Field(row, startCol)
			if !ok {
				continue
			}
			t, ok := parser.Parse(raw)
			if !ok || !m.Contains(t) {
				continue
			}
			kept = append(kept, row)
		}
		return acc.Update(&model.Batch{Header: b.Header, Rows: kept})
	})
	if err != nil {
		return nil, fmt.Errorf("monthly pass for %s failed: %w", m.Key(), err)
	}

	summary := acc.Finalize()
	summary.Key = m.Key()
	summary.Label = m.Label()
	return summary, nil
}

// accumulateHolistic folds every filtered row of the file into one
// accumulator and reports the chunk count of the pass.
func (p *Processor) accumulateHolistic(path string, columns model.ColumnMap, parser dateformat.Parser) (*model.Summary, int, error) {
	acc := stats.New(stats.Config{Columns: columns, Parser: parser, Holistic: true})

	chunks := 0
	err := p.stream(path, func(b *model.Batch) error {
		chunks++
		return acc.Update(b)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("holistic pass failed: %w", err)
	}
	return acc.Finalize(), chunks, nil
}

// stream opens the file, applies the row filter to every chunk and hands the
// filtered batches to fn, with the memory advisory in between.
func (p *Processor) stream(path string, fn func(*model.Batch) error) error {
	r, err := reader.Open(path, reader.Options{ChunkSize: p.cfg.ChunkSize})
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		b, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(filter.Apply(b, p.rules)); err != nil {
			return err
		}
		p.mem.check()
	}
}
