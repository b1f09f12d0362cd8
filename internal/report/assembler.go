// Package report turns finalized per-file statistics into the assembled
// report structure and renders it through registered writers.
package report

import (
	"time"

	"github.com/jonboulle/clockwork"

	"ForensicFlow/internal/model"
	"ForensicFlow/internal/processor"
)

// Assembler composes processor results and display units into the report
// structure writers and the API hand out.
type Assembler struct {
	volume  model.UnitDisplay
	packets model.UnitDisplay
	clock   clockwork.Clock
}

// NewAssembler builds an Assembler with the configured display units.
func NewAssembler(volume, packets model.UnitDisplay, clock clockwork.Clock) *Assembler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Assembler{volume: volume, packets: packets, clock: clock}
}

// Assemble builds the final report for one file. When month validation left
// nothing to chart the report carries the insufficient-data note instead of
// an error; the file itself still succeeded.
func (a *Assembler) Assemble(res *processor.Result) *model.Report {
	r := &model.Report{
		GeneratedAt:     a.clock.Now().UTC().Truncate(time.Second),
		File:            res.File,
		Range:           res.Range,
		Holistic:        res.Holistic,
		Months:          res.Months,
		MonthOrder:      res.MonthOrder,
		TrendsAvailable: res.TrendsAvailable,
		VolumeUnit:      a.volume,
		PacketsUnit:     a.packets,
		Processing:      res.Processing,
	}
	if !res.TrendsAvailable {
		r.TrendNote = model.InsufficientTrendData
	}
	return r
}
