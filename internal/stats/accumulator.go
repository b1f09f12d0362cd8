// Package stats holds the running-statistics engine: an Accumulator absorbs
// filtered row batches one chunk at a time and finalizes into an immutable
// Summary once its pass is done. The same engine serves both the per-month
// trend passes and the whole-file holistic pass.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"ForensicFlow/internal/dateformat"
	"ForensicFlow/internal/model"
)

// ErrFinalized is returned when an Accumulator is updated after Finalize.
var ErrFinalized = errors.New("accumulator already finalized")

// topIPCount bounds the source/destination leaderboards in the summary.
const topIPCount = 20

// Config configures one Accumulator.
type Config struct {
	// Columns resolves canonical column names against the file's header.
	Columns model.ColumnMap

	// Parser parses start times for the hourly and daily distributions.
	Parser dateformat.Parser

	// Holistic additionally tracks daily distribution, risk levels,
	// duration/longest-attack provenance and top-talker leaderboards.
	Holistic bool
}

// Accumulator is the mutable aggregate of one sequential pass. It is owned
// by exactly one goroutine; updates across chunk boundaries only ever grow
// counts, sets and maxima.
type Accumulator struct {
	cfg Config

	totalEvents int64

	sourceIPs map[string]int64
	destIPs   map[string]int64

	attackTypes map[string]*model.AttackType

	protocols  map[string]int64
	actions    map[string]int64
	devices    map[string]int64
	policies   map[string]int64
	riskLevels map[string]int64

	hourly [24]int64
	daily  map[string]int64

	totalPackets float64
	totalMbits   float64

	maxPPS        float64
	maxBPS        float64
	maxPPSDetails map[string]string
	maxBPSDetails map[string]string

	durationCount  int64
	durationSum    float64
	longestSeconds float64
	longestDetails map[string]string

	finalized bool
}

// New creates an empty Accumulator.
func New(cfg Config) *Accumulator {
	return &Accumulator{
		cfg:         cfg,
		sourceIPs:   make(map[string]int64),
		destIPs:     make(map[string]int64),
		attackTypes: make(map[string]*model.AttackType),
		protocols:   make(map[string]int64),
		actions:     make(map[string]int64),
		devices:     make(map[string]int64),
		policies:    make(map[string]int64),
		riskLevels:  make(map[string]int64),
		daily:       make(map[string]int64),
	}
}

// TotalEvents returns the rows ingested so far.
func (a *Accumulator) TotalEvents() int64 {
	return a.totalEvents
}

// Update folds one filtered batch into the running state. Row-level oddities
// (missing columns, malformed numerics, unparseable dates) skip the affected
// field for that row and nothing else.
func (a *Accumulator) Update(b *model.Batch) error {
	if a.finalized {
		return ErrFinalized
	}
	if b == nil || b.Len() == 0 {
		return nil
	}

	a.totalEvents += int64(b.Len())

	col := func(canonical string) string { return a.cfg.Columns.Resolve(canonical) }

	for _, row := range b.Rows {
		if ip, ok := b.Field(row, col(model.ColSourceIP)); ok {
			a.sourceIPs[ip]++
		}
		if ip, ok := b.Field(row, col(model.ColDestinationIP)); ok {
			a.destIPs[ip]++
		}

		if name, ok := b.Field(row, col(model.ColAttackName)); ok {
			category, ok := b.Field(row, col(model.ColThreatCategory))
			if !ok {
				category = "N/A"
			}
			entry := a.attackTypes[name]
			if entry == nil {
				entry = &model.AttackType{}
				a.attackTypes[name] = entry
			}
			entry.Count++
			entry.Category = category
		}

		countField(b, row, col(model.ColProtocol), a.protocols)
		countField(b, row, col(model.ColAction), a.actions)
		countField(b, row, col(model.ColDeviceName), a.devices)
		countField(b, row, col(model.ColPolicyName), a.policies)

		if v, ok := numericField(b, row, col(model.ColTotalPackets)); ok {
			a.totalPackets += v
		}
		if v, ok := numericField(b, row, col(model.ColTotalMbits)); ok {
			a.totalMbits += v
		}
		if v, ok := numericField(b, row, col(model.ColMaxPPS)); ok && v > a.maxPPS {
			a.maxPPS = v
			a.maxPPSDetails = b.RowMap(row)
		}
		if v, ok := numericField(b, row, col(model.ColMaxBPS)); ok && v > a.maxBPS {
			a.maxBPS = v
			a.maxBPSDetails = b.RowMap(row)
		}

		var start time.Time
		startOK := false
		if raw, ok := b.Field(row, col(model.ColStartTime)); ok {
			start, startOK = a.cfg.Parser.Parse(raw)
		}
		if startOK {
			a.hourly[start.Hour()]++
		}

		if a.cfg.Holistic {
			if startOK {
				a.daily[start.Format("2006-01-02")]++
			}
			countField(b, row, col(model.ColRisk), a.riskLevels)

			if v, ok := numericField(b, row, col(model.ColDuration)); ok {
				a.durationCount++
				a.durationSum += v
				if v > a.longestSeconds {
					a.longestSeconds = v
					a.longestDetails = b.RowMap(row)
				}
			}
		}
	}
	return nil
}

// Finalize converts the running state into an immutable Summary: sets become
// counts plus sorted lists, the attack-type map becomes sorted (category,
// name) pairs, leaderboards are truncated to the top 20 and the longest
// attack duration is formatted. Further updates fail with ErrFinalized.
func (a *Accumulator) Finalize() *model.Summary {
	a.finalized = true

	s := &model.Summary{
		TotalEvents:          a.totalEvents,
		UniqueSourceIPs:      len(a.sourceIPs),
		UniqueDestinationIPs: len(a.destIPs),
		SourceIPs:            sortedKeys(a.sourceIPs),
		DestinationIPs:       sortedKeys(a.destIPs),
		AttackTypes:          make(map[string]model.AttackType, len(a.attackTypes)),
		Protocols:            a.protocols,
		Actions:              a.actions,
		Devices:              a.devices,
		Policies:             a.policies,
		HourlyDistribution:   a.hourly,
		TotalPackets:         a.totalPackets,
		TotalMbits:           a.totalMbits,
		MaxPPS:               a.maxPPS,
		MaxBPS:               a.maxBPS,
		MaxPPSDetails:        a.maxPPSDetails,
		MaxBPSDetails:        a.maxBPSDetails,
	}

	names := make([]string, 0, len(a.attackTypes))
	for name, entry := range a.attackTypes {
		s.AttackTypes[name] = *entry
		names = append(names, name)
	}
	sort.Strings(names)
	s.AttackTypeDetails = make([]model.AttackTypeDetail, 0, len(names))
	for _, name := range names {
		s.AttackTypeDetails = append(s.AttackTypeDetails, model.AttackTypeDetail{
			Category: a.attackTypes[name].Category,
			Name:     name,
		})
	}

	if a.cfg.Holistic {
		s.RiskLevels = a.riskLevels
		s.DailyDistribution = a.daily
		s.TopSourceIPs = topCounts(a.sourceIPs, topIPCount)
		s.TopDestinationIPs = topCounts(a.destIPs, topIPCount)

		s.LongestAttack = &model.LongestAttack{
			Seconds:  a.longestSeconds,
			Duration: formatDuration(a.longestSeconds, a.longestDetails != nil),
			Details:  a.longestDetails,
		}
		if a.durationCount > 0 {
			s.AverageDurationSeconds = a.durationSum / float64(a.durationCount)
		}
	}

	return s
}

// countField increments counts[value] when the row carries a usable value.
func countField(b *model.Batch, row []string, column string, counts map[string]int64) {
	if v, ok := b.Field(row, column); ok {
		counts[v]++
	}
}

// numericField reads one field as a defensive float: the raw value must be
// present, not a "nan" placeholder and consist of digits and at most the
// decimal point. Anything else reports ok=false.
func numericField(b *model.Batch, row []string, column string) (float64, bool) {
	raw, ok := b.Field(row, column)
	if !ok {
		return 0, false
	}
	return parseNumeric(raw)
}

func parseNumeric(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if (r < '0' || r > '9') && r != '.' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// sortedKeys returns the map keys in ascending order.
func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// topCounts returns the n highest-count entries, count-descending with
// name as the tiebreak so output is stable run to run.
func topCounts(m map[string]int64, n int) []model.IPCount {
	out := make([]model.IPCount, 0, len(m))
	for ip, count := range m {
		out = append(out, model.IPCount{IP: ip, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].IP < out[j].IP
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// formatDuration renders attack duration seconds as "Nd:HHh:MMm:SSs",
// or the zero form "00h:00m:00s" when no duration was ever observed.
func formatDuration(seconds float64, observed bool) string {
	if !observed {
		return "00h:00m:00s"
	}
	total := int64(seconds)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%dd:%02dh:%02dm:%02ds", days, hours, minutes, secs)
}
