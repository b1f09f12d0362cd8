package dateformat

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrNoSamples is returned when a sample set contains nothing but empty or
// placeholder values. Callers must treat it as fatal for date-based analysis
// rather than assuming a default layout.
var ErrNoSamples = errors.New("no usable date samples")

const (
	// confidenceThreshold is the minimum combined score the fallback must
	// reach before its best candidate is trusted over the configured default.
	confidenceThreshold = 0.7

	// scoredSampleCap bounds how many values the scored fallback parses per
	// candidate layout.
	scoredSampleCap = 100

	// largeSampleFloor is the sample count above which detection works on a
	// random subset instead of every value.
	largeSampleFloor = 500
)

// Config configures a Resolver.
type Config struct {
	// Formats are the candidate layouts in preference order. The first entry
	// doubles as the low-confidence default.
	Formats []string

	// Clock supplies "now" for the future-date penalty. Defaults to the real
	// clock.
	Clock clockwork.Clock

	// Logger receives detection warnings. Defaults to slog.Default().
	Logger *slog.Logger

	// Seed fixes the subsampling order for large sample sets. Zero seeds
	// from the clock.
	Seed int64
}

// Resolver picks the timestamp layout of one file from a sample of its raw
// start-time values. Detection prefers hard evidence (a day component that
// cannot be a month) and only falls back to scored guessing when the data
// never disambiguates itself.
type Resolver struct {
	formats []string
	classes map[string]layoutClass
	clock   clockwork.Clock
	log     *slog.Logger
	rng     *rand.Rand
}

// New builds a Resolver for the given candidate layouts.
func New(cfg Config) (*Resolver, error) {
	if len(cfg.Formats) == 0 {
		return nil, errors.New("dateformat: at least one candidate layout is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Seed == 0 {
		cfg.Seed = cfg.Clock.Now().UnixNano()
	}

	r := &Resolver{
		formats: cfg.Formats,
		classes: make(map[string]layoutClass, len(cfg.Formats)),
		clock:   cfg.Clock,
		log:     cfg.Logger,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
	for _, f := range cfg.Formats {
		if cls, ok := classifyLayout(f); ok {
			r.classes[f] = cls
		}
	}
	return r, nil
}

// Resolve determines the layout in effect for the sampled values. A non-empty
// forced layout is validated first and skips detection when more than half of
// a small probe parses with it. ErrNoSamples is returned when the samples
// hold no usable values at all.
func (r *Resolver) Resolve(samples []string, forced string) (string, error) {
	valid := usableSamples(samples)
	if len(valid) == 0 {
		return "", ErrNoSamples
	}

	if forced != "" {
		if r.validateForced(forced, valid) {
			return forced, nil
		}
		r.log.Warn("forced date format rejected by sample data, falling back to auto-detection",
			"format", forced)
	}

	if len(valid) > largeSampleFloor {
		if layout := r.detectProgressive(valid); layout != "" {
			return layout, nil
		}
	} else if layout := r.unambiguous(valid); layout != "" {
		return layout, nil
	}

	layout, score := r.scored(valid)
	if layout != "" && score > confidenceThreshold {
		return layout, nil
	}

	r.log.Warn("low-confidence date format detection, using default layout",
		"default", r.formats[0], "best_score", fmt.Sprintf("%.3f", score))
	return r.formats[0], nil
}

// validateForced probes up to 10 samples and accepts the forced layout when
// strictly more than half parse with it.
func (r *Resolver) validateForced(forced string, valid []string) bool {
	probe := valid
	if len(probe) > 10 {
		probe = probe[:10]
	}
	parsed := 0
	for _, s := range probe {
		if _, err := time.Parse(forced, s); err == nil {
			parsed++
		}
	}
	return parsed*2 > len(probe)
}

// detectProgressive looks for unambiguous evidence in a growing random
// subset: 300 values, then 600, then 900, capped at 1000. Large files almost
// always disambiguate within the first round.
func (r *Resolver) detectProgressive(valid []string) string {
	size := 300
	for round := 0; round < 3; round++ {
		n := size
		if n > 1000 {
			n = 1000
		}
		if n > len(valid) {
			n = len(valid)
		}
		subset := make([]string, 0, n)
		for _, i := range r.rng.Perm(len(valid))[:n] {
			subset = append(subset, valid[i])
		}
		if layout := r.unambiguous(subset); layout != "" {
			return layout
		}
		if n == len(valid) || n == 1000 {
			break
		}
		size += 300
	}
	return ""
}

// unambiguous tallies hard day/month evidence per candidate layout and
// returns the top-voted one. Evidence that points at more than one component
// order is contradictory and yields nothing, pushing the decision to the
// scored fallback.
func (r *Resolver) unambiguous(samples []string) string {
	votes := make(map[string]int)
	orders := make(map[string]struct{})

	for _, s := range samples {
		sep, order, ok := classifySample(s)
		if !ok {
			continue
		}
		layout := r.layoutFor(sep, order)
		if layout == "" {
			continue
		}
		votes[layout]++
		orders[order] = struct{}{}
	}

	if len(votes) == 0 || len(orders) > 1 {
		return ""
	}

	best, bestVotes := "", 0
	for _, f := range r.formats {
		if v := votes[f]; v > bestVotes {
			best, bestVotes = f, v
		}
	}
	return best
}

// layoutFor returns the first configured layout with the given separator and
// component order.
func (r *Resolver) layoutFor(sep, order string) string {
	for _, f := range r.formats {
		cls, ok := r.classes[f]
		if ok && cls.sep == sep && cls.order == order {
			return f
		}
	}
	return ""
}

// scored parses a bounded subsample against every candidate and combines
// success rate, chronology agreement and a future-date penalty into one
// score per layout. It returns the best layout and its score; the caller
// decides whether the score clears the confidence threshold.
func (r *Resolver) scored(valid []string) (string, float64) {
	probe := valid
	if len(probe) > scoredSampleCap {
		probe = probe[:scoredSampleCap]
	}

	now := r.clock.Now()
	best, bestScore := "", 0.0

	for _, layout := range r.formats {
		parsed := make([]time.Time, 0, len(probe))
		for _, s := range probe {
			if t, err := time.Parse(layout, s); err == nil {
				parsed = append(parsed, t)
			}
		}
		if len(parsed) == 0 {
			continue
		}

		success := float64(len(parsed)) / float64(len(probe))
		chronology := chronologyScore(parsed)
		future := futurePenalty(parsed, now)

		score := success * chronology * (1 - 0.5*future)
		if score > bestScore {
			best, bestScore = layout, score
		}
	}
	return best, bestScore
}

// chronologyScore measures how closely parse order agrees with sorted order:
// the fraction of positions whose parsed value lies within 30 days of the
// value at the same position after sorting. A layout that swaps day and
// month parses fine syntactically but scrambles real time order, which this
// catches.
func chronologyScore(parsed []time.Time) float64 {
	if len(parsed) <= 1 {
		return 1.0
	}
	sorted := make([]time.Time, len(parsed))
	copy(sorted, parsed)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	const tolerance = 30 * 24 * time.Hour
	matches := 0
	for i, t := range parsed {
		d := t.Sub(sorted[i])
		if d < 0 {
			d = -d
		}
		if d <= tolerance {
			matches++
		}
	}
	return float64(matches) / float64(len(parsed))
}

// futurePenalty is the fraction of parsed values lying more than 30 days
// past now. Forensics exports describe the past; a future-heavy parse is the
// signature of a day/month swap.
func futurePenalty(parsed []time.Time, now time.Time) float64 {
	horizon := now.Add(30 * 24 * time.Hour)
	future := 0
	for _, t := range parsed {
		if t.After(horizon) {
			future++
		}
	}
	return float64(future) / float64(len(parsed))
}

// usableSamples drops empty strings and the "nan" placeholders exports leave
// in partially filled rows.
func usableSamples(samples []string) []string {
	valid := make([]string, 0, len(samples))
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "nan") {
			continue
		}
		valid = append(valid, s)
	}
	return valid
}

// layoutClass is the structural shape of a date layout: its separator and
// the order of year, month and day components.
type layoutClass struct {
	sep   string
	order string // "DMY", "MDY" or "YMD"
}

// classifyLayout extracts the separator and component order from a Go
// reference layout. Layouts whose date part is not exactly three components
// of 2006/01/02 are left unclassified and can only win via scoring.
func classifyLayout(layout string) (layoutClass, bool) {
	token := strings.Fields(layout)
	if len(token) == 0 {
		return layoutClass{}, false
	}
	date := token[0]

	for _, sep := range []string{".", "/", "-"} {
		parts := strings.Split(date, sep)
		if len(parts) != 3 {
			continue
		}
		order := make([]byte, 0, 3)
		for _, p := range parts {
			switch p {
			case "2006":
				order = append(order, 'Y')
			case "01":
				order = append(order, 'M')
			case "02":
				order = append(order, 'D')
			default:
				return layoutClass{}, false
			}
		}
		if len(order) == 3 {
			return layoutClass{sep: sep, order: string(order)}, true
		}
	}
	return layoutClass{}, false
}

// classifySample inspects one raw value for hard component-order evidence.
// A day value above 12 cannot be a month, which pins the order; a 4-digit
// leading component pins the year, and is only conclusive once the trailing
// component proves to be the day.
func classifySample(s string) (sep, order string, ok bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return "", "", false
	}
	date := fields[0]

	for _, candidate := range []string{".", "/", "-"} {
		parts := strings.Split(date, candidate)
		if len(parts) != 3 {
			continue
		}
		nums := make([]int, 3)
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return "", "", false
			}
			nums[i] = n
		}

		if len(parts[0]) == 4 {
			// Year leads; the trailing component must prove it is the day.
			if nums[1] >= 1 && nums[1] <= 12 && nums[2] > 12 && nums[2] <= 31 {
				return candidate, "YMD", true
			}
			return "", "", false
		}

		first, second := nums[0], nums[1]
		switch {
		case first > 12 && first <= 31 && second >= 1 && second <= 12:
			return candidate, "DMY", true
		case second > 12 && second <= 31 && first >= 1 && first <= 12:
			return candidate, "MDY", true
		}
		return "", "", false
	}
	return "", "", false
}
