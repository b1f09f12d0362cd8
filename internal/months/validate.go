package months

import (
	"io"
	"log/slog"

	"ForensicFlow/internal/dateformat"
	"ForensicFlow/internal/filter"
	"ForensicFlow/internal/model"
	"ForensicFlow/internal/reader"
)

// ValidateConfig carries what the containment scan needs to re-read a file.
type ValidateConfig struct {
	ChunkSize int
	Rules     filter.Rules
	Parser    dateformat.Parser
	Logger    *slog.Logger
}

// Validate confirms candidate months against the data: a month survives only
// when at least one event both starts and ends inside it, which keeps
// boundary-clipped months out of trend analysis. Candidates arrive
// chronological and enclosed by the file's date range, so once one month
// holds an interior event every later candidate does too; the scan stops
// re-checking after the first hit. Returns the validated months and the keys
// of the excluded ones.
//
// When the file lacks an end-time column the containment test cannot run;
// all candidates pass on calendar evidence alone, with a warning.
func Validate(path string, candidates []model.Month, cfg ValidateConfig) (validated []model.Month, excluded []string, err error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	for i, m := range candidates {
		ok, hasEnd, err := hasInteriorEvent(path, m, cfg)
		if err != nil {
			return nil, nil, err
		}
		if !hasEnd {
			log.Warn("end-time column unavailable, validating months on calendar evidence only",
				"file", path)
			return candidates, nil, nil
		}
		if ok {
			// Later candidates are interior by construction of candidacy.
			return candidates[i:], excluded, nil
		}
		log.Debug("excluding month without a fully contained event", "month", m.Key())
		excluded = append(excluded, m.Key())
	}
	return nil, excluded, nil
}

// hasInteriorEvent streams only the start/end time columns of the file and
// reports whether any row's interval is fully contained in the month.
// hasEnd is false when the file carries no end-time column at all.
func hasInteriorEvent(path string, m model.Month, cfg ValidateConfig) (found, hasEnd bool, err error) {
	r, err := reader.Open(path, reader.Options{ChunkSize: cfg.ChunkSize})
	if err != nil {
		return false, false, err
	}
	defer r.Close()

	startCol := r.Columns().Resolve(model.ColStartTime)
	endCol := r.Columns().Resolve(model.ColEndTime)
	if !r.Header().Has(endCol) {
		return false, false, nil
	}

	for {
		b, err := r.Next()
		if err == io.EOF {
			return false, true, nil
		}
		if err != nil {
			return false, true, err
		}
		b = filter.Apply(b, cfg.Rules)

		for _, row := range b.Rows {
			rawStart, ok := b.Field(row, startCol)
			if !ok {
				continue
			}
			rawEnd, ok := b.Field(row, endCol)
			if !ok {
				continue
			}
			start, ok := cfg.Parser.Parse(rawStart)
			if !ok {
				continue
			}
			end, ok := cfg.Parser.Parse(rawEnd)
			if !ok {
				continue
			}
			// Overlap first, then containment: a row touching the month
			// but spilling over a boundary does not validate it.
			if end.Before(m.Start()) || start.After(m.End()) {
				continue
			}
			if !start.Before(m.Start()) && !end.After(m.End()) {
				return true, true, nil
			}
		}
	}
}
