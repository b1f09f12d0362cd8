package months

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ForensicFlow/internal/dateformat"
	"ForensicFlow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	t.Run("interior months only", func(t *testing.T) {
		t.Parallel()
		// Range starts mid-January and ends mid-April: only February and
		// March are fully enclosed.
		got := Candidates(date(2024, time.January, 15, 0), date(2024, time.April, 20, 0))
		require.Len(t, got, 2)
		assert.Equal(t, "2024-02", got[0].Key())
		assert.Equal(t, "2024-03", got[1].Key())
	})

	t.Run("first month counts when range starts on day one", func(t *testing.T) {
		t.Parallel()
		got := Candidates(date(2024, time.January, 1, 0), date(2024, time.March, 31, 23))
		require.Len(t, got, 2)
		assert.Equal(t, "2024-01", got[0].Key())
		assert.Equal(t, "2024-02", got[1].Key())
	})

	t.Run("last month counts when range reaches its final second", func(t *testing.T) {
		t.Parallel()
		max := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)
		got := Candidates(date(2024, time.January, 1, 0), max)
		require.Len(t, got, 3)
		assert.Equal(t, "2024-03", got[2].Key())
	})

	t.Run("year boundary", func(t *testing.T) {
		t.Parallel()
		got := Candidates(date(2023, time.November, 20, 0), date(2024, time.March, 10, 0))
		require.Len(t, got, 3)
		assert.Equal(t, "2023-12", got[0].Key())
		assert.Equal(t, "2024-01", got[1].Key())
		assert.Equal(t, "2024-02", got[2].Key())
	})

	t.Run("no enclosed month", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Candidates(date(2024, time.January, 15, 0), date(2024, time.February, 20, 0)))
	})

	t.Run("inverted or zero range", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Candidates(date(2024, time.March, 1, 0), date(2024, time.January, 1, 0)))
		assert.Empty(t, Candidates(time.Time{}, time.Time{}))
	})
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validateConfig() ValidateConfig {
	return ValidateConfig{
		ChunkSize: 2,
		Parser:    dateformat.Parser{Layout: "02.01.2006 15:04:05"},
	}
}

func monthOf(y int, m time.Month) model.Month {
	return model.Month{Year: y, Month: m}
}

func TestValidate_InteriorEventValidatesMonth(t *testing.T) {
	t.Parallel()
	path := writeCSV(t,
		"Start Time,End Time,Attack Name\n"+
			"15.02.2024 10:00:00,15.02.2024 11:00:00,SYN Flood\n")

	validated, excluded, err := Validate(path,
		[]model.Month{monthOf(2024, time.February)}, validateConfig())
	require.NoError(t, err)
	require.Len(t, validated, 1)
	assert.Equal(t, "2024-02", validated[0].Key())
	assert.Empty(t, excluded)
}

func TestValidate_SpilloverOnlyMonthIsExcluded(t *testing.T) {
	t.Parallel()
	// Every event touching February crosses one of its boundaries.
	path := writeCSV(t,
		"Start Time,End Time,Attack Name\n"+
			"31.01.2024 22:00:00,01.02.2024 04:00:00,SYN Flood\n"+
			"29.02.2024 20:00:00,01.03.2024 02:00:00,UDP Flood\n")

	validated, excluded, err := Validate(path,
		[]model.Month{monthOf(2024, time.February)}, validateConfig())
	require.NoError(t, err)
	assert.Empty(t, validated)
	assert.Equal(t, []string{"2024-02"}, excluded)
}

func TestValidate_ShortCircuitTrustsLaterMonths(t *testing.T) {
	t.Parallel()
	// January holds only a boundary-spanning event; February holds an
	// interior one; March holds no events at all. Once February validates,
	// March is trusted without its own evidence because candidacy already
	// guarantees it is interior to the data range.
	path := writeCSV(t,
		"Start Time,End Time,Attack Name\n"+
			"31.12.2023 23:00:00,01.01.2024 01:00:00,SYN Flood\n"+
			"10.02.2024 10:00:00,10.02.2024 10:30:00,UDP Flood\n"+
			"05.04.2024 10:00:00,05.04.2024 10:30:00,DNS Flood\n")

	candidates := []model.Month{
		monthOf(2024, time.January),
		monthOf(2024, time.February),
		monthOf(2024, time.March),
	}
	validated, excluded, err := Validate(path, candidates, validateConfig())
	require.NoError(t, err)
	require.Len(t, validated, 2)
	assert.Equal(t, "2024-02", validated[0].Key())
	assert.Equal(t, "2024-03", validated[1].Key())
	assert.Equal(t, []string{"2024-01"}, excluded)
}

func TestValidate_AllMonthsExcluded(t *testing.T) {
	t.Parallel()
	path := writeCSV(t,
		"Start Time,End Time,Attack Name\n"+
			"31.01.2024 23:00:00,01.02.2024 01:00:00,SYN Flood\n")

	validated, excluded, err := Validate(path,
		[]model.Month{monthOf(2024, time.February), monthOf(2024, time.March)}, validateConfig())
	require.NoError(t, err)
	assert.Empty(t, validated)
	assert.Equal(t, []string{"2024-02", "2024-03"}, excluded)
}

func TestValidate_MissingEndTimeFallsBackToCalendar(t *testing.T) {
	t.Parallel()
	path := writeCSV(t,
		"Start Time,Attack Name\n"+
			"15.02.2024 10:00:00,SYN Flood\n")

	candidates := []model.Month{monthOf(2024, time.February), monthOf(2024, time.March)}
	validated, excluded, err := Validate(path, candidates, validateConfig())
	require.NoError(t, err)
	// Containment cannot be tested; calendar candidacy stands.
	assert.Equal(t, candidates, validated)
	assert.Empty(t, excluded)
}

func TestValidate_NoCandidates(t *testing.T) {
	t.Parallel()
	validated, excluded, err := Validate("does-not-matter.csv", nil, validateConfig())
	require.NoError(t, err)
	assert.Empty(t, validated)
	assert.Empty(t, excluded)
}
