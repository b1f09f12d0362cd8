package stats

import (
	"testing"

	"ForensicFlow/internal/dateformat"
	"ForensicFlow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeader = model.NewHeader([]string{
	"Start Time", "Attack Name", "Threat Category", "Source IP Address",
	"Destination IP Address", "Protocol", "Action", "Policy Name",
	"Device Name", "Total Packets", "Total Mbits", "Max pps", "Max bps",
	"Risk", "Duration",
})

func testParser() dateformat.Parser {
	return dateformat.Parser{Layout: "02.01.2006 15:04:05"}
}

func testBatch(rows ...[]string) *model.Batch {
	return &model.Batch{Header: testHeader, Rows: rows}
}

func row(start, attack, category, src, dst, packets, pps, bps, risk, duration string) []string {
	return []string{
		start, attack, category, src, dst, "TCP", "Drop", "Default",
		"dp-1", packets, "10.5", pps, bps, risk, duration,
	}
}

func newTestAccumulator(holistic bool) *Accumulator {
	return New(Config{
		Columns:  model.MapColumns(testHeader),
		Parser:   testParser(),
		Holistic: holistic,
	})
}

func TestAccumulator_CountsAndSets(t *testing.T) {
	t.Parallel()
	acc := newTestAccumulator(false)

	require.NoError(t, acc.Update(testBatch(
		row("01.01.2024 10:00:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.9", "100", "50", "500", "High", "60"),
		row("02.01.2024 11:30:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.8", "200", "70", "300", "Low", "30"),
		row("03.01.2024 11:45:00", "UDP Flood", "", "2.2.2.2", "9.9.9.9", "50", "10", "100", "Low", "10"),
	)))

	s := acc.Finalize()
	assert.Equal(t, int64(3), s.TotalEvents)
	assert.Equal(t, 2, s.UniqueSourceIPs)
	assert.Equal(t, 2, s.UniqueDestinationIPs)
	assert.Equal(t, []string{"1.1.1.1", "2.2.2.2"}, s.SourceIPs)

	require.Contains(t, s.AttackTypes, "SYN Flood")
	assert.Equal(t, int64(2), s.AttackTypes["SYN Flood"].Count)
	assert.Equal(t, "DoS", s.AttackTypes["SYN Flood"].Category)
	// Missing category defaults to the sentinel without dropping the row.
	assert.Equal(t, "N/A", s.AttackTypes["UDP Flood"].Category)

	assert.Equal(t, []model.AttackTypeDetail{
		{Category: "DoS", Name: "SYN Flood"},
		{Category: "N/A", Name: "UDP Flood"},
	}, s.AttackTypeDetails)

	assert.Equal(t, int64(3), s.Protocols["TCP"])
	assert.Equal(t, float64(350), s.TotalPackets)
	assert.InDelta(t, 31.5, s.TotalMbits, 1e-9)

	assert.Equal(t, int64(1), s.HourlyDistribution[10])
	assert.Equal(t, int64(2), s.HourlyDistribution[11])
}

func TestAccumulator_MonotonicAcrossBatches(t *testing.T) {
	t.Parallel()
	acc := newTestAccumulator(false)

	var prevEvents int64
	var prevMax float64
	for i := 0; i < 5; i++ {
		bps := "100"
		if i == 2 {
			bps = "900"
		}
		require.NoError(t, acc.Update(testBatch(
			row("01.01.2024 10:00:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.9", "10", "1", bps, "Low", "5"),
		)))
		require.Greater(t, acc.TotalEvents(), prevEvents)
		prevEvents = acc.TotalEvents()
		require.GreaterOrEqual(t, acc.maxBPS, prevMax)
		prevMax = acc.maxBPS
	}
	assert.Equal(t, float64(900), acc.Finalize().MaxBPS)
}

func TestAccumulator_MaxProvenance(t *testing.T) {
	t.Parallel()
	acc := newTestAccumulator(false)

	recordRow := row("02.01.2024 12:00:00", "DNS Flood", "DoS", "3.3.3.3", "9.9.9.9", "10", "1", "500", "High", "5")

	require.NoError(t, acc.Update(testBatch(
		row("01.01.2024 10:00:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.9", "10", "1", "100", "Low", "5"),
	)))
	require.NoError(t, acc.Update(testBatch(recordRow)))
	// A later tie must not steal provenance from the row that set the record.
	require.NoError(t, acc.Update(testBatch(
		row("03.01.2024 14:00:00", "UDP Flood", "DoS", "4.4.4.4", "9.9.9.9", "10", "1", "500", "Low", "5"),
	)))

	s := acc.Finalize()
	assert.Equal(t, float64(500), s.MaxBPS)
	require.NotNil(t, s.MaxBPSDetails)
	assert.Equal(t, "DNS Flood", s.MaxBPSDetails["Attack Name"])
	assert.Equal(t, "3.3.3.3", s.MaxBPSDetails["Source IP Address"])
}

func TestAccumulator_DefensiveNumericParsing(t *testing.T) {
	t.Parallel()
	acc := newTestAccumulator(false)

	require.NoError(t, acc.Update(testBatch(
		row("01.01.2024 10:00:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.9", "nan", "T-1", "1e9", "Low", "5"),
		row("02.01.2024 10:00:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.9", "250", "40", "-5", "Low", "5"),
	)))

	s := acc.Finalize()
	// "nan", "T-1", scientific notation and negatives are all skipped.
	assert.Equal(t, float64(250), s.TotalPackets)
	assert.Equal(t, float64(40), s.MaxPPS)
	assert.Equal(t, float64(0), s.MaxBPS)
	// The rows themselves still counted.
	assert.Equal(t, int64(2), s.TotalEvents)
}

func TestAccumulator_HolisticExtensions(t *testing.T) {
	t.Parallel()
	acc := newTestAccumulator(true)

	require.NoError(t, acc.Update(testBatch(
		row("01.01.2024 10:00:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.9", "10", "1", "100", "High", "90061"),
		row("01.01.2024 23:00:00", "SYN Flood", "DoS", "1.1.1.1", "9.9.9.9", "10", "1", "100", "High", "30"),
		row("02.01.2024 10:00:00", "UDP Flood", "DoS", "2.2.2.2", "9.9.9.9", "10", "1", "100", "Low", "10"),
	)))

	s := acc.Finalize()
	assert.Equal(t, int64(2), s.DailyDistribution["2024-01-01"])
	assert.Equal(t, int64(1), s.DailyDistribution["2024-01-02"])
	assert.Equal(t, int64(2), s.RiskLevels["High"])

	require.NotNil(t, s.LongestAttack)
	assert.Equal(t, float64(90061), s.LongestAttack.Seconds)
	// 90061s = 1 day, 1 hour, 1 minute, 1 second.
	assert.Equal(t, "1d:01h:01m:01s", s.LongestAttack.Duration)
	assert.Equal(t, "SYN Flood", s.LongestAttack.Details["Attack Name"])
	assert.InDelta(t, (90061.0+30+10)/3, s.AverageDurationSeconds, 1e-9)

	assert.Equal(t, []model.IPCount{
		{IP: "1.1.1.1", Count: 2},
		{IP: "2.2.2.2", Count: 1},
	}, s.TopSourceIPs)
}

func TestAccumulator_ZeroDurationDefault(t *testing.T) {
	t.Parallel()
	acc := newTestAccumulator(true)
	s := acc.Finalize()
	require.NotNil(t, s.LongestAttack)
	assert.Equal(t, "00h:00m:00s", s.LongestAttack.Duration)
	assert.Nil(t, s.LongestAttack.Details)
}

func TestAccumulator_UpdateAfterFinalize(t *testing.T) {
	t.Parallel()
	acc := newTestAccumulator(false)
	_ = acc.Finalize()
	assert.ErrorIs(t, acc.Update(testBatch()), ErrFinalized)
}

func TestParseNumeric(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"123", 123, true},
		{"12.5", 12.5, true},
		{"", 0, false},
		{"T-1", 0, false},
		{"1,000", 0, false},
		{"-3", 0, false},
		{"1e5", 0, false},
		{"..", 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumeric(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}
