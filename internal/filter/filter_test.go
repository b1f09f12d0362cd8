package filter

import (
	"testing"

	"ForensicFlow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchOf(t *testing.T, header []string, rows ...[]string) *model.Batch {
	t.Helper()
	return &model.Batch{Header: model.NewHeader(header), Rows: rows}
}

func TestFilter_SingleRule(t *testing.T) {
	t.Parallel()
	rows := make([][]string, 0, 10)
	for i := 0; i < 10; i++ {
		risk := "High"
		if i < 3 {
			risk = "Low"
		}
		rows = append(rows, []string{"SYN Flood", risk})
	}
	b := batchOf(t, []string{"Attack Name", "Risk"}, rows...)

	got := Apply(b, FromConfig(map[string][]string{"Risk": {"Low"}}))

	require.Equal(t, 7, got.Len())
	for _, row := range got.Rows {
		v, _ := got.Value(row, "Risk")
		assert.NotEqual(t, "Low", v)
	}
	// The input batch stays untouched.
	assert.Equal(t, 10, b.Len())
}

func TestFilter_AndAcrossColumns(t *testing.T) {
	t.Parallel()
	b := batchOf(t, []string{"Risk", "Action"},
		[]string{"Low", "Drop"},
		[]string{"Low", "Forward"},
		[]string{"High", "Drop"},
		[]string{"High", "Forward"},
	)
	rules := FromConfig(map[string][]string{
		"Risk":   {"Low"},
		"Action": {"Drop"},
	})

	got := Apply(b, rules)

	// Only the row matching every rule goes.
	require.Equal(t, 3, got.Len())
	for _, row := range got.Rows {
		risk, _ := got.Value(row, "Risk")
		action, _ := got.Value(row, "Action")
		assert.False(t, risk == "Low" && action == "Drop")
	}
}

func TestFilter_AbsentColumnRuleIgnored(t *testing.T) {
	t.Parallel()
	b := batchOf(t, []string{"Risk"},
		[]string{"Low"},
		[]string{"High"},
	)
	rules := FromConfig(map[string][]string{
		"Risk":           {"Low"},
		"Missing Column": {"anything"},
	})

	got := Apply(b, rules)
	require.Equal(t, 1, got.Len())
	v, _ := got.Value(got.Rows[0], "Risk")
	assert.Equal(t, "High", v)
}

func TestFilter_NoApplicableRules(t *testing.T) {
	t.Parallel()
	b := batchOf(t, []string{"Attack Name"}, []string{"SYN Flood"})

	got := Apply(b, FromConfig(map[string][]string{"Risk": {"Low"}}))
	assert.Same(t, b, got, "batch must pass through untouched when no rule applies")

	got = Apply(b, nil)
	assert.Same(t, b, got)
}

func TestFilter_Idempotent(t *testing.T) {
	t.Parallel()
	b := batchOf(t, []string{"Policy Name"},
		[]string{"Packet Anomalies"},
		[]string{"Default Policy"},
	)
	rules := FromConfig(map[string][]string{"Policy Name": {"Packet Anomalies"}})

	once := Apply(b, rules)
	twice := Apply(once, rules)

	require.Equal(t, 1, once.Len())
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestFilter_ShortRowSurvives(t *testing.T) {
	t.Parallel()
	// A row too short to reach the filtered column cannot match the rule.
	b := batchOf(t, []string{"Attack Name", "Risk"},
		[]string{"SYN Flood"},
		[]string{"UDP Flood", "Low"},
	)
	got := Apply(b, FromConfig(map[string][]string{"Risk": {"Low"}}))

	require.Equal(t, 1, got.Len())
	v, _ := got.Value(got.Rows[0], "Attack Name")
	assert.Equal(t, "SYN Flood", v)
}
