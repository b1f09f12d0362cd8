package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ForensicFlow/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier serves canned monthly stats.
type fakeQuerier struct {
	stats []query.MonthlyStat
	got   query.MonthlyFilter
}

func (f *fakeQuerier) MonthlyStats(ctx context.Context, filter query.MonthlyFilter) ([]query.MonthlyStat, error) {
	f.got = filter
	return f.stats, nil
}

func (f *fakeQuerier) Close() error { return nil }

func serve(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s := NewServer(t.TempDir(), nil, nil)
	rec := serve(t, s, http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ListAndGetReports(t *testing.T) {
	t.Parallel()
	outputDir := t.TempDir()

	reportDir := filepath.Join(outputDir, "events_2025-03-01_12-00-00")
	require.NoError(t, os.MkdirAll(reportDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(reportDir, "report.json"),
		[]byte(`{"file":{"name":"events.csv"}}`), 0644))

	s := NewServer(outputDir, nil, nil)

	rec := serve(t, s, http.MethodGet, "/api/v1/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"events_2025-03-01_12-00-00"}, names)

	rec = serve(t, s, http.MethodGet, "/api/v1/reports/events_2025-03-01_12-00-00")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "events.csv")

	rec = serve(t, s, http.MethodGet, "/api/v1/reports/no-such-report")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Months(t *testing.T) {
	t.Parallel()
	fq := &fakeQuerier{stats: []query.MonthlyStat{
		{FileName: "events.csv", MonthKey: "2024-01", MonthLabel: "January 2024", TotalEvents: 42},
	}}
	s := NewServer(t.TempDir(), fq, nil)

	rec := serve(t, s, http.MethodGet, "/api/v1/months?file=events.csv&from=2024-01&to=2024-06")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, query.MonthlyFilter{
		FileName: "events.csv", FromMonth: "2024-01", ToMonth: "2024-06",
	}, fq.got)

	var got []query.MonthlyStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(42), got[0].TotalEvents)
}

func TestServer_MonthsWithoutStore(t *testing.T) {
	t.Parallel()
	s := NewServer(t.TempDir(), nil, nil)
	rec := serve(t, s, http.MethodGet, "/api/v1/months")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
