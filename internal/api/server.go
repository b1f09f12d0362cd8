// Package api serves assembled reports and stored monthly statistics over
// HTTP: report JSON straight from the output directory, monthly trends from
// the optional ClickHouse store, and Prometheus metrics.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ForensicFlow/internal/query"
)

// Server holds the dependencies of the API handlers.
type Server struct {
	outputDir string
	querier   query.Querier // nil when the ClickHouse store is disabled
	log       *slog.Logger
}

// NewServer builds a Server. querier may be nil; the months endpoint then
// answers 503.
func NewServer(outputDir string, querier query.Querier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{outputDir: outputDir, querier: querier, log: log}
}

// Router returns the configured HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/health", s.healthHandler).Methods("GET")
	r.HandleFunc("/api/v1/reports", s.listReportsHandler).Methods("GET")
	r.HandleFunc("/api/v1/reports/{name}", s.getReportHandler).Methods("GET")
	r.HandleFunc("/api/v1/months", s.monthsHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// listReportsHandler lists the report directories under the output dir,
// newest first.
func (s *Server) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, []string{})
			return
		}
		http.Error(w, fmt.Sprintf("failed to list reports: %v", err), http.StatusInternalServerError)
		return
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	writeJSON(w, names)
}

// getReportHandler serves the assembled report.json of one run.
func (s *Server) getReportHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if strings.ContainsAny(name, "/\\") || name == ".." {
		http.Error(w, "invalid report name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.outputDir, name, "report.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to read report: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// monthsHandler answers monthly-trend queries from the ClickHouse store.
// Filters: ?file=<name>&from=YYYY-MM&to=YYYY-MM.
func (s *Server) monthsHandler(w http.ResponseWriter, r *http.Request) {
	if s.querier == nil {
		http.Error(w, "monthly stats store is not enabled", http.StatusServiceUnavailable)
		return
	}

	stats, err := s.querier.MonthlyStats(r.Context(), query.MonthlyFilter{
		FileName:  r.URL.Query().Get("file"),
		FromMonth: r.URL.Query().Get("from"),
		ToMonth:   r.URL.Query().Get("to"),
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query monthly stats: %v", err), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []query.MonthlyStat{}
	}
	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
