// Package query is the read side of the ClickHouse stats store, serving the
// HTTP API's monthly-trend endpoints.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"ForensicFlow/internal/config"
	"ForensicFlow/internal/export"
)

// MonthlyStat is one stored monthly summary row.
type MonthlyStat struct {
	GeneratedAt  time.Time `json:"generated_at"`
	FileName     string    `json:"file_name"`
	MonthKey     string    `json:"month_key"`
	MonthLabel   string    `json:"month_label"`
	TotalEvents  uint64    `json:"total_events"`
	UniqueSrcIPs uint32    `json:"unique_source_ips"`
	UniqueDstIPs uint32    `json:"unique_destination_ips"`
	TotalPackets float64   `json:"total_packets"`
	TotalMbits   float64   `json:"total_mbits"`
	MaxPPS       float64   `json:"max_pps"`
	MaxBPS       float64   `json:"max_bps"`
}

// MonthlyFilter narrows a monthly stats query. Zero values mean no bound.
type MonthlyFilter struct {
	FileName  string
	FromMonth string // inclusive "YYYY-MM"
	ToMonth   string // inclusive "YYYY-MM"
}

// Querier answers monthly-trend queries over the stored statistics.
type Querier interface {
	MonthlyStats(ctx context.Context, f MonthlyFilter) ([]MonthlyStat, error)
	Close() error
}

// clickhouseQuerier implements Querier against ClickHouse.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a querier over the stats store.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := export.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

// MonthlyStats returns the latest stored summary per (file, month) matching
// the filter, in month order.
func (q *clickhouseQuerier) MonthlyStats(ctx context.Context, f MonthlyFilter) ([]MonthlyStat, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			max(GeneratedAt) AS GeneratedAt,
			FileName,
			MonthKey,
			argMax(MonthLabel, GeneratedAt) AS MonthLabel,
			argMax(TotalEvents, GeneratedAt) AS TotalEvents,
			argMax(UniqueSrcIPs, GeneratedAt) AS UniqueSrcIPs,
			argMax(UniqueDstIPs, GeneratedAt) AS UniqueDstIPs,
			argMax(TotalPackets, GeneratedAt) AS TotalPackets,
			argMax(TotalMbits, GeneratedAt) AS TotalMbits,
			argMax(MaxPPS, GeneratedAt) AS MaxPPS,
			argMax(MaxBPS, GeneratedAt) AS MaxBPS
		FROM forensic_monthly_stats
	`)

	var whereClauses []string
	args := []interface{}{}

	if f.FileName != "" {
		whereClauses = append(whereClauses, "FileName = ?")
		args = append(args, f.FileName)
	}
	if f.FromMonth != "" {
		whereClauses = append(whereClauses, "MonthKey >= ?")
		args = append(args, f.FromMonth)
	}
	if f.ToMonth != "" {
		whereClauses = append(whereClauses, "MonthKey <= ?")
		args = append(args, f.ToMonth)
	}
	if len(whereClauses) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))
	}

	queryBuilder.WriteString(`
		GROUP BY FileName, MonthKey
		ORDER BY FileName, MonthKey
	`)

	rows, err := q.conn.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute monthly stats query: %w", err)
	}
	defer rows.Close()

	var stats []MonthlyStat
	for rows.Next() {
		var s MonthlyStat
		if err := rows.Scan(
			&s.GeneratedAt, &s.FileName, &s.MonthKey, &s.MonthLabel,
			&s.TotalEvents, &s.UniqueSrcIPs, &s.UniqueDstIPs,
			&s.TotalPackets, &s.TotalMbits, &s.MaxPPS, &s.MaxBPS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan monthly stats row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// Close releases the connection.
func (q *clickhouseQuerier) Close() error {
	return q.conn.Close()
}
