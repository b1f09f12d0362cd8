// Package export pushes finalized statistics into ClickHouse so monthly
// trends can be queried across files and report runs.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"ForensicFlow/internal/config"
	"ForensicFlow/internal/model"
)

const createMonthlyTableStatement = `
CREATE TABLE IF NOT EXISTS forensic_monthly_stats (
    GeneratedAt   DateTime,
    FileName      String,
    MonthKey      String,
    MonthLabel    String,
    TotalEvents   UInt64,
    UniqueSrcIPs  UInt32,
    UniqueDstIPs  UInt32,
    TotalPackets  Float64,
    TotalMbits    Float64,
    MaxPPS        Float64,
    MaxBPS        Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (FileName, MonthKey, GeneratedAt);
`

const createHolisticTableStatement = `
CREATE TABLE IF NOT EXISTS forensic_holistic_stats (
    GeneratedAt   DateTime,
    FileName      String,
    RangeStart    DateTime,
    RangeEnd      DateTime,
    TotalEvents   UInt64,
    UniqueSrcIPs  UInt32,
    UniqueDstIPs  UInt32,
    TotalPackets  Float64,
    TotalMbits    Float64,
    MaxPPS        Float64,
    MaxBPS        Float64,
    AttackTypes   UInt32,
    TrendMonths   UInt32
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (FileName, GeneratedAt);
`

// ClickHouseExporter writes finalized report statistics to ClickHouse.
type ClickHouseExporter struct {
	conn driver.Conn
	log  *slog.Logger
}

// NewClickHouseExporter connects, pings and ensures both stats tables exist.
func NewClickHouseExporter(cfg config.ClickHouseConfig, log *slog.Logger) (*ClickHouseExporter, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	ctx := context.Background()
	if err := conn.Exec(ctx, createMonthlyTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create monthly stats table: %w", err)
	}
	if err := conn.Exec(ctx, createHolisticTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create holistic stats table: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}
	return &ClickHouseExporter{conn: conn, log: log}, nil
}

// Connect opens a ClickHouse connection and verifies it with a ping.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// Export batch-inserts one report's monthly rows and its holistic row.
func (e *ClickHouseExporter) Export(ctx context.Context, report *model.Report) error {
	if len(report.MonthOrder) > 0 {
		batch, err := e.conn.PrepareBatch(ctx, "INSERT INTO forensic_monthly_stats")
		if err != nil {
			return fmt.Errorf("failed to prepare monthly batch: %w", err)
		}
		for _, key := range report.MonthOrder {
			s := report.Months[key]
			if s == nil {
				continue
			}
			if err := batch.Append(
				report.GeneratedAt,
				report.File.Name,
				s.Key,
				s.Label,
				uint64(s.TotalEvents),
				uint32(s.UniqueSourceIPs),
				uint32(s.UniqueDestinationIPs),
				s.TotalPackets,
				s.TotalMbits,
				s.MaxPPS,
				s.MaxBPS,
			); err != nil {
				return fmt.Errorf("failed to append monthly row: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send monthly batch: %w", err)
		}
	}

	h := report.Holistic
	batch, err := e.conn.PrepareBatch(ctx, "INSERT INTO forensic_holistic_stats")
	if err != nil {
		return fmt.Errorf("failed to prepare holistic batch: %w", err)
	}
	if err := batch.Append(
		report.GeneratedAt,
		report.File.Name,
		report.Range.Start,
		report.Range.End,
		uint64(h.TotalEvents),
		uint32(h.UniqueSourceIPs),
		uint32(h.UniqueDestinationIPs),
		h.TotalPackets,
		h.TotalMbits,
		h.MaxPPS,
		h.MaxBPS,
		uint32(len(h.AttackTypes)),
		uint32(len(report.MonthOrder)),
	); err != nil {
		return fmt.Errorf("failed to append holistic row: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send holistic batch: %w", err)
	}

	e.log.Info("exported report statistics to ClickHouse",
		"file", report.File.Name, "months", len(report.MonthOrder))
	return nil
}

// Close releases the connection.
func (e *ClickHouseExporter) Close() error {
	return e.conn.Close()
}
