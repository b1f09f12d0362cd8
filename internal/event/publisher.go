// Package event moves analysis requests and completion events over NATS so
// analysis can be driven remotely (ff-submit publishes, watch mode
// subscribes). Payloads are proto-marshalled structpb structs: plain nested
// maps of primitives, the same shape the report itself uses.
package event

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"ForensicFlow/internal/config"
	"ForensicFlow/internal/model"
)

// AnalyzeRequest asks a watching analyzer to process one file.
type AnalyzeRequest struct {
	Path string
}

// Publisher publishes analysis requests and completion events.
type Publisher struct {
	nc  *nats.Conn
	cfg config.NATSConfig
	log *slog.Logger
}

// NewPublisher connects to the configured NATS server.
func NewPublisher(cfg config.NATSConfig, log *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Info("connected to NATS server", "url", cfg.URL)
	return &Publisher{nc: nc, cfg: cfg, log: log}, nil
}

// PublishRequest publishes one analyze request on the request subject.
func (p *Publisher) PublishRequest(req AnalyzeRequest) error {
	payload, err := structpb.NewStruct(map[string]interface{}{
		"path": req.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to build request payload: %w", err)
	}
	data, err := proto.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}
	return p.nc.Publish(p.cfg.RequestSubject, data)
}

// PublishCompleted publishes the completion event for one analyzed file.
// Event loss is acceptable (at-most-once); the report on disk is the record.
func (p *Publisher) PublishCompleted(report *model.Report) error {
	h := report.Holistic
	payload, err := structpb.NewStruct(map[string]interface{}{
		"file":             report.File.Name,
		"generated_at":     report.GeneratedAt.Format("2006-01-02 15:04:05"),
		"total_events":     float64(h.TotalEvents),
		"unique_src_ips":   float64(h.UniqueSourceIPs),
		"unique_dst_ips":   float64(h.UniqueDestinationIPs),
		"max_pps":          h.MaxPPS,
		"max_bps":          h.MaxBPS,
		"validated_months": float64(report.Processing.ValidatedMonths),
		"trends_available": report.TrendsAvailable,
	})
	if err != nil {
		return fmt.Errorf("failed to build completion payload: %w", err)
	}
	data, err := proto.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal completion payload: %w", err)
	}
	return p.nc.Publish(p.cfg.CompletedSubject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.log.Info("NATS connection drained and closed")
	}
}
