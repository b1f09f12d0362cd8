package event

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"ForensicFlow/internal/config"
)

// RequestHandler processes one received analyze request.
type RequestHandler func(req AnalyzeRequest)

// Subscriber listens for analyze requests and hands them to a handler.
type Subscriber struct {
	nc  *nats.Conn
	sub *nats.Subscription
	cfg config.NATSConfig
	log *slog.Logger
}

// NewSubscriber connects to the configured NATS server.
func NewSubscriber(cfg config.NATSConfig, log *slog.Logger) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Info("connected to NATS server", "url", cfg.URL)
	return &Subscriber{nc: nc, cfg: cfg, log: log}, nil
}

// Start subscribes to the request subject. Malformed messages are logged
// and dropped; the handler runs on the NATS delivery goroutine, one message
// at a time, which matches the sequential processing model.
func (s *Subscriber) Start(handler RequestHandler) error {
	sub, err := s.nc.Subscribe(s.cfg.RequestSubject, func(msg *nats.Msg) {
		var payload structpb.Struct
		if err := proto.Unmarshal(msg.Data, &payload); err != nil {
			s.log.Error("failed to unmarshal analyze request", "error", err)
			return
		}
		path := payload.Fields["path"].GetStringValue()
		if path == "" {
			s.log.Error("analyze request without a path, dropping")
			return
		}
		handler(AnalyzeRequest{Path: path})
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.cfg.RequestSubject, err)
	}
	s.sub = sub
	s.log.Info("subscribed, waiting for analyze requests", "subject", s.cfg.RequestSubject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		s.log.Info("NATS connection closed")
	}
}
