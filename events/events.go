// Package events publica cambios de diagnósticos para consumidores externos.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectDiagnosisCreated = "diagnosis.created"
	SubjectDiagnosisUpdated = "diagnosis.updated"
	SubjectDiagnosisDeleted = "diagnosis.deleted"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// DiagnosisEvent es el payload de los subjects diagnosis.*
type DiagnosisEvent struct {
	DiagnosisID string    `json:"diagnosis_id"`
	UserEmail   string    `json:"user_email"`
	Source      string    `json:"source,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NATSPublisher publica en NATS codificando en JSON
type NATSPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

func ConnectNATS(url string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("medibot-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	logger.Info("connected to nats", "url", nc.ConnectedUrl())
	return &NATSPublisher{nc: nc, logger: logger}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, v any) error {
	if p.nc == nil || p.nc.IsClosed() {
		return nats.ErrConnectionClosed
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// NoopPublisher se usa cuando NATS_URL no está configurado
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
