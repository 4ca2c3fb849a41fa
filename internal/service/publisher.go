package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

// EventPublisher fans committed events out to interested consumers.
// Publishing is best effort and never blocks or fails the write path.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event)
}

type committedEvent struct {
	models.Event
	SentAt time.Time `json:"sent_at"`
}

type natsEventPublisher struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewNATSEventPublisher wraps a NATS connection. A nil conn yields a
// publisher that drops everything, so callers never need to guard.
func NewNATSEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	if subjectBase == "" {
		subjectBase = "extrapay.events"
	}
	return &natsEventPublisher{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsEventPublisher) Publish(_ context.Context, event models.Event) {
	if p.conn == nil {
		return
	}
	payload, err := json.Marshal(committedEvent{Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		p.logger.Warn().Err(err).Uint("event_id", event.ID).Msg("failed to encode event")
		return
	}
	subject := fmt.Sprintf("%s.%d", p.subjectBase, event.DistrictID)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Uint("event_id", event.ID).Msg("failed to publish event")
	}
}
