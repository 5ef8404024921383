package kafka

import (
	"context"

	"github.com/google/uuid"

	domkafka "github.com/NordCoder/hostwatch/internal/domain/kafka"
	"github.com/NordCoder/hostwatch/internal/domain/notification"
)

type StatusEventsKafka struct {
	p *Producer
}

func NewStatusEventsKafka(p *Producer) *StatusEventsKafka { return &StatusEventsKafka{p: p} }

var _ domkafka.StatusEvents = (*StatusEventsKafka)(nil)

// PublishStatusEvent keys messages by target so one target stays on one partition.
func (e *StatusEventsKafka) PublishStatusEvent(ctx context.Context, ev notification.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	return e.p.PublishJSON(ctx, []byte(ev.Target), ev)
}
