package kafka

import (
	"context"

	"github.com/NordCoder/hostwatch/internal/domain/notification"
)

type StatusEvents interface {
	PublishStatusEvent(ctx context.Context, ev notification.Event) error
}
