package notification

import "context"

type Repo interface {
	Create(ctx context.Context, n *Notification) error
	ListByTarget(ctx context.Context, target string, limit int) ([]*Notification, error)
}

type Sender interface {
	Send(ctx context.Context, content string) error
}
