package watchdog

import (
	"context"
	"time"
)

type StateStore interface {
	Load(ctx context.Context) State
	Save(ctx context.Context, s State) error
}

type Prober interface {
	PerformAllChecks(ctx context.Context, address string, ports []int) CheckResult
}

type AlertSender interface {
	SendAlert(ctx context.Context, message string) bool
}

type Clock interface {
	Now() time.Time
}
