package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultEventsPolicy is tuned for publishing status events from a
// short-lived process: a handful of quick attempts, then give up.
func DefaultEventsPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "status_events",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 2 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("status event publish retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("status event publish retries exhausted", zap.Error(err))
			}
		},
	}
}
