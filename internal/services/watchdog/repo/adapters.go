package repo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domkafka "github.com/NordCoder/hostwatch/internal/domain/kafka"
	"github.com/NordCoder/hostwatch/internal/domain/notification"
	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
	"github.com/NordCoder/hostwatch/internal/obs/retry"
	"github.com/NordCoder/hostwatch/internal/repository/postgres"
	"github.com/NordCoder/hostwatch/internal/repository/statefile"
)

func nop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

type FileState struct {
	S   *statefile.Store
	Log *zap.Logger
}

var _ wd.StateStore = FileState{}

func (a FileState) Load(_ context.Context) wd.State {
	st, err := a.S.Read()
	if err != nil {
		nop(a.Log).Warn("state file unreadable, using defaults", zap.String("path", a.S.Path()), zap.Error(err))
		return wd.State{}
	}
	return st
}

func (a FileState) Save(_ context.Context, st wd.State) error { return a.S.Write(st) }

type PostgresState struct {
	R   *postgres.StateRepoImpl
	Key string
	Log *zap.Logger
}

var _ wd.StateStore = PostgresState{}

func (a PostgresState) Load(ctx context.Context) wd.State {
	st, err := a.R.Get(ctx, a.Key)
	switch {
	case err == nil:
		return st
	case errors.Is(err, postgres.ErrNotFound):
		return wd.State{}
	default:
		nop(a.Log).Warn("state row unreadable, using defaults", zap.String("key", a.Key), zap.Error(err))
		return wd.State{}
	}
}

func (a PostgresState) Save(ctx context.Context, st wd.State) error {
	return a.R.Upsert(ctx, a.Key, st)
}

// Sender turns delivery errors into false so the policy never sees them.
type Sender struct {
	C   notification.Sender
	Log *zap.Logger
}

var _ wd.AlertSender = Sender{}

func (a Sender) SendAlert(ctx context.Context, message string) bool {
	if err := a.C.Send(ctx, message); err != nil {
		nop(a.Log).Warn("notification not delivered", zap.Error(err))
		return false
	}
	return true
}

type Journal struct{ R notification.Repo }

func (a Journal) Record(ctx context.Context, n *notification.Notification) error {
	return a.R.Create(ctx, n)
}

type Events struct {
	E      domkafka.StatusEvents
	Policy retry.Policy
}

func (a Events) Publish(ctx context.Context, ev notification.Event) error {
	return retry.Do(ctx, func() error {
		return a.E.PublishStatusEvent(ctx, ev)
	}, a.Policy)
}
