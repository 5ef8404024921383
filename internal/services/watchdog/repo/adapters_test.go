package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/hostwatch/internal/domain/notification"
	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
	"github.com/NordCoder/hostwatch/internal/obs/retry"
	"github.com/NordCoder/hostwatch/internal/repository/statefile"
)

func TestFileState_CorruptFileLoadsDefaults(t *testing.T) {
	for name, body := range map[string]string{
		"garbage":       "{not json",
		"trailing data": `{"consecutive_failures": 3}}}garbage`,
		"negative":      `{"consecutive_failures": -1}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			a := FileState{S: statefile.New(path), Log: zap.NewNop()}
			assert.Equal(t, wd.State{}, a.Load(context.Background()))
		})
	}
}

func TestFileState_MissingFileThenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	a := FileState{S: statefile.New(path)}
	ctx := context.Background()

	assert.Equal(t, wd.State{}, a.Load(ctx))

	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	status := wd.StatusUnhealthy
	st := wd.State{ConsecutiveFailures: 2, LastCheckTime: &at, LastStatus: &status}
	require.NoError(t, a.Save(ctx, st))

	got := a.Load(ctx)
	assert.Equal(t, 2, got.ConsecutiveFailures)
	assert.Nil(t, got.LastAlertTime)
	require.NotNil(t, got.LastCheckTime)
	assert.True(t, at.Equal(*got.LastCheckTime))
	require.NotNil(t, got.LastStatus)
	assert.Equal(t, wd.StatusUnhealthy, *got.LastStatus)
}

type stubSender struct{ err error }

func (s stubSender) Send(context.Context, string) error { return s.err }

func TestSender_ErrorBecomesFalse(t *testing.T) {
	assert.True(t, Sender{C: stubSender{}}.SendAlert(context.Background(), "hi"))
	assert.False(t, Sender{C: stubSender{err: errors.New("503")}}.SendAlert(context.Background(), "hi"))
}

type flakyEvents struct {
	failures int
	calls    int
}

func (f *flakyEvents) PublishStatusEvent(context.Context, notification.Event) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("leader not available")
	}
	return nil
}

func TestEvents_RetriesPublish(t *testing.T) {
	f := &flakyEvents{failures: 2}
	a := Events{E: f, Policy: retry.Policy{Name: "test_events", Attempts: 3, Backoff: retry.Constant(0)}}
	require.NoError(t, a.Publish(context.Background(), notification.Event{Target: "bcore"}))
	assert.Equal(t, 3, f.calls)
}
