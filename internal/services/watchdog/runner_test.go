package watchdog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/hostwatch/internal/domain/notification"
	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
)

func newTestRunner(p wd.Prober, store *memStore, sender *recordingSender, s *sleepRecorder) *Runner {
	rc := NewRetryController(p, 2, time.Second).WithSleep(s.sleep)
	pol := NewAlertPolicy(PolicyConfig{FailuresBeforeAlert: 2, Cooldown: 2 * time.Hour, Source: "Pi"}, &fixedClock{t: now}, sender)
	return NewRunner(zap.NewNop(), target, store, rc, pol)
}

func TestRunner_TwoBadCyclesThenRecovery(t *testing.T) {
	store := &memStore{}
	sender := &recordingSender{ok: true}
	j := &memJournal{}
	ev := &memEvents{}
	bad := &scriptedProber{results: []wd.CheckResult{down(22, 80)}}

	r := newTestRunner(bad, store, sender, &sleepRecorder{}).WithJournal(j).WithEvents(ev)
	ctx := context.Background()

	assert.Equal(t, 1, r.Run(ctx))
	assert.Empty(t, sender.msgs)
	assert.Equal(t, 1, store.st.ConsecutiveFailures)

	assert.Equal(t, 1, r.Run(ctx))
	require.Len(t, sender.msgs, 1)
	require.Len(t, j.got, 1)
	assert.Equal(t, notification.KindAlert, j.got[0].Kind)
	require.Len(t, ev.got, 1)
	assert.Equal(t, "bcore", ev.got[0].Target)
	assert.Equal(t, 2, ev.got[0].ConsecutiveFailures)
	assert.NotEmpty(t, ev.got[0].Reason)

	good := newTestRunner(&scriptedProber{results: []wd.CheckResult{up()}}, store, sender, &sleepRecorder{}).
		WithJournal(j).WithEvents(ev)
	assert.Equal(t, 0, good.Run(ctx))
	require.Len(t, sender.msgs, 2)
	require.Len(t, ev.got, 2)
	assert.Equal(t, notification.KindRecovery, ev.got[1].Kind)
	assert.Empty(t, ev.got[1].Reason)
	assert.Equal(t, 0, store.st.ConsecutiveFailures)
	assert.Equal(t, 3, store.saves)
}

func TestRunner_AbortedCycleDoesNotSave(t *testing.T) {
	store := &memStore{}
	r := newTestRunner(&scriptedProber{results: []wd.CheckResult{down(22)}}, store, &recordingSender{ok: true},
		&sleepRecorder{err: context.Canceled})

	assert.Equal(t, 1, r.Run(context.Background()))
	assert.Equal(t, 0, store.saves)
}

func TestRunner_FailedSendIsNotJournaled(t *testing.T) {
	store := &memStore{st: wd.State{ConsecutiveFailures: 1}}
	j := &memJournal{}
	r := newTestRunner(&scriptedProber{results: []wd.CheckResult{down(22)}}, store, &recordingSender{ok: false},
		&sleepRecorder{}).WithJournal(j)

	assert.Equal(t, 1, r.Run(context.Background()))
	assert.Empty(t, j.got)
	assert.Nil(t, store.st.LastAlertTime)
	assert.Equal(t, 1, store.saves)
}

func TestRunner_CancelledDuringFinalAttemptDoesNotSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &memStore{}
	sender := &recordingSender{ok: true}
	p := &cancelOnAttempt{scriptedProber: scriptedProber{results: []wd.CheckResult{down(22)}}, on: 2, cancel: cancel}

	r := newTestRunner(p, store, sender, &sleepRecorder{})
	assert.Equal(t, 1, r.Run(ctx))
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, 0, store.st.ConsecutiveFailures)
	assert.Empty(t, sender.msgs)
}
