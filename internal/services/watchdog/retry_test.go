package watchdog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
)

var target = wd.Target{Name: "bcore", Address: "192.0.2.10", Ports: []int{22, 80}}

func TestRetry_StopsOnFirstSuccess(t *testing.T) {
	p := &scriptedProber{results: []wd.CheckResult{down(22, 80), down(22, 80), up()}}
	s := &sleepRecorder{}
	rc := NewRetryController(p, 5, 50*time.Second).WithSleep(s.sleep)

	out, err := rc.Run(context.Background(), target)
	require.NoError(t, err)

	assert.True(t, out.Verdict.Healthy)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, []time.Duration{50 * time.Second, 50 * time.Second}, s.slept)
	assert.Equal(t, StateSucceeded, out.Final)
}

func TestRetry_FirstAttemptHealthyNeverSleeps(t *testing.T) {
	p := &scriptedProber{results: []wd.CheckResult{up()}}
	s := &sleepRecorder{}
	out, err := NewRetryController(p, 5, time.Second).WithSleep(s.sleep).Run(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Attempts)
	assert.Empty(t, s.slept)
}

func TestRetry_Exhaustion(t *testing.T) {
	p := &scriptedProber{results: []wd.CheckResult{
		{TCP: []wd.PortResult{{Port: 22}, {Port: 80, OK: false}}},
		down(443),
	}}
	s := &sleepRecorder{}
	rc := NewRetryController(p, 4, 10*time.Second).WithSleep(s.sleep)

	out, err := rc.Run(context.Background(), target)
	require.NoError(t, err)

	assert.False(t, out.Verdict.Healthy)
	assert.Equal(t, 4, p.calls)
	assert.Len(t, s.slept, 3)
	assert.Equal(t, "All checks failed (ping: FAIL, TCP ports 443: FAIL)", out.Verdict.Reason)
	assert.Equal(t, StateExhausted, out.Final)
}

func TestRetry_CancelledWaitAborts(t *testing.T) {
	p := &scriptedProber{results: []wd.CheckResult{down(22)}}
	s := &sleepRecorder{err: context.Canceled}

	out, err := NewRetryController(p, 5, time.Second).WithSleep(s.sleep).Run(context.Background(), target)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, StateWaiting, out.Final)
}

func TestRetry_RealSleepHonoursContext(t *testing.T) {
	p := &scriptedProber{results: []wd.CheckResult{down(22)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRetryController(p, 3, time.Hour).Run(ctx, target)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRetry_CancelledDuringFinalAttemptAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &cancelOnAttempt{scriptedProber: scriptedProber{results: []wd.CheckResult{down(22)}}, on: 2, cancel: cancel}
	s := &sleepRecorder{}

	out, err := NewRetryController(p, 2, time.Second).WithSleep(s.sleep).Run(ctx, target)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, out.Attempts)
	assert.Len(t, s.slept, 1)
	assert.Equal(t, StateAttempting, out.Final)
}
