package watchdog

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
	"github.com/NordCoder/hostwatch/internal/obs"
	"github.com/NordCoder/hostwatch/internal/obs/retry"
)

const (
	StateAttempting = "attempting"
	StateWaiting    = "waiting"
	StateSucceeded  = "succeeded"
	StateExhausted  = "exhausted"

	evSucceed = "succeed"
	evWait    = "wait"
	evResume  = "resume"
	evExhaust = "exhaust"
)

type SleepFunc func(ctx context.Context, d time.Duration) error

// Outcome is the verdict of the last attempt of a cycle.
type Outcome struct {
	Verdict  wd.Verdict
	Result   wd.CheckResult
	Attempts int
	Final    string
}

type RetryController struct {
	probe       wd.Prober
	maxAttempts int
	delay       time.Duration
	sleep       SleepFunc
	log         *zap.Logger
}

func NewRetryController(probe wd.Prober, maxAttempts int, delay time.Duration) *RetryController {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &RetryController{
		probe:       probe,
		maxAttempts: maxAttempts,
		delay:       delay,
		sleep:       retry.Sleep,
		log:         zap.L().With(zap.String("component", "retry")),
	}
}

func (rc *RetryController) WithLogger(l *zap.Logger) *RetryController {
	if l == nil {
		return rc
	}
	cp := *rc
	cp.log = l.With(zap.String("component", "retry"))
	return &cp
}

func (rc *RetryController) WithSleep(s SleepFunc) *RetryController {
	if s == nil {
		return rc
	}
	cp := *rc
	cp.sleep = s
	return &cp
}

func (rc *RetryController) newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateAttempting,
		fsm.Events{
			{Name: evSucceed, Src: []string{StateAttempting}, Dst: StateSucceeded},
			{Name: evWait, Src: []string{StateAttempting}, Dst: StateWaiting},
			{Name: evResume, Src: []string{StateWaiting}, Dst: StateAttempting},
			{Name: evExhaust, Src: []string{StateAttempting}, Dst: StateExhausted},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				rc.log.Debug("retry transition", zap.String("from", e.Src), zap.String("to", e.Dst))
			},
		},
	)
}

// Run probes the target until it looks healthy or the attempts run out.
// A context cancelled during an attempt or the wait aborts the cycle with an error.
func (rc *RetryController) Run(ctx context.Context, t wd.Target) (Outcome, error) {
	m := rc.newMachine()
	var out Outcome

	for attempt := 1; ; attempt++ {
		rc.log.Info("check attempt", zap.Int("attempt", attempt), zap.Int("max", rc.maxAttempts))

		actx, span, log := obs.StartSpan(ctx, rc.log, "watchdog", "watchdog.attempt",
			attribute.Int("attempt", attempt),
			attribute.String("target", t.Address),
		)
		res := rc.probe.PerformAllChecks(actx, t.Address, t.Ports)
		v := EvaluateHealth(res)
		span.SetAttributes(attribute.Bool("healthy", v.Healthy))
		span.End()

		out = Outcome{Verdict: v, Result: res, Attempts: attempt}
		if err := ctx.Err(); err != nil {
			out.Final = m.Current()
			return out, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		if v.Healthy {
			log.Info("check succeeded", zap.String("reason", v.Reason))
			rc.fire(ctx, m, evSucceed)
			break
		}
		log.Warn("check failed", zap.String("reason", v.Reason))

		if attempt >= rc.maxAttempts {
			rc.fire(ctx, m, evExhaust)
			break
		}

		rc.fire(ctx, m, evWait)
		log.Info("waiting before retry", zap.Duration("delay", rc.delay))
		if err := rc.sleep(ctx, rc.delay); err != nil {
			out.Final = m.Current()
			return out, fmt.Errorf("retry wait: %w", err)
		}
		rc.fire(ctx, m, evResume)
	}

	out.Final = m.Current()
	return out, nil
}

func (rc *RetryController) fire(ctx context.Context, m *fsm.FSM, ev string) {
	if err := m.Event(ctx, ev); err != nil {
		rc.log.Error("retry state machine", zap.String("event", ev), zap.String("state", m.Current()), zap.Error(err))
	}
}
