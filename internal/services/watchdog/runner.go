package watchdog

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/NordCoder/hostwatch/internal/domain/notification"
	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
	"github.com/NordCoder/hostwatch/internal/obs"
)

type Journal interface {
	Record(ctx context.Context, n *notification.Notification) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev notification.Event) error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

var (
	mCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwatch_watchdog_cycles_total",
		Help: "Completed check cycles by final verdict.",
	}, []string{"target", "result"})
	mAttempts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hostwatch_watchdog_attempts",
		Help: "Attempts used by the last cycle.",
	}, []string{"target"})
	mUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hostwatch_watchdog_up",
		Help: "1 when the last cycle ended healthy.",
	}, []string{"target"})
	mFailures = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hostwatch_watchdog_consecutive_failures",
		Help: "Consecutive unhealthy cycles.",
	}, []string{"target"})
	mLastCheck = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hostwatch_watchdog_last_check_timestamp_seconds",
		Help: "Unix time of the last finished cycle.",
	}, []string{"target"})
	mNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwatch_watchdog_notifications_total",
		Help: "Notification dispatch attempts.",
	}, []string{"target", "kind", "result"})
	mErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwatch_watchdog_errors_total",
		Help: "Non-fatal errors by stage.",
	}, []string{"stage"})
)

// Runner executes one check cycle: load state, probe with retries, apply the
// alert policy, persist. It is meant to be started once per scheduler tick.
type Runner struct {
	log      *zap.Logger
	target   wd.Target
	store    wd.StateStore
	retry    *RetryController
	policy   *AlertPolicy
	journal  Journal
	events   EventPublisher
	textfile string
}

func NewRunner(log *zap.Logger, target wd.Target, store wd.StateStore, rc *RetryController, policy *AlertPolicy) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		log:    log.With(zap.String("component", "watchdog")),
		target: target,
		store:  store,
		retry:  rc,
		policy: policy,
	}
}

func (r *Runner) WithJournal(j Journal) *Runner {
	cp := *r
	cp.journal = j
	return &cp
}

func (r *Runner) WithEvents(e EventPublisher) *Runner {
	cp := *r
	cp.events = e
	return &cp
}

// WithTextfile enables writing metrics for node_exporter after the cycle.
func (r *Runner) WithTextfile(path string) *Runner {
	cp := *r
	cp.textfile = path
	return &cp
}

// Run returns the process exit code: 0 when healthy, 1 otherwise.
func (r *Runner) Run(ctx context.Context) int {
	ctx, span, log := obs.StartSpan(ctx, r.log, "watchdog", "watchdog.cycle",
		attribute.String("target.name", r.target.Name),
		attribute.String("target.address", r.target.Address),
	)
	defer span.End()

	log.Info("=== Watchdog starting ===")
	log.Info("target", zap.String("name", r.target.Name), zap.String("address", r.target.Address), zap.Ints("ports", r.target.Ports))

	prev := r.store.Load(ctx)

	out, err := r.retry.Run(ctx, r.target)
	if err != nil {
		mErrors.WithLabelValues("retry").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "cycle aborted")
		log.Error("cycle aborted, state not persisted", zap.Error(err))
		return 1
	}
	mAttempts.WithLabelValues(r.target.Name).Set(float64(out.Attempts))

	dec := r.policy.Apply(ctx, prev, r.target, out.Verdict)

	if err := r.store.Save(ctx, dec.State); err != nil {
		mErrors.WithLabelValues("state_save").Inc()
		log.Error("state not saved", zap.Error(err))
	}

	if dec.Kind != "" {
		r.afterDispatch(ctx, log, dec, out.Verdict)
	}

	r.observe(dec)
	obs.WriteTextfile(r.textfile, log)

	if dec.ExitCode == 0 {
		log.Info("=== Check complete: HEALTHY ===")
	} else {
		span.SetStatus(codes.Error, out.Verdict.Reason)
		log.Info("=== Check complete: UNHEALTHY ===")
	}
	return dec.ExitCode
}

func (r *Runner) afterDispatch(ctx context.Context, log *zap.Logger, dec Decision, v wd.Verdict) {
	result := "sent"
	if !dec.Sent {
		result = "failed"
	}
	mNotifications.WithLabelValues(r.target.Name, string(dec.Kind), result).Inc()
	if !dec.Sent {
		return
	}

	at := time.Now()
	if dec.State.LastCheckTime != nil {
		at = *dec.State.LastCheckTime
	}

	if r.journal != nil {
		n := &notification.Notification{Target: r.target.Name, Kind: dec.Kind, SentAt: at, Payload: dec.Message}
		if err := r.journal.Record(ctx, n); err != nil {
			mErrors.WithLabelValues("journal").Inc()
			log.Warn("notification not journaled", zap.Error(err))
		}
	}

	if r.events != nil {
		ev := notification.Event{
			Target:              r.target.Name,
			Address:             r.target.Address,
			Kind:                dec.Kind,
			ConsecutiveFailures: dec.State.ConsecutiveFailures,
			At:                  at.UTC(),
		}
		if dec.Kind == notification.KindAlert {
			ev.Reason = v.Reason
		}
		if err := r.events.Publish(ctx, ev); err != nil {
			mErrors.WithLabelValues("events").Inc()
			log.Warn("status event not published", zap.Error(err))
		}
	}
}

func (r *Runner) observe(dec Decision) {
	name := r.target.Name
	up, result := 0.0, "unhealthy"
	if dec.ExitCode == 0 {
		up, result = 1, "healthy"
	}
	mCycles.WithLabelValues(name, result).Inc()
	mUp.WithLabelValues(name).Set(up)
	mFailures.WithLabelValues(name).Set(float64(dec.State.ConsecutiveFailures))
	if dec.State.LastCheckTime != nil {
		mLastCheck.WithLabelValues(name).Set(float64(dec.State.LastCheckTime.Unix()))
	}
}
