package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/NordCoder/hostwatch/internal/domain/notification"
	"github.com/NordCoder/hostwatch/internal/obs"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var (
	mRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwatch_report_runs_total",
		Help: "Report runs by delivery result.",
	}, []string{"result"})
	mCollect = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hostwatch_report_collect_duration_seconds",
		Help:    "Time spent collecting host facts.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
	mLastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hostwatch_report_last_success_timestamp_seconds",
		Help: "Unix time of the last delivered report.",
	})
)

type Runner struct {
	log       *zap.Logger
	server    string
	collector *Collector
	sender    notification.Sender
	clock     Clock
	schedule  string
	textfile  string
}

func NewRunner(log *zap.Logger, server string, collector *Collector, sender notification.Sender) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		log:       log.With(zap.String("component", "report")),
		server:    server,
		collector: collector,
		sender:    sender,
		clock:     systemClock{},
	}
}

func (r *Runner) WithClock(c Clock) *Runner {
	cp := *r
	cp.clock = c
	return &cp
}

// WithSchedule makes Run repeat on a standard five-field cron expression.
func (r *Runner) WithSchedule(spec string) *Runner {
	cp := *r
	cp.schedule = spec
	return &cp
}

func (r *Runner) WithTextfile(path string) *Runner {
	cp := *r
	cp.textfile = path
	return &cp
}

// RunOnce collects, formats and posts a single report.
func (r *Runner) RunOnce(ctx context.Context) (string, error) {
	ctx, span, log := obs.StartSpan(ctx, r.log, "report", "report.run")
	defer span.End()

	now := r.clock.Now()
	log.Info("building monthly server report")

	start := time.Now()
	facts := r.collector.Collect(ctx, now)
	mCollect.Observe(time.Since(start).Seconds())

	msg := Format(r.server, facts, now)
	log.Info("report built", zap.String("report", msg))

	err := r.sender.Send(ctx, msg)
	if err != nil {
		mRuns.WithLabelValues("failed").Inc()
		span.RecordError(err)
		log.Error("failed to send report", zap.Error(err))
	} else {
		mRuns.WithLabelValues("sent").Inc()
		mLastSuccess.Set(float64(now.Unix()))
		log.Info("report sent")
	}
	obs.WriteTextfile(r.textfile, log)

	if err != nil {
		return msg, fmt.Errorf("send report: %w", err)
	}
	return msg, nil
}

// Run sends one report, or with a schedule keeps sending until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if r.schedule == "" {
		_, err := r.RunOnce(ctx)
		return err
	}

	cl := cronLogger{l: r.log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id, err := c.AddFunc(r.schedule, func() {
		_, _ = r.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("report schedule %q: %w", r.schedule, err)
	}
	c.Start()
	r.log.Info("report scheduled", zap.String("schedule", r.schedule), zap.Time("next", c.Entry(id).Next))

	<-ctx.Done()
	<-c.Stop().Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// cronLogger routes cron's key/value logging into zap.
type cronLogger struct{ l *zap.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Sugar().Debugw("cron: "+msg, kv...)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Sugar().Errorw("cron: "+msg, append(kv, "error", err)...)
}
