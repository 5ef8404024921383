package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	shared "github.com/NordCoder/hostwatch/internal/config/shared"
	config "github.com/NordCoder/hostwatch/internal/config/watchdog"
	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
	"github.com/NordCoder/hostwatch/internal/obs"
	"github.com/NordCoder/hostwatch/internal/obs/retry"
	"github.com/NordCoder/hostwatch/internal/repository/kafka"
	pg "github.com/NordCoder/hostwatch/internal/repository/postgres"
	"github.com/NordCoder/hostwatch/internal/repository/statefile"
	"github.com/NordCoder/hostwatch/internal/repository/webhook"
	"github.com/NordCoder/hostwatch/internal/services/watchdog"
	wdrepo "github.com/NordCoder/hostwatch/internal/services/watchdog/repo"
)

var version = "dev"

// stateBackend picks the configured store. A postgres connection failure
// falls back to the state file so the cycle still runs.
func stateBackend(ctx context.Context, cfg *config.Config, l *zap.Logger) (wd.StateStore, watchdog.Journal, func()) {
	file := wdrepo.FileState{S: statefile.New(cfg.State.Path), Log: l}
	if cfg.State.Backend != config.BackendPostgres {
		return file, nil, func() {}
	}

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		l.Error("db connect, using state file", zap.Error(err), zap.String("path", cfg.State.Path))
		return file, nil, func() {}
	}
	store := wdrepo.PostgresState{R: pg.NewStateRepo(db), Key: cfg.State.Key, Log: l}
	journal := wdrepo.Journal{R: pg.NewNotificationRepo(db)}
	return store, journal, db.Close
}

func wire(ctx context.Context, cfg *config.Config, l *zap.Logger) (*watchdog.Runner, func()) {
	target := wd.Target{Name: cfg.Target.Name, Address: cfg.Target.Address, Ports: cfg.TCP.Ports}
	if target.Name == "" {
		target.Name = target.Address
	}
	source := cfg.Target.Source
	if source == "" {
		source, _ = os.Hostname()
	}

	probe := watchdog.Probe{
		ICMP: watchdog.NewPinger(watchdog.PingConfig{
			Count:      cfg.Ping.Count,
			Timeout:    cfg.Ping.Timeout,
			Privileged: cfg.Ping.Privileged,
		}).WithLogger(l),
		TCP: watchdog.NewTCPProber(cfg.TCP.Timeout).WithLogger(l),
	}
	rc := watchdog.NewRetryController(probe, cfg.Retry.MaxAttempts, cfg.Retry.Delay).WithLogger(l)

	sender := wdrepo.Sender{C: webhook.New(cfg.Webhook).WithLogger(l), Log: l}
	policy := watchdog.NewAlertPolicy(watchdog.PolicyConfig{
		FailuresBeforeAlert: cfg.Alert.FailuresBeforeAlert,
		Cooldown:            cfg.Alert.Cooldown,
		Source:              source,
	}, watchdog.SystemClock{}, sender).WithLogger(l)

	store, journal, closeDB := stateBackend(ctx, cfg, l)
	runner := watchdog.NewRunner(l, target, store, rc, policy).WithTextfile(cfg.Metrics.Textfile)
	if journal != nil {
		runner = runner.WithJournal(journal)
	}

	cleanup := closeDB
	if cfg.Kafka.Enable {
		prod := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
		runner = runner.WithEvents(wdrepo.Events{
			E:      kafka.NewStatusEventsKafka(prod),
			Policy: retry.DefaultEventsPolicy(l),
		})
		cleanup = func() {
			_ = prod.Close()
			closeDB()
		}
	}
	return runner, cleanup
}

func main() {
	os.Exit(run())
}

func run() int {
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shared.LoadEnvFile(); err != nil {
		log.Printf("env file: %v", err)
	}
	cfg, err := config.Load(shared.PathFromEnv("WATCHDOG_CONFIG", config.DefaultPath))
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig("watchdog", version))
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer func() { _ = l.Sync() }()
	for _, w := range cfg.Warnings() {
		l.Warn(w)
	}

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Error("otel init", zap.Error(err))
	} else {
		defer func() { _ = otelCloser.Shutdown(context.Background()) }()
	}

	runner, cleanup := wire(root, cfg, l)
	defer cleanup()

	return runner.Run(root)
}
