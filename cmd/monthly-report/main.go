package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	config "github.com/NordCoder/hostwatch/internal/config/report"
	shared "github.com/NordCoder/hostwatch/internal/config/shared"
	"github.com/NordCoder/hostwatch/internal/obs"
	"github.com/NordCoder/hostwatch/internal/repository/webhook"
	"github.com/NordCoder/hostwatch/internal/services/report"
)

var version = "dev"

func wire(cfg *config.Config, l *zap.Logger) *report.Runner {
	server := cfg.Report.ServerName
	if server == "" {
		server, _ = os.Hostname()
	}

	collector := report.NewCollector(report.CollectorConfig{
		PublicIPURL: cfg.Report.PublicIPURL,
		SSHPort:     cfg.Report.SSHPort,
		Services:    cfg.Report.Services,
		MaxDrives:   cfg.Report.MaxDrives,
		Timeout:     cfg.Report.CmdTimeout,
		UserAgent:   cfg.Webhook.UserAgent,
	}, report.HostSource(), report.ExecRunner{Timeout: cfg.Report.CmdTimeout}).WithLogger(l)

	return report.NewRunner(l, server, collector, webhook.New(cfg.Webhook).WithLogger(l)).
		WithSchedule(cfg.Report.Schedule).
		WithTextfile(cfg.Metrics.Textfile)
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
	cfg, err := config.Load(shared.PathFromEnv("REPORT_CONFIG", config.DefaultPath))
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig("monthly-report", version))
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer func() { _ = l.Sync() }()
	if cfg.Webhook.URL == "" {
		l.Warn("webhook.url is empty, the report cannot be delivered")
	}

	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Error("otel init", zap.Error(err))
	} else {
		defer func() { _ = otelCloser.Shutdown(context.Background()) }()
	}

	if err := wire(cfg, l).Run(root); err != nil {
		l.Error("report", zap.Error(err))
		return 1
	}
	return 0
}
