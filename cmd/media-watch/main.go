package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	config "github.com/NordCoder/hostwatch/internal/config/media-watch"
	shared "github.com/NordCoder/hostwatch/internal/config/shared"
	"github.com/NordCoder/hostwatch/internal/obs"
	"github.com/NordCoder/hostwatch/internal/repository/webhook"
	mediawatch "github.com/NordCoder/hostwatch/internal/services/media-watch"
)

var version = "dev"

func notify(l *zap.Logger, state string) {
	if ok, err := daemon.SdNotify(false, state); err != nil {
		l.Warn("sd_notify", zap.String("state", state), zap.Error(err))
	} else if ok {
		l.Debug("sd_notify", zap.String("state", state))
	}
}

func main() {
	// init
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shared.LoadEnvFile(); err != nil {
		log.Printf("env file: %v", err)
	}
	cfg, err := config.Load(shared.PathFromEnv("MEDIA_WATCH_CONFIG", config.DefaultPath))
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig("media-watch", version))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// watcher
	sender := webhook.New(cfg.Webhook).WithLogger(l)
	w, err := mediawatch.New(mediawatch.Config{
		Dirs:       cfg.Media.Dirs,
		Debounce:   cfg.Media.Debounce,
		Extensions: cfg.Media.Extensions,
	}, sender, l)
	if err != nil {
		l.Fatal("watcher init", zap.Error(err))
	}
	defer func() { _ = w.Close() }()
	w.Start()

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, w.Healthy, l)

	notify(l, daemon.SdNotifyReady)

	g, gctx := errgroup.WithContext(root)
	g.Go(func() error {
		defer stop()
		return w.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		notify(l, daemon.SdNotifyStopping)
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return obs.ShutdownMetricsServer(shCtx, ms)
	})

	if err := g.Wait(); err != nil {
		l.Error("media-watch stopped", zap.Error(err))
	}
	l.Info("bye")
}
