package media_watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/NordCoder/hostwatch/internal/domain/notification"
)

var (
	mEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostwatch_media_events_total",
		Help: "Create events seen under the watched trees.",
	})
	mNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwatch_media_notifications_total",
		Help: "New-content notifications by kind and delivery result.",
	}, []string{"kind", "result"})
	mDebounced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostwatch_media_debounced_total",
		Help: "Candidates dropped by the debounce window.",
	})
	mErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostwatch_media_errors_total",
		Help: "Watcher errors.",
	})
	mWatched = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hostwatch_media_watched_dirs",
		Help: "Directories currently watched.",
	})
)

type Config struct {
	Dirs       []string
	Debounce   time.Duration
	Extensions []string
}

type Watcher struct {
	cfg    Config
	exts   map[string]bool
	fs     *fsnotify.Watcher
	deb    *Debouncer
	sender notification.Sender
	log    *zap.Logger
}

func New(cfg Config, sender notification.Sender, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	return &Watcher{
		cfg:    cfg,
		exts:   ExtensionSet(cfg.Extensions),
		fs:     fw,
		deb:    NewDebouncer(cfg.Debounce, nil),
		sender: sender,
		log:    log.With(zap.String("component", "media-watch")),
	}, nil
}

// Start registers every configured tree. Missing directories are logged and skipped.
func (w *Watcher) Start() {
	w.log.Info("=== media watcher starting ===")
	for _, dir := range w.cfg.Dirs {
		w.log.Info("watching directory", zap.String("dir", dir))
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			w.log.Warn("directory does not exist", zap.String("dir", dir))
			continue
		}
		w.addTree(dir)
	}
	mWatched.Set(float64(len(w.fs.WatchList())))
}

func (w *Watcher) addTree(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Debug("walk", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			mErrors.Inc()
			w.log.Warn("watch add failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		w.log.Warn("walk tree", zap.String("root", root), zap.Error(err))
	}
}

// Healthy fails when nothing is being watched.
func (w *Watcher) Healthy(context.Context) error {
	if len(w.fs.WatchList()) == 0 {
		return errors.New("no directories watched")
	}
	return nil
}

// Run consumes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			mErrors.Inc()
			w.log.Warn("fsnotify error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error { return w.fs.Close() }

// fsnotify reports a move into a watched directory as Create.
func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) {
		return
	}
	mEvents.Inc()
	w.log.Info("event detected", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	st, err := os.Stat(ev.Name)
	isDir := err == nil && st.IsDir()
	if isDir {
		w.addTree(ev.Name)
		mWatched.Set(float64(len(w.fs.WatchList())))
	}
	if !IsCandidate(ev.Name, isDir, w.exts) {
		return
	}

	item := Classify(ev.Name)
	if ok, since := w.deb.Allow(item.Key); !ok {
		mDebounced.Inc()
		w.log.Info("debounced", zap.String("key", item.Key), zap.Duration("since", since))
		return
	}

	kind := item.Kind.Label()
	if err := w.sender.Send(ctx, item.Message()); err != nil {
		mNotifications.WithLabelValues(kind, "failed").Inc()
		w.log.Warn("notification not delivered", zap.String("name", item.Name), zap.Error(err))
		return
	}
	mNotifications.WithLabelValues(kind, "sent").Inc()
	w.log.Info("notification sent", zap.String("name", item.Name), zap.String("kind", kind))
}
