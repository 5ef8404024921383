package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_FallsBackToInfoOnBadLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "nope", App: "watchdog", Output: []string{filepath.Join(t.TempDir(), "out.log")}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}

func TestHealthz(t *testing.T) {
	healthy := createMetricsServer(":0", func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := createMetricsServer(":0", func(context.Context) error { return errors.New("watcher stopped") })
	rec = httptest.NewRecorder()
	broken.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "watcher stopped")
}

func TestWriteTextfile(t *testing.T) {
	promauto.NewCounter(prometheus.CounterOpts{Name: "obs_textfile_probe_total", Help: "test"}).Inc()

	path := filepath.Join(t.TempDir(), "nested", "watchdog.prom")
	WriteTextfile(path, zap.NewNop())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "obs_textfile_probe_total 1")
}

func TestWriteTextfile_Disabled(t *testing.T) {
	WriteTextfile("", zap.NewNop())
}

func TestShutdownMetricsServer_Nil(t *testing.T) {
	require.NoError(t, ShutdownMetricsServer(context.Background(), nil))
}
