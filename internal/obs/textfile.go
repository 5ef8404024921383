package obs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// WriteTextfile dumps the default registry for the node_exporter textfile
// collector. An empty path disables the dump.
func WriteTextfile(path string, l *zap.Logger) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Warn("metrics textfile dir", zap.String("path", path), zap.Error(err))
		return
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		l.Warn("metrics textfile", zap.String("path", path), zap.Error(fmt.Errorf("write: %w", err)))
		return
	}
	l.Debug("metrics textfile written", zap.String("path", path))
}
