package statefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/NordCoder/hostwatch/internal/domain/watchdog"
)

var ErrCorrupt = errors.New("state file corrupt")

// Store keeps the watchdog state as indented JSON at a fixed path.
// Writers are serialized by the external scheduler, so there is no locking.
type Store struct {
	path string
}

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

// Read returns the zero state and a nil error when the file does not exist.
func (s *Store) Read() (watchdog.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return watchdog.State{}, nil
		}
		return watchdog.State{}, fmt.Errorf("read state: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return watchdog.State{}, nil
	}

	var st watchdog.State
	if err := json.Unmarshal(data, &st); err != nil {
		return watchdog.State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if st.ConsecutiveFailures < 0 {
		return watchdog.State{}, fmt.Errorf("%w: negative consecutive_failures %d", ErrCorrupt, st.ConsecutiveFailures)
	}
	if st.LastStatus != nil && *st.LastStatus != watchdog.StatusHealthy && *st.LastStatus != watchdog.StatusUnhealthy {
		return watchdog.State{}, fmt.Errorf("%w: unknown last_status %q", ErrCorrupt, *st.LastStatus)
	}
	return st, nil
}

// Write creates the parent directory if needed and replaces the file atomically.
func (s *Store) Write(st watchdog.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure state directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	data = append(data, '\n')

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
