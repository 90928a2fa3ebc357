package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrRequiresRestart is returned by TryReload when the changed settings are
// static (server, storage, logging) and only take effect on restart.
var ErrRequiresRestart = errors.New("configuration change requires restart")

// Manager holds the live configuration and supports hot reload of the
// dynamic subset: the webhook secret and the default beacon duration. Static
// sections are rejected with ErrRequiresRestart.
type Manager struct {
	path string

	mu  sync.RWMutex
	cfg *Config

	logger *slog.Logger
}

// NewManager wraps an already-loaded config.
func NewManager(path string, cfg *Config, logger *slog.Logger) *Manager {
	return &Manager{path: path, cfg: cfg, logger: logger}
}

// Current returns the live config snapshot. Callers must treat it as
// read-only.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// DefaultDuration returns the live default beacon duration.
func (m *Manager) DefaultDuration() time.Duration {
	return m.Current().Beacon.DefaultDuration
}

// WebhookSecret returns the live webhook shared secret ("" = check disabled).
func (m *Manager) WebhookSecret() string {
	return m.Current().Telegram.WebhookSecret
}

// TryReload re-reads the config file and swaps in the new config if only
// dynamic settings changed.
func (m *Manager) TryReload() error {
	next, err := Load(m.path)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.cfg
	if next.Server != cur.Server || next.Storage != cur.Storage || next.Logging != cur.Logging {
		return ErrRequiresRestart
	}

	m.cfg = next
	return nil
}

// Watch reloads the config whenever the file changes, until ctx is done.
// Reload failures are logged, never fatal.
func (m *Manager) Watch(ctx context.Context) error {
	if m.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and config maps typically replace the
	// file rather than write it in place.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("watching config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			switch err := m.TryReload(); {
			case err == nil:
				m.logger.Info("configuration reloaded", "path", m.path)
			case errors.Is(err, ErrRequiresRestart):
				m.logger.Warn("configuration changed but requires restart", "path", m.path)
			default:
				m.logger.Error("configuration reload failed", "path", m.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Error("config watcher error", "error", err)
		}
	}
}
