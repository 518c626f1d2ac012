package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeListener is invoked with the new snapshot after a successful reload.
type ChangeListener func(*Config)

// Store holds the active configuration snapshot and rebuilds it when the
// backing file changes. A failed reload keeps the previous snapshot so a
// half-written or invalid file never takes the daemon down.
type Store struct {
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	current   *Config
	version   int64
	loadedAt  time.Time
	listeners []ChangeListener
}

// NewStore wraps an already-loaded configuration for hot reloading.
func NewStore(cfg *Config, path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		path:     path,
		logger:   logger,
		current:  cfg,
		version:  1,
		loadedAt: time.Now(),
	}
}

// Current returns the active snapshot. The returned config must be treated as
// read-only; a reload swaps the pointer rather than mutating in place.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the watched configuration file path.
func (s *Store) Path() string {
	return s.path
}

// Version returns the reload generation, starting at 1.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LoadedAt returns when the active snapshot was installed.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Subscribe registers a listener for future reloads.
func (s *Store) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Watch blocks until ctx is done, reloading the snapshot whenever the backing
// file is rewritten. Editors typically replace config files via rename, so the
// parent directory is watched and events are filtered by name.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch config directory %q: %w", dir, err)
	}

	// Rewrites arrive as bursts of Create/Write events; collapse each burst
	// into one reload.
	var pending *time.Timer
	reloads := make(chan struct{}, 1)
	schedule := func() {
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(200*time.Millisecond, func() {
			select {
			case reloads <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("config watcher error", slog.Any("error", err))
		case <-reloads:
			s.Reload()
		}
	}
}

// Reload re-reads the backing file and swaps the snapshot, notifying
// listeners. On failure the previous snapshot stays active.
func (s *Store) Reload() {
	cfg, _, _, err := Load(s.path)
	if err != nil {
		s.logger.Warn("config reload failed, keeping previous snapshot",
			slog.String("path", s.path), slog.Any("error", err))
		return
	}

	s.mu.Lock()
	s.current = cfg
	s.version++
	s.loadedAt = time.Now()
	version := s.version
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("config reloaded", slog.String("path", s.path), slog.Int64("version", version))
	for _, fn := range listeners {
		fn(cfg)
	}
}
