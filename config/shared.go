// ABOUTME: Thread-safe config holder and fsnotify-based hot reload
// ABOUTME: Valid edits to the config file are applied live; invalid ones are logged and ignored

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// reloadDelay lets editors finish writing before the file is read
const reloadDelay = 100 * time.Millisecond

// SharedConfig holds the active config for concurrent readers
type SharedConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// NewSharedConfig creates a holder initialised with cfg
func NewSharedConfig(cfg Config) *SharedConfig {
	return &SharedConfig{cfg: cfg}
}

// Get returns a copy of the current config
func (s *SharedConfig) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cfg
}

// Update replaces the current config
func (s *SharedConfig) Update(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
}

// Watch reloads path whenever it is written and calls onChange with each valid config
// It watches the parent directory so editors that replace the file are picked up.
// Blocks until ctx is cancelled.
func (s *SharedConfig) Watch(ctx context.Context, path string, log zerolog.Logger, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			time.Sleep(reloadDelay)

			cfg, err := LoadConfig(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("ignoring invalid config change")
				continue
			}

			s.Update(cfg)
			log.Info().Str("path", path).Msg("config reloaded")

			if onChange != nil {
				onChange(cfg)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}
