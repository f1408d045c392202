package config

import (
	"fmt"
	"sync"
)

// ConfigManager provides thread-safe access to live configuration.
type ConfigManager interface {
	Get() *Config
	Set(cfg *Config)
	Reload(path string) error
}

// RWMutexManager provides thread-safe read-heavy config access using
// RWMutex, and lets callers subscribe to hot-reloads so a running
// coordinator can pick up new schedule policy thresholds without a
// restart (spec's config is otherwise read once at startup).
type RWMutexManager struct {
	mu       sync.RWMutex
	cfg      *Config
	onReload []func(*Config)
}

// NewManager constructs a manager with an initial config.
func NewManager(initial *Config) *RWMutexManager {
	return &RWMutexManager{cfg: initial.Clone()}
}

// NewRWMutexManager constructs a manager with an initial config.
func NewRWMutexManager(initial *Config) *RWMutexManager {
	return NewManager(initial)
}

// Get returns a cloned config snapshot under a shared lock.
//
// Returning a clone prevents shared mutable state from leaking across readers.
func (m *RWMutexManager) Get() *Config {
	if m == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Clone()
}

// Set updates the current config pointer under an exclusive lock.
func (m *RWMutexManager) Set(cfg *Config) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg.Clone()
}

// Reload loads config from path, atomically swaps it into place, and
// notifies every OnReload subscriber with the new snapshot. Subscribers
// run outside the manager's lock so they may safely call Get.
func (m *RWMutexManager) Reload(path string) error {
	if m == nil {
		return fmt.Errorf("config manager is nil")
	}
	if path == "" {
		return fmt.Errorf("config reload path is required")
	}

	loaded, err := Load(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.cfg = loaded.Clone()
	subscribers := append([]func(*Config){}, m.onReload...)
	snapshot := m.cfg.Clone()
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
	return nil
}

// OnReload registers fn to run, with the freshly reloaded config, after
// every successful Reload. Used by pec-daemon to push hot-reloaded
// schedule thresholds into its resident Coordinator.
func (m *RWMutexManager) OnReload(fn func(*Config)) {
	if m == nil || fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

var _ ConfigManager = (*RWMutexManager)(nil)
