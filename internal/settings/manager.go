package settings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ChangeFunc observes a saved change. field is one of the Field* constants
// and s is the snapshot that was persisted.
type ChangeFunc func(field string, s Settings)

// Manager holds the current settings for one Store.
//
// Setters are serialized: each compares, updates memory, saves and then
// notifies observers before the next setter starts. A failed save restores
// the previous in-memory value and notifies nobody. Observers run on the
// setter's goroutine and must not call setters on the same Manager.
type Manager struct {
	store  Store
	logger *zap.Logger

	writeMu sync.Mutex

	mu        sync.RWMutex
	current   Settings
	observers []ChangeFunc
}

// Open loads the persisted settings from store.
func Open(ctx context.Context, store Store, opts ...Option) (*Manager, error) {
	o := applyOptions(opts)
	s, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, logger: o.logger, current: s}, nil
}

// Snapshot returns the current settings.
func (m *Manager) Snapshot() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange registers an observer for saved changes.
func (m *Manager) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// SetAutomaticCheckEnabled enables or disables the automatic check.
func (m *Manager) SetAutomaticCheckEnabled(ctx context.Context, enabled bool) error {
	return m.update(ctx, FieldAutomaticCheckEnabled, func(s *Settings) bool {
		if s.AutomaticCheckEnabled == enabled {
			return false
		}
		s.AutomaticCheckEnabled = enabled
		return true
	})
}

// SetLastSuccessfulCheck records when a check last succeeded.
func (m *Manager) SetLastSuccessfulCheck(ctx context.Context, at time.Time) error {
	at = normalizeTime(at)
	return m.update(ctx, FieldLastSuccessfulCheck, func(s *Settings) bool {
		if normalizeTime(s.LastSuccessfulCheck).Equal(at) {
			return false
		}
		s.LastSuccessfulCheck = at
		return true
	})
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) update(ctx context.Context, field string, mutate func(*Settings) bool) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	previous := m.current
	next := previous
	if !mutate(&next) {
		m.mu.Unlock()
		return nil
	}
	m.current = next
	m.mu.Unlock()

	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Lock()
		m.current = previous
		m.mu.Unlock()
		m.logger.Warn("failed to save settings", zap.String("field", field), zap.Error(err))
		return err
	}

	m.mu.RLock()
	observers := append([]ChangeFunc(nil), m.observers...)
	m.mu.RUnlock()

	m.logger.Debug("settings changed", zap.String("field", field))
	for _, fn := range observers {
		fn(field, next)
	}
	return nil
}
