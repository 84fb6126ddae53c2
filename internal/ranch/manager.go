package ranch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/ranch/internal/behavior"
)

// Manager drives the population tick of all registered ranches.
type Manager struct {
	ranches    sync.Map // ranchID → *Ranch
	ranchCount atomic.Int32
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewManager creates a manager ticking every interval (1s when zero).
func NewManager(interval time.Duration) *Manager {
	if interval <= 0 {
		interval = time.Second
	}
	return &Manager{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register adds a ranch, replacing one with the same id.
func (m *Manager) Register(r *Ranch) {
	if _, loaded := m.ranches.Swap(r.ID(), r); !loaded {
		m.ranchCount.Add(1)
	}
	slog.Debug("ranch registered", "ranch", r.ID(), "actors", r.Len())
}

// Unregister removes a ranch.
func (m *Manager) Unregister(id string) {
	if _, ok := m.ranches.LoadAndDelete(id); !ok {
		return
	}
	m.ranchCount.Add(-1)
	slog.Debug("ranch unregistered", "ranch", id)
}

// Get returns a registered ranch.
func (m *Manager) Get(id string) (*Ranch, error) {
	value, ok := m.ranches.Load(id)
	if !ok {
		return nil, fmt.Errorf("ranch %q: %w", id, ErrRanchNotFound)
	}
	return value.(*Ranch), nil
}

// Count returns the number of registered ranches.
func (m *Manager) Count() int {
	return int(m.ranchCount.Load())
}

// Range calls fn for every ranch until fn returns false.
func (m *Manager) Range(fn func(*Ranch) bool) {
	m.ranches.Range(func(_, value any) bool {
		return fn(value.(*Ranch))
	})
}

// Start runs the tick loop (blocks until context is canceled or Stop).
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("ranch tick manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("ranch tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("ranch tick manager stopped")
			return nil

		case now := <-ticker.C:
			m.tickAll(now)
		}
	}
}

// Stop stops the tick loop.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Manager) tickAll(now time.Time) {
	ticked := 0
	m.Range(func(r *Ranch) bool {
		if r.Tick(now) {
			ticked++
		}
		return true
	})

	if ticked > 0 && behavior.IsDebugEnabled() {
		slog.Debug("ranch tick completed", "ranches", ticked)
	}
}

// SaveAll stores every ranch population. All ranches are attempted; the
// errors are joined.
func (m *Manager) SaveAll(ctx context.Context, store Store) error {
	var errs []error
	m.Range(func(r *Ranch) bool {
		actors := r.Snapshot()
		if err := store.SaveActors(ctx, r.ID(), actors); err != nil {
			errs = append(errs, fmt.Errorf("saving ranch %s: %w", r.ID(), err))
			return true
		}
		slog.Debug("ranch saved", "ranch", r.ID(), "actors", len(actors))
		return true
	})
	return errors.Join(errs...)
}

// LoadAll restores every registered ranch from store.
func (m *Manager) LoadAll(ctx context.Context, store Store) error {
	var errs []error
	m.Range(func(r *Ranch) bool {
		actors, err := store.LoadActors(ctx, r.ID())
		if err != nil {
			errs = append(errs, fmt.Errorf("loading ranch %s: %w", r.ID(), err))
			return true
		}
		n := r.Restore(actors)
		slog.Info("ranch loaded", "ranch", r.ID(), "actors", n)
		return true
	})
	return errors.Join(errs...)
}

// RunSaver saves all ranches every interval and once more on shutdown.
func (m *Manager) RunSaver(ctx context.Context, store Store, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// финальное сохранение, контекст уже отменён
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			err := m.SaveAll(saveCtx, store)
			cancel()
			if err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			slog.Info("ranches saved on shutdown", "ranches", m.Count())
			return nil

		case <-ticker.C:
			if err := m.SaveAll(ctx, store); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}
	}
}
