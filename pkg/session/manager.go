package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/harbor/internal/logging"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates thread access, ensuring runs of one thread never overlap.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.Checkpointer

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks. The locker renews a held lock, so
// the TTL limits recovery time after a crash, not the length of a run.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager over store. A nil store is allowed: the Manager then
// only coordinates locking and every Load reports domain.ErrCheckpointNotFound.
func NewManager(store ports.Checkpointer, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(thread) after unlocking.
func (m *Manager) acquire(thread string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[thread]
	if !exists {
		entry = &lockEntry{}
		m.locks[thread] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(thread string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[thread]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, thread)
	}
}

// Store returns the underlying checkpointer, which may be nil.
func (m *Manager) Store() ports.Checkpointer {
	return m.store
}

// Load returns the latest checkpoint of thread.
func (m *Manager) Load(ctx context.Context, thread string) (*ports.Checkpoint, error) {
	var cp *ports.Checkpoint
	err := m.WithLock(ctx, thread, func(ctx context.Context) error {
		var err error
		cp, err = m.LoadUnlocked(ctx, thread)
		return err
	})
	return cp, err
}

// LoadUnlocked reads a checkpoint without taking the thread lock.
// It is meant for code already running inside WithLock.
func (m *Manager) LoadUnlocked(ctx context.Context, thread string) (*ports.Checkpoint, error) {
	if m.store == nil {
		return nil, domain.ErrCheckpointNotFound
	}
	return m.store.Load(ctx, thread)
}

// SaveUnlocked writes a checkpoint without taking the thread lock. A nil store is a no-op.
func (m *Manager) SaveUnlocked(ctx context.Context, cp *ports.Checkpoint) error {
	if m.store == nil {
		return nil
	}
	return m.store.Save(ctx, cp)
}

// Delete removes the checkpoint of thread.
func (m *Manager) Delete(ctx context.Context, thread string) error {
	return m.WithLock(ctx, thread, func(ctx context.Context) error {
		if m.store == nil {
			return nil
		}
		return m.store.Delete(ctx, thread)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.List(ctx)
}

// WithLock executes fn while holding the lock for thread.
func (m *Manager) WithLock(ctx context.Context, thread string, fn func(context.Context) error) error {
	entry := m.acquire(thread)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(thread)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, thread, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The run context may already be cancelled; the unlock must still go out.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"thread", thread,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
