package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It lets several engine replicas agree on who may advance a thread.
type DistributedLocker interface {
	// Lock acquires the lock for key, blocking until it is held or ctx is done.
	// The returned UnlockFunc MUST be called to release it. Implementations keep a
	// held lock alive until then; ttl bounds how long a crashed holder blocks others.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
