// Package locker provides distributed locking for coordinating background
// work across multiple service instances.
package locker

import (
	"context"
	"time"
)

// DistributedLocker coordinates mutually exclusive work across instances.
// Implementations must be safe for concurrent use.
type DistributedLocker interface {
	// Acquire attempts to take the lock identified by key. Returns true
	// when acquired, false when another instance holds it. The lock
	// expires automatically after ttl if not released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases the lock identified by key. Calling Release for a
	// lock this instance does not own is a no-op.
	Release(ctx context.Context, key string) error
}
