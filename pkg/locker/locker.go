// Package locker coordinates jobs across service instances.
package locker

import (
	"context"
	"time"
)

// DistributedLocker grants named, expiring locks. Implementations must be
// safe for concurrent use.
type DistributedLocker interface {
	// Acquire takes the lock without waiting. It returns false, nil when the
	// lock is held elsewhere. The lock expires after ttl unless released, so
	// ttl doubles as a cooldown when the holder never releases it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops a lock taken by this locker. Releasing a lock this locker
	// does not hold is a no-op.
	Release(ctx context.Context, key string) error
}
