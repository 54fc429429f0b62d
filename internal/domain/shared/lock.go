package shared

import (
	"context"
	"time"
)

// LockStore hands out short-lived exclusive leases keyed by string.
// Implementations must be safe for concurrent use across goroutines and,
// for shared backends, across processes.
type LockStore interface {
	// Acquire tries to take the lease for key. It returns a release token and
	// true when the lease was granted, or false if another holder owns it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release gives the lease back. Releasing with a stale token is a no-op.
	Release(ctx context.Context, key, token string) error

	// Close releases resources held by the store
	Close() error
}
