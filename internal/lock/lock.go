// Package lock serializes work on a single key across goroutines or processes.
package lock

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from Locker.Lock.
type UnlockFunc func(ctx context.Context) error

// Locker acquires exclusive, expiring locks keyed by string.
type Locker interface {
	// Lock blocks until key is held or ctx is done. The lock expires after ttl
	// if it is never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// LeadKey is the lock key guarding a single lead's read-validate-write cycle.
func LeadKey(leadID string) string {
	return "lead:" + leadID
}
