// Package lock provides per-key mutual exclusion, either inside one process
// or across instances through Redis.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock could not be taken before the context ended
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serialises work per key. The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
