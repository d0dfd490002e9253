// Package lock provides key-level locking for per-tier counters.
package lock

import (
	"context"
	"sync"
	"time"
)

// keyMutex is a one-slot semaphore so acquisition can be abandoned on timeout.
type keyMutex struct {
	ch chan struct{}
}

func newKeyMutex() *keyMutex {
	return &keyMutex{ch: make(chan struct{}, 1)}
}

// KeyLock serializes work per int64 key (a prize tier id). Distinct keys
// never block each other.
type KeyLock struct {
	locks sync.Map // map[int64]*keyMutex
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock() *KeyLock {
	return &KeyLock{}
}

// getLock retrieves or creates the mutex for the given key.
func (kl *KeyLock) getLock(key int64) *keyMutex {
	if v, ok := kl.locks.Load(key); ok {
		return v.(*keyMutex)
	}
	actual, _ := kl.locks.LoadOrStore(key, newKeyMutex())
	return actual.(*keyMutex)
}

// Unlock releases the lock for a key.
func (kl *KeyLock) Unlock(key int64) {
	if v, ok := kl.locks.Load(key); ok {
		select {
		case <-v.(*keyMutex).ch:
		default:
		}
	}
}

// LockWithTimeout attempts to acquire the lock until the timeout elapses
// or ctx is done. Returns false if the lock was not acquired.
func (kl *KeyLock) LockWithTimeout(ctx context.Context, key int64, timeout time.Duration) bool {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case kl.getLock(key).ch <- struct{}{}:
		return true
	case <-timeoutCtx.Done():
		return false
	}
}

// WithLockContext executes fn while holding the key's lock, giving up
// with ErrLockTimeout if the lock is not acquired in time.
func (kl *KeyLock) WithLockContext(ctx context.Context, key int64, timeout time.Duration, fn func() error) error {
	if !kl.LockWithTimeout(ctx, key, timeout) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrLockTimeout
	}
	defer kl.Unlock(key)
	return fn()
}
