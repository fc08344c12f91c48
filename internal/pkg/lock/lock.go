// Package lock serializes work per key, such as read-modify-write cycles on
// a stored game document or a user's pending bot interaction.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a lock cannot be acquired within the timeout period.
var ErrLockTimeout = errors.New("lock acquisition timeout")

// KeyLock hands out one exclusive slot per key.
type KeyLock struct {
	slots sync.Map // map[string]chan struct{}
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock() *KeyLock {
	return &KeyLock{}
}

func (kl *KeyLock) slot(key string) chan struct{} {
	if v, ok := kl.slots.Load(key); ok {
		return v.(chan struct{})
	}
	actual, _ := kl.slots.LoadOrStore(key, make(chan struct{}, 1))
	return actual.(chan struct{})
}

// Lock blocks until the key is free.
func (kl *KeyLock) Lock(key string) {
	kl.slot(key) <- struct{}{}
}

// Unlock releases the key. Unlocking a free key is a no-op.
func (kl *KeyLock) Unlock(key string) {
	select {
	case <-kl.slot(key):
	default:
	}
}

// TryLock acquires the key without blocking.
func (kl *KeyLock) TryLock(key string) bool {
	select {
	case kl.slot(key) <- struct{}{}:
		return true
	default:
		return false
	}
}

// LockContext waits for the key until timeout or ctx ends. A timeout yields
// ErrLockTimeout; a cancelled ctx yields its error.
func (kl *KeyLock) LockContext(ctx context.Context, key string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case kl.slot(key) <- struct{}{}:
		return nil
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrLockTimeout
	}
}

// WithLock executes fn while holding the key.
func (kl *KeyLock) WithLock(key string, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockContext executes fn while holding the key, waiting at most timeout.
func (kl *KeyLock) WithLockContext(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	if err := kl.LockContext(ctx, key, timeout); err != nil {
		return err
	}
	defer kl.Unlock(key)
	return fn()
}

// IsLocked reports whether the key is held right now.
func (kl *KeyLock) IsLocked(key string) bool {
	v, ok := kl.slots.Load(key)
	if !ok {
		return false
	}
	return len(v.(chan struct{})) == 1
}
