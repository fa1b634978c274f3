// Package lock serializes read-modify-persist spans on user balances.
package lock

import (
	"context"
	"sync"
)

// UserLock hands out one lock per user ID. Each lock is a one-slot
// semaphore so waiting can be abandoned when a context ends.
type UserLock struct {
	locks sync.Map // map[int64]chan struct{}
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{}
}

func (ul *UserLock) sem(userID int64) chan struct{} {
	if v, ok := ul.locks.Load(userID); ok {
		return v.(chan struct{})
	}
	v, _ := ul.locks.LoadOrStore(userID, make(chan struct{}, 1))
	return v.(chan struct{})
}

// Lock blocks until the user's lock is held.
func (ul *UserLock) Lock(userID int64) {
	ul.sem(userID) <- struct{}{}
}

// Unlock releases the user's lock.
func (ul *UserLock) Unlock(userID int64) {
	select {
	case <-ul.sem(userID):
	default:
		panic("lock: unlock of unlocked user")
	}
}

// LockContext waits for the lock until ctx ends, in which case it returns
// ErrLockTimeout wrapping nothing else.
func (ul *UserLock) LockContext(ctx context.Context, userID int64) error {
	select {
	case ul.sem(userID) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ErrLockTimeout
	}
}

// LockPair locks two users in ascending ID order so that two spans touching
// the same pair can never deadlock. Locking a user with itself locks once.
func (ul *UserLock) LockPair(ctx context.Context, a, b int64) error {
	first, second := order(a, b)
	if err := ul.LockContext(ctx, first); err != nil {
		return err
	}
	if first == second {
		return nil
	}
	if err := ul.LockContext(ctx, second); err != nil {
		ul.Unlock(first)
		return err
	}
	return nil
}

// UnlockPair releases locks taken by LockPair.
func (ul *UserLock) UnlockPair(a, b int64) {
	first, second := order(a, b)
	if first != second {
		ul.Unlock(second)
	}
	ul.Unlock(first)
}

// WithLock runs fn while holding the user's lock.
func (ul *UserLock) WithLock(ctx context.Context, userID int64, fn func() error) error {
	if err := ul.LockContext(ctx, userID); err != nil {
		return err
	}
	defer ul.Unlock(userID)
	return fn()
}

// WithPairLock runs fn while holding both users' locks.
func (ul *UserLock) WithPairLock(ctx context.Context, a, b int64, fn func() error) error {
	if err := ul.LockPair(ctx, a, b); err != nil {
		return err
	}
	defer ul.UnlockPair(a, b)
	return fn()
}

// IsLocked is a point-in-time check, only meaningful in tests and logs.
func (ul *UserLock) IsLocked(userID int64) bool {
	v, ok := ul.locks.Load(userID)
	if !ok {
		return false
	}
	return len(v.(chan struct{})) == 1
}

func order(a, b int64) (int64, int64) {
	if a <= b {
		return a, b
	}
	return b, a
}
