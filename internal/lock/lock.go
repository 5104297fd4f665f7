package lock

import "context"

// Locker runs fn while holding an exclusive lease on key.
// The lease is released when fn returns, panics, or the caller's context is cancelled.
type Locker interface {
	ExecuteWithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type NoOpLocker struct{}

func NewNoOpLocker() *NoOpLocker {
	return &NoOpLocker{}
}

func (NoOpLocker) ExecuteWithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
