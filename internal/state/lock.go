package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout indicates the registry lock could not be acquired within the
// retry window.
var ErrLockTimeout = errors.New("timed out waiting for state lock")

// DefaultLockTimeout bounds lock acquisition so a stuck process fails instead
// of hanging indefinitely.
const DefaultLockTimeout = 10 * time.Second

// retryInterval is the pause between non-blocking acquisition attempts.
const retryInterval = 25 * time.Millisecond

// FileLock provides exclusive cross-process locking using flock.
type FileLock struct {
	fl *flock.Flock
}

// NewFileLock creates a file lock for the given path. The lock file is
// created on first acquisition if it doesn't exist.
func NewFileLock(path string) *FileLock {
	return &FileLock{fl: flock.New(path)}
}

// Lock acquires an exclusive lock, retrying until timeout elapses or ctx is
// cancelled. Fails with ErrLockTimeout when the window is exhausted.
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := l.fl.TryLockContext(lockCtx, retryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s", ErrLockTimeout, l.fl.Path())
		}
		return err
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLockTimeout, l.fl.Path())
	}
	return nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *FileLock) Unlock() error {
	return l.fl.Unlock()
}

// WithLock serializes a read-modify-write cycle on the registry: acquire the
// lock, load the state, invoke fn, and persist iff fn succeeds. The lock is
// released on every exit path. Two concurrent invocations are guaranteed to
// observe each other's committed allocations.
func WithLock(ctx context.Context, commonDir string, timeout time.Duration, fn func(*State) error) error {
	if err := os.MkdirAll(Dir(commonDir), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lock := NewFileLock(LockPath(commonDir))
	if err := lock.Lock(ctx, timeout); err != nil {
		return err
	}
	defer lock.Unlock()

	st, err := Load(commonDir)
	if err != nil {
		return err
	}

	if err := fn(st); err != nil {
		return err
	}

	return st.Persist(commonDir)
}
