package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// OpError reports which step of a guarded operation failed.
type OpError struct {
	Op  string // "lock", "get" or "set"
	Key string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("kv %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// IsOp reports whether err is an *OpError for the given step.
func IsOp(err error, op string) bool {
	var oe *OpError
	return errors.As(err, &oe) && oe.Op == op
}

// UpdateFunc transforms the current value of a key. found is false when the
// key is absent. Returning write=false leaves the stored value untouched.
type UpdateFunc func(cur []byte, found bool) (next []byte, write bool)

// Guard serializes access to each key of a Store, so a load-transform-write
// sequence on one key never interleaves with another on the same key.
type Guard struct {
	store   Store
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewGuard wraps store. A positive timeout bounds each guarded operation,
// including the wait for the key's lock.
func NewGuard(store Store, timeout time.Duration) *Guard {
	return &Guard{
		store:   store,
		timeout: timeout,
		locks:   make(map[string]*semaphore.Weighted),
	}
}

// Store returns the wrapped store.
func (g *Guard) Store() Store { return g.store }

func (g *Guard) keyLock(key string) *semaphore.Weighted {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[key]
	if !ok {
		l = semaphore.NewWeighted(1)
		g.locks[key] = l
	}
	return l
}

func (g *Guard) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}

// Get reads key under its lock. A missing key yields found=false and no error.
func (g *Guard) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	l := g.keyLock(key)
	if err := l.Acquire(ctx, 1); err != nil {
		return nil, false, &OpError{Op: "lock", Key: key, Err: err}
	}
	defer l.Release(1)

	return g.get(ctx, key)
}

func (g *Guard) get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := g.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &OpError{Op: "get", Key: key, Err: err}
	}
	return v, true, nil
}

// Update runs a read-modify-write on key while holding its lock. If the read
// fails fn is not called and nothing is written. Stores implementing Atomic
// run the whole sequence themselves, which also excludes other processes.
func (g *Guard) Update(ctx context.Context, key string, fn UpdateFunc) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	l := g.keyLock(key)
	if err := l.Acquire(ctx, 1); err != nil {
		return &OpError{Op: "lock", Key: key, Err: err}
	}
	defer l.Release(1)

	if a, ok := g.store.(Atomic); ok {
		err := a.Update(ctx, key, fn)
		var oe *OpError
		if err != nil && !errors.As(err, &oe) {
			return &OpError{Op: "set", Key: key, Err: err}
		}
		return err
	}

	cur, found, err := g.get(ctx, key)
	if err != nil {
		return err
	}

	next, write := fn(cur, found)
	if !write {
		return nil
	}
	if err := g.store.Set(ctx, key, next); err != nil {
		return &OpError{Op: "set", Key: key, Err: err}
	}
	return nil
}
