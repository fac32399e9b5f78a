package kv

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestUpdateNoWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	g := NewGuard(m, 0)

	var sawFound bool
	err := g.Update(ctx, "k", func(cur []byte, found bool) ([]byte, bool) {
		sawFound = found
		return nil, false
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if sawFound {
		t.Error("expected found=false for missing key")
	}
	if m.Writes("k") != 0 {
		t.Errorf("expected no writes, got %d", m.Writes("k"))
	}
}

func TestUpdateGetFailureSkipsFn(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	m.FailGets(errors.New("disk gone"))
	g := NewGuard(m, 0)

	called := false
	err := g.Update(ctx, "k", func(cur []byte, found bool) ([]byte, bool) {
		called = true
		return []byte("x"), true
	})
	if !IsOp(err, "get") {
		t.Fatalf("expected get OpError, got %v", err)
	}
	if called {
		t.Error("expected fn not to run after a failed read")
	}
}

func TestUpdateSetFailure(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	m.FailSets(errors.New("read-only"))
	g := NewGuard(m, 0)

	err := g.Update(ctx, "k", func(cur []byte, found bool) ([]byte, bool) {
		return []byte("x"), true
	})
	if !IsOp(err, "set") {
		t.Fatalf("expected set OpError, got %v", err)
	}
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	// Yield between read and write so unserialized updates would overlap.
	m.OnGet(func(string) { time.Sleep(time.Millisecond) })
	g := NewGuard(m, 0)

	const n = 50
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			return g.Update(ctx, "counter", func(cur []byte, found bool) ([]byte, bool) {
				v := 0
				if found {
					v, _ = strconv.Atoi(string(cur))
				}
				return []byte(strconv.Itoa(v + 1)), true
			})
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("update: %v", err)
	}

	v, found, err := g.Get(ctx, "counter")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if string(v) != strconv.Itoa(n) {
		t.Errorf("expected %d, got %s", n, v)
	}
}

func TestLockTimeout(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	g := NewGuard(m, 20*time.Millisecond)

	release := make(chan struct{})
	started := make(chan struct{})
	go g.Update(ctx, "k", func(cur []byte, found bool) ([]byte, bool) {
		close(started)
		<-release
		return nil, false
	})
	<-started

	_, _, err := g.Get(ctx, "k")
	close(release)
	if !IsOp(err, "lock") {
		t.Fatalf("expected lock OpError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(NewMemStore(), time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	go g.Update(ctx, "a", func(cur []byte, found bool) ([]byte, bool) {
		close(started)
		<-release
		return nil, false
	})
	<-started
	defer close(release)

	if err := g.Update(ctx, "b", func(cur []byte, found bool) ([]byte, bool) {
		return []byte("ok"), true
	}); err != nil {
		t.Fatalf("update b while a is held: %v", err)
	}
}
