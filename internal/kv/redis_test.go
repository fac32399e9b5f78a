package kv

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// Set VIBECAST_TEST_REDIS=host:port to run against a live server.
func newTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("VIBECAST_TEST_REDIS")
	if addr == "" {
		t.Skip("VIBECAST_TEST_REDIS not set")
	}
	prefix := "vibecast-test:" + strconv.FormatInt(time.Now().UnixNano(), 36) + ":"
	r, err := NewRedisStore(RedisOptions{Addr: addr, Prefix: prefix})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		r.rdb.Del(context.Background(), prefix+"k")
		r.Close()
	})
	return r
}

func TestRedisSetAndGet(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)

	if _, err := r.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := r.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("expected 'v', got %q (%v)", got, err)
	}
}

func TestRedisMissingAddr(t *testing.T) {
	if _, err := NewRedisStore(RedisOptions{}); err == nil {
		t.Error("expected error for empty addr")
	}
}

func TestRedisUpdateAcrossClients(t *testing.T) {
	ctx := context.Background()
	a := newTestRedis(t)
	b, err := NewRedisStore(RedisOptions{Addr: os.Getenv("VIBECAST_TEST_REDIS"), Prefix: a.prefix})
	if err != nil {
		t.Fatalf("connect second client: %v", err)
	}
	defer b.Close()

	incr := func(cur []byte, found bool) ([]byte, bool) {
		v := 0
		if found {
			v, _ = strconv.Atoi(string(cur))
		}
		return []byte(strconv.Itoa(v + 1)), true
	}

	const n = 20
	var eg errgroup.Group
	for _, s := range []*RedisStore{a, b} {
		g := NewGuard(s, 5*time.Second)
		for i := 0; i < n; i++ {
			eg.Go(func() error { return g.Update(ctx, "k", incr) })
		}
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := a.Get(ctx, "k")
	if string(got) != strconv.Itoa(2*n) {
		t.Errorf("expected %d, got %s", 2*n, got)
	}
}
