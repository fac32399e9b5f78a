package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key, e.g. "vibecast:"
}

// RedisStore implements Store on a Redis server.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisStore connects to Redis and pings it before returning.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{rdb: rdb, prefix: opts.Prefix}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// maxWatchAttempts bounds the optimistic retries of Update.
const maxWatchAttempts = 10

// Update runs a read-modify-write of key under WATCH. When another client
// changes the key before EXEC the transaction is dropped and fn runs again
// on the fresh value.
func (r *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := r.prefix + key
	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		read := false
		err := r.rdb.Watch(ctx, func(tx *goredis.Tx) error {
			cur, err := tx.Get(ctx, k).Bytes()
			found := true
			switch {
			case errors.Is(err, goredis.Nil):
				found = false
			case err != nil:
				return &OpError{Op: "get", Key: key, Err: err}
			}
			read = true

			next, write := fn(cur, found)
			if !write {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Set(ctx, k, next, 0)
				return nil
			})
			return err
		}, k)

		var oe *OpError
		switch {
		case err == nil:
			return nil
		case errors.Is(err, goredis.TxFailedErr):
			continue
		case errors.As(err, &oe):
			return oe
		case !read:
			return &OpError{Op: "get", Key: key, Err: err}
		default:
			return &OpError{Op: "set", Key: key, Err: err}
		}
	}
	return &OpError{Op: "set", Key: key, Err: ErrConflict}
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
