package kv

import (
	"context"
	"sync"
)

// MemStore is an in-process Store. It counts writes and can be made to fail,
// which the engine and ledger tests rely on.
type MemStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes map[string]int
	getErr error
	setErr error
	onGet  func(key string)
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data:   make(map[string][]byte),
		writes: make(map[string]int),
	}
}

func (m *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	hook := m.onGet
	if m.getErr != nil {
		err := m.getErr
		m.mu.Unlock()
		return nil, err
	}
	v, ok := m.data[key]
	m.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.writes[key]++
	return nil
}

func (m *MemStore) Close() error { return nil }

// Writes reports how many successful Sets key has received.
func (m *MemStore) Writes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}

// FailGets makes every Get return err until called again with nil.
func (m *MemStore) FailGets(err error) {
	m.mu.Lock()
	m.getErr = err
	m.mu.Unlock()
}

// FailSets makes every Set return err until called again with nil.
func (m *MemStore) FailSets(err error) {
	m.mu.Lock()
	m.setErr = err
	m.mu.Unlock()
}

// OnGet installs a hook run after each successful read, outside the store's
// own lock. Tests use it to widen read-modify-write windows.
func (m *MemStore) OnGet(fn func(key string)) {
	m.mu.Lock()
	m.onGet = fn
	m.mu.Unlock()
}
