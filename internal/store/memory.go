package store

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed TableStore. It is the default driver and
// the one tests run against.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.tables[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.mu.Lock()
	m.tables[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.tables, key)
	m.mu.Unlock()
	return nil
}

var _ TableStore = (*MemoryStore)(nil)
