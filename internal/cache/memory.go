package cache

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used by default and in tests
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Get(_ context.Context, generation uint64, articleID string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[entryKey("", generation, articleID)]
	return v, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, generation uint64, articleID string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[entryKey("", generation, articleID)] = value
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

// Len reports the number of stored entries
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
