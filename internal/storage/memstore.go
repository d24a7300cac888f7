package storage

import (
	"errors"
	"sort"
	"sync"
)

// ErrWriteRefused is returned by a MemoryStore whose writes were disabled.
var ErrWriteRefused = errors.New("write refused")

// MemoryStore is an in-memory StateStore for tests and throwaway sessions.
type MemoryStore struct {
	mu         sync.Mutex
	values     map[string]string
	failWrites bool
	writes     int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrWriteRefused
	}
	m.values[key] = value
	m.writes++
	return nil
}

func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) Path() string { return ":memory:" }

func (m *MemoryStore) Load() error { return nil }

// FailWrites makes every subsequent Set fail with ErrWriteRefused until it is
// called again with false.
func (m *MemoryStore) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Writes returns the number of successful Set calls.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
