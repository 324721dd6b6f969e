// Package collection provides small concurrency safe containers used by
// the gateway internals.
package collection

import "sync"

// SyncMap is a mutex guarded generic map. Entries are short lived and
// contention is low, so plain locking beats sync.Map here.
type SyncMap[K comparable, V any] struct {
	m   map[K]V
	mux sync.RWMutex
}

// NewSyncMap creates an empty map.
func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{m: make(map[K]V)}
}

// Get returns the value stored under k.
func (m *SyncMap[K, V]) Get(k K) (V, bool) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	v, ok := m.m[k]
	return v, ok
}

// Put stores v under k, replacing any previous value.
func (m *SyncMap[K, V]) Put(k K, v V) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.m[k] = v
}

// Delete removes k.
func (m *SyncMap[K, V]) Delete(k K) {
	m.mux.Lock()
	defer m.mux.Unlock()
	delete(m.m, k)
}

// Len returns the number of stored entries.
func (m *SyncMap[K, V]) Len() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return len(m.m)
}

// RemoveAll empties the map and returns the removed values.
func (m *SyncMap[K, V]) RemoveAll() []V {
	m.mux.Lock()
	defer m.mux.Unlock()
	values := make([]V, 0, len(m.m))
	for _, v := range m.m {
		values = append(values, v)
	}
	m.m = make(map[K]V)
	return values
}
