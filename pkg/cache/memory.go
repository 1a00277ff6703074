package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// MemoryCache memoizes computed values by string key for the lifetime of the
// process that owns it. Entries never expire and are never evicted.
type MemoryCache[V any] struct {
	data  map[string]V
	order []string
	mu    sync.RWMutex

	group singleflight.Group
}

// NewMemoryCache creates an empty cache
func NewMemoryCache[V any]() *MemoryCache[V] {
	return &MemoryCache[V]{
		data: make(map[string]V),
	}
}

// Get returns the value stored under key, if any
func (m *MemoryCache[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok
}

// GetOrCompute returns the value stored under key, calling compute to produce
// it on first use. Concurrent callers asking for the same key wait for a single
// compute call; callers asking for different keys do not block each other.
func (m *MemoryCache[V]) GetOrCompute(key string, compute func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}

	result, _, _ := m.group.Do(key, func() (interface{}, error) {
		// another caller may have stored it between Get and Do
		if v, ok := m.Get(key); ok {
			return v, nil
		}

		v := compute()

		m.mu.Lock()
		m.data[key] = v
		m.order = append(m.order, key)
		m.mu.Unlock()

		return v, nil
	})

	return result.(V)
}

// Len returns the number of stored entries
func (m *MemoryCache[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// Values returns stored values in the order they were first computed
func (m *MemoryCache[V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]V, 0, len(m.order))
	for _, key := range m.order {
		values = append(values, m.data[key])
	}
	return values
}
