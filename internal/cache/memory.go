package cache

import "sync"

// memoryStore is the default, in-process cache store: a map guarded by an
// RWMutex so concurrent readers never block each other and a single writer
// excludes all readers only for the duration of its own update, matching
// the reader-shared/single-writer model spec.md §4.4 calls for.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]entry
}

var _ store = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]entry)}
}

func (m *memoryStore) get(mac string) (entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[mac]

	return e, ok, nil
}

func (m *memoryStore) set(mac string, e entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[mac] = e

	return nil
}

func (m *memoryStore) flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]entry)

	return nil
}

func (m *memoryStore) rangeEntries(f func(mac string, e entry) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for mac, e := range m.data {
		if !f(mac, e) {
			break
		}
	}

	return nil
}

func (m *memoryStore) close() error {
	return nil
}
