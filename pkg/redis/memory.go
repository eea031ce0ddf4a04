package redis

import (
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

// memoryStore holds encoded cache entries when Redis is disabled.
// Expired entries are dropped lazily on read and on sweep.
type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (m *memoryStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !item.expireAt.IsZero() && m.now().After(item.expireAt) {
		delete(m.items, key)
		return nil, false
	}
	return item.data, true
}

func (m *memoryStore) set(key string, data []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memoryItem{data: data}
	if ttl > 0 {
		item.expireAt = m.now().Add(ttl)
	}
	m.items[key] = item
}

func (m *memoryStore) del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// sweep removes expired entries and returns how many remain.
func (m *memoryStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, item := range m.items {
		if !item.expireAt.IsZero() && now.After(item.expireAt) {
			delete(m.items, k)
		}
	}
	return len(m.items)
}
