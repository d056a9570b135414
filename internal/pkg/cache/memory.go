// internal/pkg/cache/memory.go
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type memoryEntry[V any] struct {
	value     V
	createdAt time.Time
}

// Memory is an in-process cache keyed by string. Entries expire ttl after
// they were written and are removed on the first read past that point.
// maxEntries <= 0 leaves the cache unbounded.
type Memory[V any] struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry[V]
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
}

// NewMemory creates a memory cache. A nil clock uses the wall clock.
func NewMemory[V any](ttl time.Duration, maxEntries int, clock clockwork.Clock) *Memory[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory[V]{
		entries:    make(map[string]memoryEntry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	entry, ok := m.entries[key]
	if !ok {
		return zero, false, nil
	}
	if m.expired(entry) {
		delete(m.entries, key)
		return zero, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.makeRoom()
	}
	m.entries[key] = memoryEntry[V]{value: value, createdAt: m.clock.Now()}
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory[V]) Flush(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry[V])
	m.mu.Unlock()
	return nil
}

func (m *Memory[V]) Driver() string { return "memory" }

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory[V]) expired(entry memoryEntry[V]) bool {
	return m.clock.Since(entry.createdAt) >= m.ttl
}

// makeRoom drops expired entries, then the oldest one if still full.
// Caller holds m.mu.
func (m *Memory[V]) makeRoom() {
	for key, entry := range m.entries {
		if m.expired(entry) {
			delete(m.entries, key)
		}
	}
	if len(m.entries) < m.maxEntries {
		return
	}

	var oldestKey string
	var oldest time.Time
	for key, entry := range m.entries {
		if oldestKey == "" || entry.createdAt.Before(oldest) {
			oldestKey, oldest = key, entry.createdAt
		}
	}
	delete(m.entries, oldestKey)
}
