// Package cache stores short-lived upstream responses keyed by request identity.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is a byte-oriented TTL cache. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Key joins key parts with a separator that never appears in ids or language codes.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items: map[string]memoryEntry{},
		now:   time.Now,
	}
}

// Get returns a copy of the cached value when present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	if m == nil {
		return nil, false
	}
	now := m.now()
	m.mu.RLock()
	entry, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if now.After(entry.expires) {
		m.mu.Lock()
		if cur, ok := m.items[key]; ok && now.After(cur.expires) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return cloneBytes(entry.value), true
}

// Set stores value for ttl. A non-positive ttl is ignored.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if m == nil || ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryEntry{
		value:   cloneBytes(value),
		expires: m.now().Add(ttl),
	}
}

// Len reports the number of entries, including expired ones not yet evicted.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Nop is a Store that never holds anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set discards the value.
func (Nop) Set(context.Context, string, []byte, time.Duration) {}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
