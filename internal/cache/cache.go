// Package cache defines the result cache contract shared by the in-memory
// and SQLite-backed stores.
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a provider answer stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

// Store is a TTL key-value store for provider answers.
// Get on an expired entry evicts it and reports a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Purge removes entries whose key starts with prefix; an empty prefix
	// removes everything. It returns the number of entries removed.
	Purge(ctx context.Context, prefix string) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats summarizes a store.
type Stats struct {
	EntryCount     int   `json:"entryCount"`
	TotalSizeBytes int64 `json:"totalSizeBytes"`
}

// Entry is one stored value with its validity window.
type Entry struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is no longer valid at now.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Memory is a process-local Store.
type Memory struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemory creates an in-memory store. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
}

// SetClock replaces the time source.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.Expired(m.now()) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.Value, true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = Entry{
		Key:       key,
		Value:     stored,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	return nil
}

// Purge implements Store.
func (m *Memory) Purge(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Stats implements Store.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s Stats
	for _, e := range m.entries {
		s.EntryCount++
		s.TotalSizeBytes += int64(len(e.Value))
	}
	return s, nil
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
