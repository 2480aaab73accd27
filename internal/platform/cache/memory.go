package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	raw      []byte
	expireAt time.Time
}

// Memory is a process-local Store used by tests and deployments without
// Redis. Expiry is checked lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *Memory) GetJSON(_ context.Context, key string, out any) bool {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && m.now().After(entry.expireAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(entry.raw, out) == nil
}

func (m *Memory) SetJSON(_ context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{raw: raw, expireAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return true
}

func (m *Memory) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return true
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) bool {
	if prefix == "" {
		return false
	}
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return true
}

// Len reports live entry count; used by tests.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
