package session

import (
	"context"
	"sync"
	"time"
)

// Storage persists the session keys of each browser tab, namespaced by session id
type Storage interface {
	// Load returns every persisted key for sid; a missing session yields an empty map
	Load(ctx context.Context, sid string) (map[string]string, error)
	// Save writes set and removes remove in one step
	Save(ctx context.Context, sid string, set map[string]string, remove []string) error
	// Clear removes every persisted key for sid
	Clear(ctx context.Context, sid string) error
}

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// MemoryStorage keeps sessions in process memory. Used for development and tests.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStorage creates an in-memory storage; ttl <= 0 disables expiry
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStorage) Load(_ context.Context, sid string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string)
	e, ok := m.entries[sid]
	if !ok {
		return out, nil
	}
	if m.expired(e) {
		delete(m.entries, sid)
		return out, nil
	}
	for k, v := range e.values {
		out[k] = v
	}
	m.touch(e)
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, sid string, set map[string]string, remove []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[sid]
	if !ok || m.expired(e) {
		e = &memoryEntry{values: make(map[string]string)}
		m.entries[sid] = e
	}
	for _, k := range remove {
		delete(e.values, k)
	}
	for k, v := range set {
		e.values[k] = v
	}
	m.touch(e)
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sid)
	return nil
}

func (m *MemoryStorage) expired(e *memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

func (m *MemoryStorage) touch(e *memoryEntry) {
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
}
