package txlog

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory activity feed for demo/development mode.
type MemoryStore struct {
	entries []*Entry // newest first
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory transaction log store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(ctx context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	m.entries = append([]*Entry{&cp}, m.entries...)
	if len(m.entries) > MaxEntries {
		m.entries = m.entries[:MaxEntries]
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Entry, len(m.entries))
	for i, e := range m.entries {
		cp := *e
		result[i] = &cp
	}
	return result, nil
}

func (m *MemoryStore) ListByType(ctx context.Context, t Type) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Entry
	for _, e := range m.entries {
		if e.Type == t {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.ID == id {
			e.Status = status
			return nil
		}
	}
	return ErrEntryNotFound
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}
