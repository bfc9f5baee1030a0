package store

import (
	"context"
	"sync"
)

// StorageFactory builds the storage for one session's cart.
type StorageFactory func(sessionID string) CartStorage

// Manager hands out one isolated Store per session ID, creating it lazily
// from persisted state on first access.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	factory StorageFactory
}

func NewManager(factory StorageFactory) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		factory: factory,
	}
}

func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sessionID]; ok {
		return s
	}

	s := New(ctx, m.factory(sessionID))
	m.stores[sessionID] = s
	return s
}
