package store

import (
	"context"
	"sync"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
)

// Memory is a mutex-guarded in-memory Store. It backs the "memory" driver
// and the package's contract tests.
type Memory struct {
	mu    sync.RWMutex
	lists map[string]*cardlist.List
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{lists: make(map[string]*cardlist.List)}
}

func (m *Memory) Create(_ context.Context, list *cardlist.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.lists[list.ID]; exists {
		return ErrDuplicateID
	}
	m.lists[list.ID] = cloneList(list)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*cardlist.List, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list, ok := m.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneList(list), nil
}

func (m *Memory) Rename(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.lists[id]
	if !ok {
		return ErrNotFound
	}
	list.Name = name
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// cloneList copies a list so callers cannot mutate stored state through
// returned pointers.
func cloneList(list *cardlist.List) *cardlist.List {
	out := *list
	out.Cards = make([]cardlist.Card, len(list.Cards))
	copy(out.Cards, list.Cards)
	for i, card := range list.Cards {
		if card.ImageURIs != nil {
			uris := *card.ImageURIs
			out.Cards[i].ImageURIs = &uris
		}
	}
	return &out
}
