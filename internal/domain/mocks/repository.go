// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
)

// RumorRepository is an in-memory implementation of ports.RumorRepository.
// Configure SaveErr/GetErr/DeleteErr/ListErr to simulate repository
// failures; Archived marks rumors excluded from GetAllActiveRumors.
type RumorRepository struct {
	mu       sync.Mutex
	rumors   map[string]*entities.Rumor
	Archived map[string]bool

	SaveErr   error
	GetErr    error
	DeleteErr error
	ListErr   error

	SaveCount int
}

// NewRumorRepository creates an empty in-memory repository.
func NewRumorRepository() *RumorRepository {
	return &RumorRepository{
		rumors:   make(map[string]*entities.Rumor),
		Archived: make(map[string]bool),
	}
}

// GetRumor returns the stored rumor or (nil, nil).
func (m *RumorRepository) GetRumor(_ context.Context, rumorID string) (*entities.Rumor, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rumors[rumorID]
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}

// SaveRumor stores a deep copy of the rumor.
func (m *RumorRepository) SaveRumor(_ context.Context, rumor *entities.Rumor) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rumors[rumor.ID] = rumor.Clone()
	m.SaveCount++
	return nil
}

// DeleteRumor removes the rumor, reporting whether it existed.
func (m *RumorRepository) DeleteRumor(_ context.Context, rumorID string) (bool, error) {
	if m.DeleteErr != nil {
		return false, m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rumors[rumorID]; !ok {
		return false, nil
	}
	delete(m.rumors, rumorID)
	delete(m.Archived, rumorID)
	return true, nil
}

// GetAllRumors returns every stored rumor in id order.
func (m *RumorRepository) GetAllRumors(_ context.Context) ([]*entities.Rumor, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(string) bool { return true }), nil
}

// GetAllActiveRumors returns rumors not marked archived.
func (m *RumorRepository) GetAllActiveRumors(_ context.Context) ([]*entities.Rumor, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(id string) bool { return !m.Archived[id] }), nil
}

// GetRumorsForEntity returns rumors the entity has heard.
func (m *RumorRepository) GetRumorsForEntity(_ context.Context, entityID string) ([]*entities.Rumor, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(id string) bool { return m.rumors[id].EntityKnowsRumor(entityID) }), nil
}

// Close is a no-op.
func (m *RumorRepository) Close() error { return nil }

// Stored returns the raw stored aggregate for assertions, or nil.
func (m *RumorRepository) Stored(rumorID string) *entities.Rumor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rumors[rumorID]
}

func (m *RumorRepository) sorted(keep func(id string) bool) []*entities.Rumor {
	ids := make([]string, 0, len(m.rumors))
	for id := range m.rumors {
		if keep(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	out := make([]*entities.Rumor, len(ids))
	for i, id := range ids {
		out[i] = m.rumors[id].Clone()
	}
	return out
}
