package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/rumor-mill/internal/domain/ports"
)

// VectorIndex is a mock implementation of ports.VectorIndex.
type VectorIndex struct {
	mu      sync.Mutex
	Indexed map[string]string // rumor id -> last indexed content

	Hits      []ports.SimilarRumor
	IndexErr  error
	SearchErr error
	DeleteErr error
}

// NewVectorIndex creates an empty mock index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{Indexed: make(map[string]string)}
}

// Index records the content or returns the configured error.
func (m *VectorIndex) Index(_ context.Context, rumorID, content string) error {
	if m.IndexErr != nil {
		return m.IndexErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Indexed[rumorID] = content
	return nil
}

// Search returns the configured hits or error.
func (m *VectorIndex) Search(_ context.Context, _ string, limit int) ([]ports.SimilarRumor, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if len(m.Hits) > limit {
		return m.Hits[:limit], nil
	}
	return m.Hits, nil
}

// Delete removes the rumor from the recorded index.
func (m *VectorIndex) Delete(_ context.Context, rumorID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Indexed, rumorID)
	return nil
}
