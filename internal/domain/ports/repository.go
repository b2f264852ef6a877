// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
)

// RumorRepository defines the interface for rumor persistence. The backing
// store is a keyed document store; implementations make no consistency
// promises beyond last-write-wins per rumor id.
type RumorRepository interface {
	// GetRumor retrieves a rumor by id. Returns (nil, nil) when absent.
	GetRumor(ctx context.Context, rumorID string) (*entities.Rumor, error)

	// SaveRumor persists the full aggregate, overwriting any previous state.
	SaveRumor(ctx context.Context, rumor *entities.Rumor) error

	// DeleteRumor removes a rumor. Returns false when it did not exist.
	DeleteRumor(ctx context.Context, rumorID string) (bool, error)

	// GetAllRumors returns every stored rumor.
	GetAllRumors(ctx context.Context) ([]*entities.Rumor, error)

	// GetAllActiveRumors returns rumors that are not soft- or hard-deleted.
	// Backends without tombstones return the same set as GetAllRumors.
	GetAllActiveRumors(ctx context.Context) ([]*entities.Rumor, error)

	// GetRumorsForEntity returns every rumor the entity has heard.
	GetRumorsForEntity(ctx context.Context, entityID string) ([]*entities.Rumor, error)

	// Close releases the underlying store.
	Close() error
}
