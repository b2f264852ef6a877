// Package badger provides a RumorRepository implementation backed by a
// BadgerDB document store. Each rumor is one JSON document under a
// "rumor:" prefixed key; last write wins per key.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
)

const keyPrefix = "rumor:"

// Repository implements ports.RumorRepository on badger.
type Repository struct {
	db  *badger.DB
	log *slog.Logger
}

// NewRepository opens (or creates) a badger store at path. An empty path
// opens an in-memory store, used by tests.
func NewRepository(path string, log *slog.Logger) (*Repository, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Debug("opened rumor store", "path", path, "in_memory", path == "")
	return &Repository{db: db, log: log}, nil
}

// Close closes the underlying store.
func (r *Repository) Close() error {
	return r.db.Close()
}

func rumorKey(rumorID string) []byte {
	return []byte(keyPrefix + rumorID)
}

// GetRumor retrieves one rumor, returning (nil, nil) when absent.
func (r *Repository) GetRumor(_ context.Context, rumorID string) (*entities.Rumor, error) {
	var rumor *entities.Rumor
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rumorKey(rumorID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rumor = &entities.Rumor{}
			return json.Unmarshal(val, rumor)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading rumor %s: %w", rumorID, err)
	}
	return rumor, nil
}

// SaveRumor overwrites the stored document for the rumor's id.
func (r *Repository) SaveRumor(_ context.Context, rumor *entities.Rumor) error {
	data, err := json.Marshal(rumor)
	if err != nil {
		return fmt.Errorf("encoding rumor %s: %w", rumor.ID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rumorKey(rumor.ID), data)
	})
	if err != nil {
		return fmt.Errorf("saving rumor %s: %w", rumor.ID, err)
	}
	return nil
}

// DeleteRumor hard-deletes the document, reporting whether it existed.
func (r *Repository) DeleteRumor(_ context.Context, rumorID string) (bool, error) {
	existed := false
	err := r.db.Update(func(txn *badger.Txn) error {
		key := rumorKey(rumorID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		existed = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, fmt.Errorf("deleting rumor %s: %w", rumorID, err)
	}
	return existed, nil
}

// GetAllRumors scans the rumor prefix and decodes every document.
func (r *Repository) GetAllRumors(_ context.Context) ([]*entities.Rumor, error) {
	var rumors []*entities.Rumor
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				rumor := &entities.Rumor{}
				if err := json.Unmarshal(val, rumor); err != nil {
					return err
				}
				rumors = append(rumors, rumor)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning rumors: %w", err)
	}
	return rumors, nil
}

// GetAllActiveRumors returns the same set as GetAllRumors: this backend
// hard-deletes only, so every stored rumor is active.
func (r *Repository) GetAllActiveRumors(ctx context.Context) ([]*entities.Rumor, error) {
	return r.GetAllRumors(ctx)
}

// GetRumorsForEntity returns every rumor the entity has heard.
func (r *Repository) GetRumorsForEntity(ctx context.Context, entityID string) ([]*entities.Rumor, error) {
	rumors, err := r.GetAllRumors(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(rumors, func(rumor *entities.Rumor, _ int) bool {
		return rumor.EntityKnowsRumor(entityID)
	}), nil
}
