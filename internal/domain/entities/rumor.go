package entities

import (
	"errors"
	"fmt"
	"time"
)

// ErrCorruptLineage signals that a rumor's append-only contract was violated
// somewhere, e.g. a spread record pointing at a variant that does not exist.
// It is a data-corruption signal, not an expected runtime condition.
var ErrCorruptLineage = errors.New("corrupt rumor lineage")

// RumorVariant is one specific textual version of a rumor's content.
// Variants form a tree rooted at the original statement; each non-root
// variant records the variant it mutated from.
type RumorVariant struct {
	ID               string         `json:"id"`
	Content          string         `json:"content"`
	CreatedAt        time.Time      `json:"created_at"`
	EntityID         string         `json:"entity_id"`
	ParentVariantID  string         `json:"parent_variant_id,omitempty"`
	MutationMetadata map[string]any `json:"mutation_metadata,omitempty"`
}

// RumorSpread records one entity having heard one variant. An entity may
// accumulate multiple records over time; its current state is the most
// recent one by HeardAt (insertion order breaks ties).
type RumorSpread struct {
	EntityID          string    `json:"entity_id"`
	VariantID         string    `json:"variant_id"`
	HeardFromEntityID string    `json:"heard_from_entity_id,omitempty"`
	Believability     float64   `json:"believability"`
	HeardAt           time.Time `json:"heard_at"`
}

// Rumor is the aggregate for one piece of spreading information: the
// original statement, every variant it mutated into, and every hearing
// event. Variants and Spread are append-only.
type Rumor struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	OriginatorID    string         `json:"originator_id"`
	OriginalContent string         `json:"original_content"`
	Categories      []Category     `json:"categories"`
	Severity        Severity       `json:"severity"`
	TruthValue      float64        `json:"truth_value"`
	Variants        []RumorVariant `json:"variants"`
	Spread          []RumorSpread  `json:"spread"`
}

// latestSpreadIndex returns the index of the most recent spread record for
// the entity, or -1. Equal timestamps resolve to the later record.
func (r *Rumor) latestSpreadIndex(entityID string) int {
	best := -1
	for i, s := range r.Spread {
		if s.EntityID != entityID {
			continue
		}
		if best == -1 || !s.HeardAt.Before(r.Spread[best].HeardAt) {
			best = i
		}
	}
	return best
}

// LatestVariantIDForEntity returns the variant id from the most recent
// spread record for the entity, or "" if the entity never heard the rumor.
func (r *Rumor) LatestVariantIDForEntity(entityID string) string {
	i := r.latestSpreadIndex(entityID)
	if i == -1 {
		return ""
	}
	return r.Spread[i].VariantID
}

// VariantByID looks up a variant, returning nil if absent.
func (r *Rumor) VariantByID(variantID string) *RumorVariant {
	for i := range r.Variants {
		if r.Variants[i].ID == variantID {
			return &r.Variants[i]
		}
	}
	return nil
}

// CurrentContentForEntity returns the rumor text as the entity currently
// knows it, or "" if the entity doesn't know the rumor.
func (r *Rumor) CurrentContentForEntity(entityID string) string {
	variantID := r.LatestVariantIDForEntity(entityID)
	if variantID == "" {
		return ""
	}
	v := r.VariantByID(variantID)
	if v == nil {
		return ""
	}
	return v.Content
}

// BelievabilityForEntity returns how strongly the entity believes the rumor.
// The second return value is false if the entity never heard it.
func (r *Rumor) BelievabilityForEntity(entityID string) (float64, bool) {
	i := r.latestSpreadIndex(entityID)
	if i == -1 {
		return 0, false
	}
	return r.Spread[i].Believability, true
}

// AdjustBelievability shifts the believability on the entity's most recent
// spread record, clamped to [0, 1]. Returns the new value, or false if the
// entity has never heard the rumor.
func (r *Rumor) AdjustBelievability(entityID string, adjustment float64) (float64, bool) {
	i := r.latestSpreadIndex(entityID)
	if i == -1 {
		return 0, false
	}
	r.Spread[i].Believability = Clamp01(r.Spread[i].Believability + adjustment)
	return r.Spread[i].Believability, true
}

// EntityKnowsRumor reports whether the entity has any spread record,
// regardless of recency.
func (r *Rumor) EntityKnowsRumor(entityID string) bool {
	for _, s := range r.Spread {
		if s.EntityID == entityID {
			return true
		}
	}
	return false
}

// MutationChain reconstructs the lineage from the root variant down to the
// given variant, built on demand from the flat parent pointers.
func (r *Rumor) MutationChain(variantID string) ([]RumorVariant, error) {
	v := r.VariantByID(variantID)
	if v == nil {
		return nil, fmt.Errorf("variant %s: %w", variantID, ErrCorruptLineage)
	}

	var chain []RumorVariant
	seen := make(map[string]struct{})
	for v != nil {
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("cycle at variant %s: %w", v.ID, ErrCorruptLineage)
		}
		seen[v.ID] = struct{}{}
		chain = append(chain, *v)
		if v.ParentVariantID == "" {
			break
		}
		v = r.VariantByID(v.ParentVariantID)
		if v == nil {
			return nil, fmt.Errorf("missing parent variant: %w", ErrCorruptLineage)
		}
	}

	// Reverse to root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Validate checks the aggregate invariants: bounded truth and believability
// values, a unique root variant, and every spread record resolving to a
// known variant.
func (r *Rumor) Validate() error {
	if r.TruthValue < 0 || r.TruthValue > 1 {
		return fmt.Errorf("truth value %f out of range", r.TruthValue)
	}
	if len(r.Variants) == 0 {
		return fmt.Errorf("rumor %s has no variants: %w", r.ID, ErrCorruptLineage)
	}

	roots := 0
	ids := make(map[string]struct{}, len(r.Variants))
	for _, v := range r.Variants {
		ids[v.ID] = struct{}{}
		if v.ParentVariantID == "" {
			roots++
		}
	}
	if roots != 1 {
		return fmt.Errorf("rumor %s has %d root variants: %w", r.ID, roots, ErrCorruptLineage)
	}

	for _, s := range r.Spread {
		if s.Believability < 0 || s.Believability > 1 {
			return fmt.Errorf("believability %f out of range for entity %s", s.Believability, s.EntityID)
		}
		if _, ok := ids[s.VariantID]; !ok {
			return fmt.Errorf("spread record for %s references unknown variant %s: %w",
				s.EntityID, s.VariantID, ErrCorruptLineage)
		}
	}
	return nil
}

// Clone deep-copies the aggregate so callers can mutate a working copy
// without touching the cached one.
func (r *Rumor) Clone() *Rumor {
	c := *r
	c.Categories = append([]Category(nil), r.Categories...)
	c.Spread = append([]RumorSpread(nil), r.Spread...)
	c.Variants = make([]RumorVariant, len(r.Variants))
	for i, v := range r.Variants {
		c.Variants[i] = v
		if v.MutationMetadata != nil {
			md := make(map[string]any, len(v.MutationMetadata))
			for k, val := range v.MutationMetadata {
				md[k] = val
			}
			c.Variants[i].MutationMetadata = md
		}
	}
	return &c
}

// SpreadCount returns how many hearing events the rumor has accumulated,
// counting the originator's own record.
func (r *Rumor) SpreadCount() int { return len(r.Spread) }

// VariantCount returns how many textual versions of the rumor exist.
func (r *Rumor) VariantCount() int { return len(r.Variants) }

// HasCategory reports whether the rumor carries the given category.
func (r *Rumor) HasCategory(cat Category) bool {
	for _, c := range r.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
