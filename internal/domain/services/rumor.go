// Package services contains the rumor system's business logic.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
	"github.com/ersonp/rumor-mill/internal/domain/ports"
	"github.com/ersonp/rumor-mill/internal/domain/rules"
)

// DefaultLimit is the result cap applied when a caller passes no limit.
const DefaultLimit = 50

// DefaultMutationProbability is used when a spread requests mutation
// without an explicit probability.
const DefaultMutationProbability = 0.2

// ServiceConfig carries the optional collaborators of a RumorService.
// Zero-valued fields get working defaults: a no-op publisher, the local
// phrase mutator, no search index, stock policies, slog.Default().
type ServiceConfig struct {
	Publisher   ports.EventPublisher
	Generator   ports.MutationGenerator
	Index       ports.VectorIndex
	Decay       rules.DecayPolicy
	Propagation rules.PropagationPolicy
	Logger      *slog.Logger
}

// RumorService is the public API of the rumor system: create, spread,
// mutate, decay, query, delete. It owns the canonical copy of each rumor
// in the repository and keeps a non-authoritative read-through cache.
//
// Every read-modify-write on a rumor runs under a per-rumor mutex, so
// concurrent calls against the same rumor id serialize instead of racing.
type RumorService struct {
	repo        ports.RumorRepository
	publisher   ports.EventPublisher
	generator   ports.MutationGenerator
	index       ports.VectorIndex
	decay       rules.DecayPolicy
	propagation rules.PropagationPolicy
	log         *slog.Logger

	now func() time.Time
	rng func() float64

	mu        sync.RWMutex
	cache     map[string]*entities.Rumor
	preloaded bool

	locks sync.Map // rumor id -> *sync.Mutex
}

// NewRumorService creates a rumor service backed by the given repository.
func NewRumorService(repo ports.RumorRepository, cfg ServiceConfig) *RumorService {
	s := &RumorService{
		repo:        repo,
		publisher:   cfg.Publisher,
		generator:   cfg.Generator,
		index:       cfg.Index,
		decay:       cfg.Decay,
		propagation: cfg.Propagation,
		log:         cfg.Logger,
		now:         func() time.Time { return time.Now().UTC() },
		rng:         rand.Float64,
		cache:       make(map[string]*entities.Rumor),
	}
	if s.generator == nil {
		s.generator = rules.NewMutator()
	}
	if s.decay.BaseRate == 0 {
		s.decay = rules.DefaultDecayPolicy()
	}
	if s.propagation.ThresholdBase == 0 && s.propagation.Locations == nil {
		s.propagation = rules.DefaultPropagationPolicy()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// lockRumor serializes read-modify-write cycles per rumor id.
func (s *RumorService) lockRumor(rumorID string) func() {
	v, _ := s.locks.LoadOrStore(rumorID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreateRumor creates a new rumor and returns its id. Unknown category or
// severity strings normalize to safe defaults with a warning; truthValue is
// clamped to [0, 1]. The originator starts with a believability of 1.0 on
// the root variant.
func (s *RumorService) CreateRumor(ctx context.Context, originatorID, content string,
	categories []string, severity string, truthValue float64) (string, error) {

	if originatorID == "" {
		return "", fmt.Errorf("originator id is required")
	}
	if content == "" {
		return "", fmt.Errorf("content is required")
	}

	normalized := s.normalizeCategories(categories)
	sev, ok := entities.ParseSeverity(severity)
	if !ok && severity != "" {
		s.log.Warn("unknown rumor severity, using minor", "severity", severity)
	}

	now := s.now()
	rootVariant := entities.RumorVariant{
		ID:        uuid.New().String(),
		Content:   content,
		CreatedAt: now,
		EntityID:  originatorID,
	}
	rumor := &entities.Rumor{
		ID:              uuid.New().String(),
		CreatedAt:       now,
		OriginatorID:    originatorID,
		OriginalContent: content,
		Categories:      normalized,
		Severity:        sev,
		TruthValue:      entities.Clamp01(truthValue),
		Variants:        []entities.RumorVariant{rootVariant},
		Spread: []entities.RumorSpread{{
			EntityID:      originatorID,
			VariantID:     rootVariant.ID,
			Believability: 1.0, // originators fully believe their own rumor
			HeardAt:       now,
		}},
	}

	if err := s.repo.SaveRumor(ctx, rumor); err != nil {
		return "", fmt.Errorf("saving rumor: %w", err)
	}
	s.storeInCache(rumor)
	s.indexRumor(ctx, rumor.ID, content)

	s.publish(ctx, ports.Event{
		Type:      ports.EventRumorCreated,
		RumorID:   rumor.ID,
		Operation: "created",
		EntityID:  originatorID,
	})

	s.log.Debug("created rumor", "rumor_id", rumor.ID, "originator", originatorID)
	return rumor.ID, nil
}

// SpreadOptions tunes a single spread operation. A zero MutationProbability
// with Mutate set falls back to DefaultMutationProbability.
type SpreadOptions struct {
	VariantID             string
	BelievabilityModifier float64
	Mutate                bool
	MutationProbability   float64
}

// SpreadRumor spreads a rumor from one entity to another, optionally
// mutating it in transit. Returns false with no state change when the
// rumor is missing, the sender doesn't know it, or no variant resolves.
//
// Spreading is deliberately not idempotent: every call is a new retelling
// event and appends a new spread record, even to the same receiver.
func (s *RumorService) SpreadRumor(ctx context.Context, rumorID, fromEntityID, toEntityID string,
	opts SpreadOptions) (bool, error) {

	unlock := s.lockRumor(rumorID)
	defer unlock()

	rumor, err := s.getForUpdate(ctx, rumorID)
	if err != nil {
		return false, err
	}
	if rumor == nil {
		s.log.Warn("cannot spread rumor: not found", "rumor_id", rumorID)
		return false, nil
	}

	if !rumor.EntityKnowsRumor(fromEntityID) {
		s.log.Warn("cannot spread rumor: sender doesn't know it",
			"rumor_id", rumorID, "from", fromEntityID)
		return false, nil
	}

	variantID := opts.VariantID
	if variantID == "" {
		variantID = rumor.LatestVariantIDForEntity(fromEntityID)
		if variantID == "" {
			s.log.Warn("cannot spread rumor: sender has no variant",
				"rumor_id", rumorID, "from", fromEntityID)
			return false, nil
		}
	}
	variant := rumor.VariantByID(variantID)
	if variant == nil {
		if opts.VariantID == "" {
			// The sender's latest spread record points at a variant that
			// doesn't exist: the append-only contract was broken upstream.
			return false, fmt.Errorf("rumor %s, variant %s: %w",
				rumorID, variantID, entities.ErrCorruptLineage)
		}
		s.log.Warn("cannot spread rumor: variant not found",
			"rumor_id", rumorID, "variant_id", variantID)
		return false, nil
	}

	finalVariantID := variantID
	mutationOccurred := false
	if opts.Mutate {
		probability := opts.MutationProbability
		if probability == 0 {
			probability = DefaultMutationProbability
		}
		if probability >= 1.0 || s.rng() < probability {
			newVariant := s.buildMutation(ctx, rumor, toEntityID, variant, nil)
			rumor.Variants = append(rumor.Variants, newVariant)
			finalVariantID = newVariant.ID
			mutationOccurred = true
		}
	}

	senderBelievability, _ := rumor.BelievabilityForEntity(fromEntityID)
	finalBelievability := entities.Clamp01(senderBelievability + opts.BelievabilityModifier)

	rumor.Spread = append(rumor.Spread, entities.RumorSpread{
		EntityID:          toEntityID,
		VariantID:         finalVariantID,
		HeardFromEntityID: fromEntityID,
		Believability:     finalBelievability,
		HeardAt:           s.now(),
	})

	if err := s.repo.SaveRumor(ctx, rumor); err != nil {
		return false, fmt.Errorf("saving rumor: %w", err)
	}
	s.storeInCache(rumor)

	s.publish(ctx, ports.Event{
		Type:      ports.EventRumorSpread,
		RumorID:   rumorID,
		Operation: "spread",
		EntityID:  toEntityID,
		AdditionalData: map[string]any{
			"from_entity":       fromEntityID,
			"variant_id":        finalVariantID,
			"believability":     finalBelievability,
			"mutation_occurred": mutationOccurred,
		},
	})

	s.log.Debug("spread rumor", "rumor_id", rumorID,
		"from", fromEntityID, "to", toEntityID, "mutated", mutationOccurred)
	return true, nil
}

// SpreadContext describes the social situation of a policy-driven spread.
type SpreadContext struct {
	// RelationshipStrength is trust between sender and receiver in [-1, 1].
	RelationshipStrength float64
	// LocationType matches the configured location modifiers ("tavern", ...).
	LocationType string
	// BelievabilityModifier is passed through to the spread itself.
	BelievabilityModifier float64
}

// SpreadWithPolicy applies the propagation policy before spreading: the
// sender's believability must clear the spread threshold, the location
// scales the success chance, and mutation probability comes from the
// configured curve. Returns false when the policy blocks the spread.
func (s *RumorService) SpreadWithPolicy(ctx context.Context, rumorID, fromEntityID, toEntityID string,
	sctx SpreadContext) (bool, error) {

	rumor, err := s.GetRumor(ctx, rumorID)
	if err != nil || rumor == nil {
		return false, err
	}

	believability, known := rumor.BelievabilityForEntity(fromEntityID)
	if !known {
		s.log.Warn("cannot spread rumor: sender doesn't know it",
			"rumor_id", rumorID, "from", fromEntityID)
		return false, nil
	}

	threshold := s.propagation.SpreadThreshold(rumor.Severity, sctx.RelationshipStrength)
	if believability < threshold {
		s.log.Debug("spread blocked by threshold", "rumor_id", rumorID,
			"believability", believability, "threshold", threshold)
		return false, nil
	}

	location := s.propagation.LocationModifier(sctx.LocationType)
	if chance := entities.Clamp01(believability * location.SpreadMultiplier); s.rng() >= chance {
		s.log.Debug("spread fizzled", "rumor_id", rumorID, "location", sctx.LocationType)
		return false, nil
	}

	mutationChance := s.propagation.MutationChance(rumor.Severity, rumor.SpreadCount())
	mutationChance = entities.Clamp01(mutationChance * location.MutationChanceModifier)

	return s.SpreadRumor(ctx, rumorID, fromEntityID, toEntityID, SpreadOptions{
		BelievabilityModifier: sctx.BelievabilityModifier,
		Mutate:                true,
		MutationProbability:   mutationChance,
	})
}

// MutateRumor creates a new variant of a rumor without spreading it. The
// variant is appended to the lineage only; producing a variant does not by
// itself mean anyone knows it. Returns nil when the rumor or the parent
// variant doesn't resolve.
func (s *RumorService) MutateRumor(ctx context.Context, rumorID, entityID string,
	parentVariantID, newContent string, metadata map[string]any) (*entities.RumorVariant, error) {

	unlock := s.lockRumor(rumorID)
	defer unlock()

	rumor, err := s.getForUpdate(ctx, rumorID)
	if err != nil {
		return nil, err
	}
	if rumor == nil {
		s.log.Warn("cannot mutate rumor: not found", "rumor_id", rumorID)
		return nil, nil
	}

	if parentVariantID == "" {
		parentVariantID = rumor.LatestVariantIDForEntity(entityID)
	}
	parent := rumor.VariantByID(parentVariantID)
	if parent == nil {
		s.log.Warn("cannot mutate rumor: no parent variant",
			"rumor_id", rumorID, "entity", entityID)
		return nil, nil
	}

	var variant entities.RumorVariant
	if newContent != "" {
		variant = s.newVariant(entityID, parent.ID, newContent, metadata)
	} else {
		variant = s.buildMutation(ctx, rumor, entityID, parent, metadata)
	}
	rumor.Variants = append(rumor.Variants, variant)

	if err := s.repo.SaveRumor(ctx, rumor); err != nil {
		return nil, fmt.Errorf("saving rumor: %w", err)
	}
	s.storeInCache(rumor)
	s.indexRumor(ctx, rumor.ID, variant.Content)

	s.publish(ctx, ports.Event{
		Type:      ports.EventRumorMutated,
		RumorID:   rumorID,
		Operation: "mutated",
		EntityID:  entityID,
		AdditionalData: map[string]any{
			"variant_id":        variant.ID,
			"parent_variant_id": parent.ID,
			"original_content":  parent.Content,
			"mutated_content":   variant.Content,
		},
	})

	s.log.Debug("mutated rumor", "rumor_id", rumorID, "variant_id", variant.ID)
	return &variant, nil
}

// buildMutation produces a mutated variant via the configured generator,
// falling back to the local phrase mutator when the generator fails.
// Generator failure never propagates to the caller.
func (s *RumorService) buildMutation(ctx context.Context, rumor *entities.Rumor,
	entityID string, parent *entities.RumorVariant, metadata map[string]any) entities.RumorVariant {

	content, err := s.generator.Generate(ctx, parent.Content, ports.MutationContext{
		RumorID:    rumor.ID,
		Severity:   rumor.Severity,
		Categories: rumor.Categories,
		TruthValue: rumor.TruthValue,
		EntityID:   entityID,
		Metadata:   metadata,
	})
	if err != nil {
		s.log.Error("mutation generator failed, using local transform",
			"rumor_id", rumor.ID, "error", err)
		content = rules.NewMutator().Mutate(parent.Content)
	}
	return s.newVariant(entityID, parent.ID, content, metadata)
}

func (s *RumorService) newVariant(entityID, parentID, content string, metadata map[string]any) entities.RumorVariant {
	return entities.RumorVariant{
		ID:               uuid.New().String(),
		Content:          content,
		CreatedAt:        s.now(),
		EntityID:         entityID,
		ParentVariantID:  parentID,
		MutationMetadata: metadata,
	}
}

// GetRumor returns a rumor by id, cache first. Returns (nil, nil) when
// absent. The returned aggregate is a snapshot; mutating operations work on
// their own copies.
func (s *RumorService) GetRumor(ctx context.Context, rumorID string) (*entities.Rumor, error) {
	s.mu.RLock()
	rumor, ok := s.cache[rumorID]
	s.mu.RUnlock()
	if ok {
		return rumor, nil
	}

	rumor, err := s.repo.GetRumor(ctx, rumorID)
	if err != nil {
		return nil, fmt.Errorf("loading rumor: %w", err)
	}
	if rumor != nil {
		s.storeInCache(rumor)
	}
	return rumor, nil
}

// EntityRumor is one rumor as known by a specific entity.
type EntityRumor struct {
	RumorID       string              `json:"rumor_id"`
	Content       string              `json:"content"`
	VariantID     string              `json:"variant_id"`
	Believability float64             `json:"believability"`
	Categories    []entities.Category `json:"categories"`
	Severity      entities.Severity   `json:"severity"`
	TruthValue    float64             `json:"truth_value"`
	CreatedAt     time.Time           `json:"created_at"`
	SpreadCount   int                 `json:"spread_count"`
}

// GetRumorsForEntity returns the rumors an entity knows, filtered by
// category and minimum believability, sorted by believability descending.
// This is a snapshot read; repeated calls may return a different top-N.
func (s *RumorService) GetRumorsForEntity(ctx context.Context, entityID string,
	categories []string, minBelievability float64, maxRumors int) ([]EntityRumor, error) {

	if err := s.preload(ctx); err != nil {
		return nil, err
	}
	if maxRumors <= 0 {
		maxRumors = DefaultLimit
	}

	categoryFilter := lo.FilterMap(categories, func(c string, _ int) (entities.Category, bool) {
		cat, ok := entities.ParseCategory(c)
		if !ok {
			s.log.Warn("unknown category filter", "category", c)
		}
		return cat, ok
	})

	var results []EntityRumor
	for _, rumor := range s.snapshot() {
		believability, known := rumor.BelievabilityForEntity(entityID)
		if !known || believability < minBelievability {
			continue
		}
		if len(categoryFilter) > 0 && !lo.SomeBy(categoryFilter, rumor.HasCategory) {
			continue
		}

		variantID := rumor.LatestVariantIDForEntity(entityID)
		content := rumor.CurrentContentForEntity(entityID)
		if content == "" {
			content = rumor.OriginalContent
		}
		results = append(results, EntityRumor{
			RumorID:       rumor.ID,
			Content:       content,
			VariantID:     variantID,
			Believability: believability,
			Categories:    rumor.Categories,
			Severity:      rumor.Severity,
			TruthValue:    rumor.TruthValue,
			CreatedAt:     rumor.CreatedAt,
			SpreadCount:   rumor.SpreadCount(),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Believability > results[j].Believability
	})
	if len(results) > maxRumors {
		results = results[:maxRumors]
	}
	return results, nil
}

// UpdateBelievability adjusts how strongly an entity believes a rumor,
// clamped to [0, 1] on the entity's most recent spread record. Returns
// false when the rumor is missing or the entity has no spread record.
func (s *RumorService) UpdateBelievability(ctx context.Context, rumorID, entityID string,
	adjustment float64) (bool, error) {

	unlock := s.lockRumor(rumorID)
	defer unlock()

	rumor, err := s.getForUpdate(ctx, rumorID)
	if err != nil {
		return false, err
	}
	if rumor == nil {
		return false, nil
	}

	newValue, ok := rumor.AdjustBelievability(entityID, adjustment)
	if !ok {
		s.log.Warn("entity doesn't know rumor", "rumor_id", rumorID, "entity", entityID)
		return false, nil
	}

	if err := s.repo.SaveRumor(ctx, rumor); err != nil {
		return false, fmt.Errorf("saving rumor: %w", err)
	}
	s.storeInCache(rumor)

	s.log.Debug("updated believability", "rumor_id", rumorID,
		"entity", entityID, "believability", newValue)
	return true, nil
}

// DecayRumors applies the decay law to every spread record of every known
// rumor, optionally filtered to specific entities. decayRate <= 0 uses the
// configured base rate. Only rumors that actually changed are persisted.
// Decay approaches zero but never deletes; returns the number of rumors
// whose believability changed.
func (s *RumorService) DecayRumors(ctx context.Context, decayRate float64, entityIDs []string) (int, error) {
	if err := s.preload(ctx); err != nil {
		return 0, err
	}
	if decayRate <= 0 {
		decayRate = s.decay.BaseRate
	}

	entityFilter := lo.SliceToMap(entityIDs, func(id string) (string, struct{}) {
		return id, struct{}{}
	})

	affected := 0
	now := s.now()
	for _, id := range s.cachedIDs() {
		changed, err := s.decayRumor(ctx, id, decayRate, entityFilter, now)
		if err != nil {
			return affected, err
		}
		if changed {
			affected++
		}
	}

	s.log.Debug("applied decay", "affected", affected, "rate", decayRate)
	return affected, nil
}

func (s *RumorService) decayRumor(ctx context.Context, rumorID string, decayRate float64,
	entityFilter map[string]struct{}, now time.Time) (bool, error) {

	unlock := s.lockRumor(rumorID)
	defer unlock()

	rumor, err := s.getForUpdate(ctx, rumorID)
	if err != nil || rumor == nil {
		return false, err
	}

	ageDays := float64(int(now.Sub(rumor.CreatedAt).Hours() / 24))
	rate := s.decay.EffectiveRateWithBase(decayRate, rumor.Severity, ageDays)

	changed := false
	for i := range rumor.Spread {
		if len(entityFilter) > 0 {
			if _, ok := entityFilter[rumor.Spread[i].EntityID]; !ok {
				continue
			}
		}
		old := rumor.Spread[i].Believability
		rumor.Spread[i].Believability = s.decay.Apply(old, rate)
		if rumor.Spread[i].Believability != old {
			changed = true
		}
	}

	if !changed {
		return false, nil
	}
	if err := s.repo.SaveRumor(ctx, rumor); err != nil {
		return false, fmt.Errorf("saving rumor: %w", err)
	}
	s.storeInCache(rumor)
	return true, nil
}

// DeleteRumor removes a rumor from cache and repository. Returns false
// when it did not exist.
func (s *RumorService) DeleteRumor(ctx context.Context, rumorID string) (bool, error) {
	unlock := s.lockRumor(rumorID)
	defer unlock()

	rumor, err := s.getForUpdate(ctx, rumorID)
	if err != nil {
		return false, err
	}
	if rumor == nil {
		return false, nil
	}

	deleted, err := s.repo.DeleteRumor(ctx, rumorID)
	if err != nil {
		return false, fmt.Errorf("deleting rumor: %w", err)
	}
	if !deleted {
		return false, nil
	}

	s.mu.Lock()
	delete(s.cache, rumorID)
	s.mu.Unlock()

	if s.index != nil {
		if err := s.index.Delete(ctx, rumorID); err != nil {
			s.log.Warn("failed to remove rumor from index", "rumor_id", rumorID, "error", err)
		}
	}

	s.publish(ctx, ports.Event{
		Type:      ports.EventRumorDeleted,
		RumorID:   rumorID,
		Operation: "deleted",
	})

	s.log.Debug("deleted rumor", "rumor_id", rumorID)
	return true, nil
}

// QueryFilter narrows a QueryRumors scan. Zero values mean "no filter";
// MinSeverity is a minimum on the trivial < minor < moderate < major <
// critical ordering.
type QueryFilter struct {
	SearchText  string
	Categories  []string
	MinSeverity string
	MinTruth    float64
	EntityKnows string
	Limit       int
}

// RumorSummary is one QueryRumors result row.
type RumorSummary struct {
	RumorID         string              `json:"rumor_id"`
	OriginalContent string              `json:"original_content"`
	Categories      []entities.Category `json:"categories"`
	Severity        entities.Severity   `json:"severity"`
	TruthValue      float64             `json:"truth_value"`
	CreatedAt       time.Time           `json:"created_at"`
	OriginatorID    string              `json:"originator_id"`
	VariantCount    int                 `json:"variant_count"`
	SpreadCount     int                 `json:"spread_count"`

	// Set only when the filter named an entity.
	EntityBelievability float64 `json:"entity_believability,omitempty"`
	EntityVariantID     string  `json:"entity_variant_id,omitempty"`
	EntityContent       string  `json:"entity_content,omitempty"`
}

// QueryRumors scans all known rumors, filters, sorts by creation time
// descending, and truncates to the limit.
func (s *RumorService) QueryRumors(ctx context.Context, filter QueryFilter) ([]RumorSummary, error) {
	if err := s.preload(ctx); err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var minSeverity entities.Severity
	if filter.MinSeverity != "" {
		sev, ok := entities.ParseSeverity(filter.MinSeverity)
		if !ok {
			s.log.Warn("unknown severity filter", "severity", filter.MinSeverity)
		}
		minSeverity = sev
	}
	categoryFilter := lo.FilterMap(filter.Categories, func(c string, _ int) (entities.Category, bool) {
		cat, ok := entities.ParseCategory(c)
		if !ok {
			s.log.Warn("unknown category filter", "category", c)
		}
		return cat, ok
	})

	var results []RumorSummary
	for _, rumor := range s.snapshot() {
		if filter.MinTruth > 0 && rumor.TruthValue < filter.MinTruth {
			continue
		}
		if minSeverity != "" && !rumor.Severity.AtLeast(minSeverity) {
			continue
		}
		if len(categoryFilter) > 0 && !lo.SomeBy(categoryFilter, rumor.HasCategory) {
			continue
		}
		if filter.EntityKnows != "" && !rumor.EntityKnowsRumor(filter.EntityKnows) {
			continue
		}
		if filter.SearchText != "" && !containsFold(rumor.OriginalContent, filter.SearchText) {
			continue
		}

		summary := RumorSummary{
			RumorID:         rumor.ID,
			OriginalContent: rumor.OriginalContent,
			Categories:      rumor.Categories,
			Severity:        rumor.Severity,
			TruthValue:      rumor.TruthValue,
			CreatedAt:       rumor.CreatedAt,
			OriginatorID:    rumor.OriginatorID,
			VariantCount:    rumor.VariantCount(),
			SpreadCount:     rumor.SpreadCount(),
		}
		if filter.EntityKnows != "" {
			believability, _ := rumor.BelievabilityForEntity(filter.EntityKnows)
			summary.EntityBelievability = believability
			summary.EntityVariantID = rumor.LatestVariantIDForEntity(filter.EntityKnows)
			summary.EntityContent = rumor.CurrentContentForEntity(filter.EntityKnows)
			if summary.EntityContent == "" {
				summary.EntityContent = rumor.OriginalContent
			}
		}
		results = append(results, summary)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// MutationChain reconstructs the lineage of a variant from the root
// statement down. An empty variantID traces the most recently appended
// variant. Returns (nil, nil) when the rumor is missing.
func (s *RumorService) MutationChain(ctx context.Context, rumorID, variantID string) ([]entities.RumorVariant, error) {
	rumor, err := s.GetRumor(ctx, rumorID)
	if err != nil || rumor == nil {
		return nil, err
	}
	if variantID == "" && len(rumor.Variants) > 0 {
		variantID = rumor.Variants[len(rumor.Variants)-1].ID
	}
	return rumor.MutationChain(variantID)
}

// FindSimilar searches the semantic index for rumors matching the text.
// Returns (nil, nil) when no index is configured.
func (s *RumorService) FindSimilar(ctx context.Context, text string, limit int) ([]ports.SimilarRumor, error) {
	if s.index == nil {
		s.log.Debug("no vector index configured")
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	hits, err := s.index.Search(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("searching rumor index: %w", err)
	}
	return hits, nil
}

// Statistics summarizes the rumor population.
type Statistics struct {
	TotalRumors             int                       `json:"total_rumors"`
	TotalVariants           int                       `json:"total_variants"`
	TotalSpreads            int                       `json:"total_spreads"`
	CategoryDistribution    map[entities.Category]int `json:"category_distribution"`
	SeverityDistribution    map[entities.Severity]int `json:"severity_distribution"`
	AverageTruthValue       float64                   `json:"average_truth_value"`
	AverageVariantsPerRumor float64                   `json:"average_variants_per_rumor"`
	AverageSpreadsPerRumor  float64                   `json:"average_spreads_per_rumor"`
}

// Statistics computes aggregate counts over all known rumors.
func (s *RumorService) Statistics(ctx context.Context) (Statistics, error) {
	if err := s.preload(ctx); err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		CategoryDistribution: make(map[entities.Category]int),
		SeverityDistribution: make(map[entities.Severity]int),
	}
	truthSum := 0.0
	for _, rumor := range s.snapshot() {
		stats.TotalRumors++
		stats.TotalVariants += rumor.VariantCount()
		stats.TotalSpreads += rumor.SpreadCount()
		truthSum += rumor.TruthValue
		for _, cat := range rumor.Categories {
			stats.CategoryDistribution[cat]++
		}
		stats.SeverityDistribution[rumor.Severity]++
	}
	if stats.TotalRumors > 0 {
		n := float64(stats.TotalRumors)
		stats.AverageTruthValue = truthSum / n
		stats.AverageVariantsPerRumor = float64(stats.TotalVariants) / n
		stats.AverageSpreadsPerRumor = float64(stats.TotalSpreads) / n
	}
	return stats, nil
}

// getForUpdate loads a rumor for mutation, as a private working copy.
// The cache entry is only replaced after a successful save, so a failed
// repository write never leaves the cache ahead of the repository.
func (s *RumorService) getForUpdate(ctx context.Context, rumorID string) (*entities.Rumor, error) {
	s.mu.RLock()
	cached, ok := s.cache[rumorID]
	s.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	rumor, err := s.repo.GetRumor(ctx, rumorID)
	if err != nil {
		return nil, fmt.Errorf("loading rumor: %w", err)
	}
	if rumor == nil {
		return nil, nil
	}
	s.storeInCache(rumor)
	return rumor.Clone(), nil
}

func (s *RumorService) storeInCache(rumor *entities.Rumor) {
	s.mu.Lock()
	s.cache[rumor.ID] = rumor
	s.mu.Unlock()
}

// preload fills the cache from the repository once, before full-scan reads.
func (s *RumorService) preload(ctx context.Context) error {
	s.mu.RLock()
	done := s.preloaded
	s.mu.RUnlock()
	if done {
		return nil
	}

	rumors, err := s.repo.GetAllRumors(ctx)
	if err != nil {
		return fmt.Errorf("preloading rumors: %w", err)
	}

	s.mu.Lock()
	for _, r := range rumors {
		if _, ok := s.cache[r.ID]; !ok {
			s.cache[r.ID] = r
		}
	}
	s.preloaded = true
	s.mu.Unlock()

	s.log.Debug("preloaded rumors", "count", len(rumors))
	return nil
}

// snapshot returns the current cache contents in stable id order.
func (s *RumorService) snapshot() []*entities.Rumor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := lo.Keys(s.cache)
	sort.Strings(ids)
	return lo.Map(ids, func(id string, _ int) *entities.Rumor { return s.cache[id] })
}

func (s *RumorService) cachedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := lo.Keys(s.cache)
	sort.Strings(ids)
	return ids
}

func (s *RumorService) normalizeCategories(categories []string) []entities.Category {
	if len(categories) == 0 {
		return []entities.Category{entities.CategoryOther}
	}
	return lo.Map(categories, func(c string, _ int) entities.Category {
		cat, ok := entities.ParseCategory(c)
		if !ok {
			s.log.Warn("unknown rumor category, using other", "category", c)
		}
		return cat
	})
}

// publish delivers an event best-effort; failures are logged, never
// propagated, and never roll back the state change they describe.
func (s *RumorService) publish(ctx context.Context, event ports.Event) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish event", "type", event.Type,
			"rumor_id", event.RumorID, "error", err)
	}
}

// indexRumor refreshes the semantic index best-effort.
func (s *RumorService) indexRumor(ctx context.Context, rumorID, content string) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, rumorID, content); err != nil {
		s.log.Warn("failed to index rumor", "rumor_id", rumorID, "error", err)
	}
}

// containsFold is a case-insensitive substring test.
func containsFold(haystack, needle string) bool {
	return len(needle) == 0 ||
		strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
