package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
	"github.com/ersonp/rumor-mill/internal/domain/mocks"
	"github.com/ersonp/rumor-mill/internal/domain/ports"
)

type testEnv struct {
	svc       *RumorService
	repo      *mocks.RumorRepository
	publisher *mocks.EventPublisher
	generator *mocks.MutationGenerator
	index     *mocks.VectorIndex
	clock     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:      mocks.NewRumorRepository(),
		publisher: &mocks.EventPublisher{},
		generator: &mocks.MutationGenerator{Suffix: " (allegedly)"},
		index:     mocks.NewVectorIndex(),
		clock:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	env.svc = NewRumorService(env.repo, ServiceConfig{
		Publisher: env.publisher,
		Generator: env.generator,
		Index:     env.index,
	})
	env.svc.now = func() time.Time { return env.clock }
	env.svc.rng = func() float64 { return 0.99 } // rolls fail unless probability is 1.0
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) create(t *testing.T, severity string, truth float64) string {
	t.Helper()
	id, err := e.svc.CreateRumor(context.Background(), "alice",
		"the mayor is hiding gold", []string{"political"}, severity, truth)
	require.NoError(t, err)
	return id
}

func TestCreateRumor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.svc.CreateRumor(ctx, "alice", "the mayor is hiding gold",
		[]string{"political"}, "moderate", 0.6)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rumor, err := env.svc.GetRumor(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rumor)

	assert.Equal(t, "alice", rumor.OriginatorID)
	assert.Equal(t, entities.SeverityModerate, rumor.Severity)
	assert.Equal(t, []entities.Category{entities.CategoryPolitical}, rumor.Categories)
	assert.Equal(t, 0.6, rumor.TruthValue)
	require.Len(t, rumor.Variants, 1)
	assert.Empty(t, rumor.Variants[0].ParentVariantID)

	b, known := rumor.BelievabilityForEntity("alice")
	assert.True(t, known)
	assert.Equal(t, 1.0, b, "originators fully believe their own rumor")

	assert.NoError(t, rumor.Validate())
	assert.Equal(t, ports.EventRumorCreated, env.publisher.LastEvent().Type)
	assert.Contains(t, env.index.Indexed, id)
}

func TestCreateRumor_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateRumor(ctx, "", "content", nil, "minor", 0.5)
	assert.Error(t, err)

	_, err = env.svc.CreateRumor(ctx, "alice", "", nil, "minor", 0.5)
	assert.Error(t, err)
}

func TestCreateRumor_NormalizesUnknownInputs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.svc.CreateRumor(ctx, "alice", "something vague",
		[]string{"nonsense"}, "apocalyptic", 1.7)
	require.NoError(t, err)

	rumor, err := env.svc.GetRumor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []entities.Category{entities.CategoryOther}, rumor.Categories)
	assert.Equal(t, entities.SeverityMinor, rumor.Severity)
	assert.Equal(t, 1.0, rumor.TruthValue)
}

func TestCreateRumor_DefaultsEmptyCategories(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.CreateRumor(context.Background(), "alice", "plain talk", nil, "minor", 0.5)
	require.NoError(t, err)

	rumor, _ := env.svc.GetRumor(context.Background(), id)
	assert.Equal(t, []entities.Category{entities.CategoryOther}, rumor.Categories)
}

func TestSpreadRumor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	env.advance(time.Minute)
	spread, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{
		BelievabilityModifier: -0.3,
	})
	require.NoError(t, err)
	assert.True(t, spread)

	rumor, _ := env.svc.GetRumor(ctx, id)
	b, known := rumor.BelievabilityForEntity("bob")
	assert.True(t, known)
	assert.InDelta(t, 0.7, b, 1e-9, "receiver believability is sender's plus modifier")
	assert.Len(t, rumor.Variants, 1, "no mutation requested")

	event := env.publisher.LastEvent()
	assert.Equal(t, ports.EventRumorSpread, event.Type)
	assert.Equal(t, "bob", event.EntityID)
	assert.Equal(t, false, event.AdditionalData["mutation_occurred"])
}

func TestSpreadRumor_ClampsBelievability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	_, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{BelievabilityModifier: 2.0})
	require.NoError(t, err)

	rumor, _ := env.svc.GetRumor(ctx, id)
	b, _ := rumor.BelievabilityForEntity("bob")
	assert.Equal(t, 1.0, b)

	_, err = env.svc.SpreadRumor(ctx, id, "alice", "carol", SpreadOptions{BelievabilityModifier: -2.0})
	require.NoError(t, err)

	rumor, _ = env.svc.GetRumor(ctx, id)
	b, _ = rumor.BelievabilityForEntity("carol")
	assert.Equal(t, 0.0, b)
}

func TestSpreadRumor_IsNotIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	for i := 0; i < 3; i++ {
		env.advance(time.Minute)
		spread, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{})
		require.NoError(t, err)
		assert.True(t, spread)
	}

	rumor, _ := env.svc.GetRumor(ctx, id)
	assert.Len(t, rumor.Spread, 4, "originator plus three retellings")
}

func TestSpreadRumor_UnknownSenderOrRumor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	spread, err := env.svc.SpreadRumor(ctx, id, "stranger", "bob", SpreadOptions{})
	require.NoError(t, err)
	assert.False(t, spread)

	spread, err = env.svc.SpreadRumor(ctx, "no-such-rumor", "alice", "bob", SpreadOptions{})
	require.NoError(t, err)
	assert.False(t, spread)

	rumor, _ := env.svc.GetRumor(ctx, id)
	assert.Len(t, rumor.Spread, 1, "failed spreads change nothing")
}

func TestSpreadRumor_WithMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	env.advance(time.Minute)
	spread, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{
		Mutate:              true,
		MutationProbability: 1.0,
	})
	require.NoError(t, err)
	assert.True(t, spread)

	rumor, _ := env.svc.GetRumor(ctx, id)
	require.Len(t, rumor.Variants, 2)

	mutated := rumor.Variants[1]
	assert.Equal(t, rumor.Variants[0].ID, mutated.ParentVariantID)
	assert.NotEqual(t, rumor.Variants[0].Content, mutated.Content)
	assert.Equal(t, mutated.ID, rumor.LatestVariantIDForEntity("bob"))

	event := env.publisher.LastEvent()
	assert.Equal(t, ports.EventRumorSpread, event.Type)
	assert.Equal(t, true, event.AdditionalData["mutation_occurred"])
}

func TestSpreadRumor_MutationRollFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	// rng returns 0.99, so a 20% mutation chance never fires.
	spread, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{Mutate: true})
	require.NoError(t, err)
	assert.True(t, spread)

	rumor, _ := env.svc.GetRumor(ctx, id)
	assert.Len(t, rumor.Variants, 1)
}

func TestSpreadRumor_ExplicitVariantNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	spread, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{VariantID: "missing"})
	require.NoError(t, err)
	assert.False(t, spread)
}

func TestSpreadRumor_CorruptLineageFailsLoudly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	// Break the aggregate behind the service's back: alice's spread record
	// now points at a variant that doesn't exist.
	stored := env.repo.Stored(id)
	stored.Spread[0].VariantID = "gone"
	env.svc.mu.Lock()
	env.svc.cache[id] = stored
	env.svc.mu.Unlock()

	_, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{})
	assert.ErrorIs(t, err, entities.ErrCorruptLineage)
}

func TestSpreadWithPolicy_BlockedByThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	require.NoError(t, errSecond(env.svc.SpreadRumor(ctx, id, "alice", "bob",
		SpreadOptions{BelievabilityModifier: -0.9})))

	// Bob believes 0.1, below the 0.3 moderate threshold for strangers.
	spread, err := env.svc.SpreadWithPolicy(ctx, id, "bob", "carol", SpreadContext{})
	require.NoError(t, err)
	assert.False(t, spread)
}

func TestSpreadWithPolicy_Succeeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	env.svc.rng = func() float64 { return 0.0 } // every roll succeeds

	spread, err := env.svc.SpreadWithPolicy(ctx, id, "alice", "bob", SpreadContext{
		RelationshipStrength: 0.5,
		LocationType:         "tavern",
	})
	require.NoError(t, err)
	assert.True(t, spread)

	rumor, _ := env.svc.GetRumor(ctx, id)
	assert.True(t, rumor.EntityKnowsRumor("bob"))
	assert.Len(t, rumor.Variants, 2, "policy mutation chance fired")
}

func TestMutateRumor_WithGenerator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	variant, err := env.svc.MutateRumor(ctx, id, "alice", "", "", nil)
	require.NoError(t, err)
	require.NotNil(t, variant)

	assert.Equal(t, "the mayor is hiding gold (allegedly)", variant.Content)
	require.Len(t, env.generator.Calls, 1)
	assert.Equal(t, id, env.generator.Calls[0].RumorID)
	assert.Equal(t, entities.SeverityModerate, env.generator.Calls[0].Severity)

	rumor, _ := env.svc.GetRumor(ctx, id)
	require.Len(t, rumor.Variants, 2)
	assert.Equal(t, rumor.Variants[0].ID, variant.ParentVariantID)
	assert.Equal(t, ports.EventRumorMutated, env.publisher.LastEvent().Type)
}

func TestMutateRumor_GeneratorFailureFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	env.generator.Err = errors.New("llm unavailable")

	variant, err := env.svc.MutateRumor(ctx, id, "alice", "", "", nil)
	require.NoError(t, err, "generator failure degrades, never propagates")
	require.NotNil(t, variant)
	assert.NotEqual(t, "the mayor is hiding gold", variant.Content)
}

func TestMutateRumor_ExplicitContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	variant, err := env.svc.MutateRumor(ctx, id, "alice", "", "the mayor stole the treasury",
		map[string]any{"reason": "exaggeration"})
	require.NoError(t, err)
	require.NotNil(t, variant)
	assert.Equal(t, "the mayor stole the treasury", variant.Content)
	assert.Equal(t, "exaggeration", variant.MutationMetadata["reason"])
	assert.Empty(t, env.generator.Calls)
}

func TestMutateRumor_DoesNotGrantKnowledge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	// Bob doesn't know the rumor, so he has no variant to mutate from.
	variant, err := env.svc.MutateRumor(ctx, id, "bob", "", "", nil)
	require.NoError(t, err)
	assert.Nil(t, variant)

	// Mutating from an explicit parent works, but still doesn't mean bob
	// heard the rumor.
	rumor, _ := env.svc.GetRumor(ctx, id)
	variant, err = env.svc.MutateRumor(ctx, id, "bob", rumor.Variants[0].ID, "", nil)
	require.NoError(t, err)
	require.NotNil(t, variant)

	rumor, _ = env.svc.GetRumor(ctx, id)
	assert.False(t, rumor.EntityKnowsRumor("bob"))
}

func TestMutateRumor_NotFound(t *testing.T) {
	env := newTestEnv(t)

	variant, err := env.svc.MutateRumor(context.Background(), "no-such-rumor", "alice", "", "", nil)
	require.NoError(t, err)
	assert.Nil(t, variant)
}

func TestUpdateBelievability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	updated, err := env.svc.UpdateBelievability(ctx, id, "alice", -0.4)
	require.NoError(t, err)
	assert.True(t, updated)

	rumor, _ := env.svc.GetRumor(ctx, id)
	b, _ := rumor.BelievabilityForEntity("alice")
	assert.InDelta(t, 0.6, b, 1e-9)

	updated, err = env.svc.UpdateBelievability(ctx, id, "stranger", 0.1)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestUpdateBelievability_TargetsMostRecentRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	env.advance(time.Minute)
	require.NoError(t, errSecond(env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{})))
	env.advance(time.Minute)
	require.NoError(t, errSecond(env.svc.SpreadRumor(ctx, id, "alice", "bob",
		SpreadOptions{BelievabilityModifier: -0.5})))

	updated, err := env.svc.UpdateBelievability(ctx, id, "bob", 0.1)
	require.NoError(t, err)
	assert.True(t, updated)

	rumor, _ := env.svc.GetRumor(ctx, id)
	b, _ := rumor.BelievabilityForEntity("bob")
	assert.InDelta(t, 0.6, b, 1e-9, "adjustment lands on the latest record")
	assert.Equal(t, 1.0, rumor.Spread[1].Believability, "older record untouched")
}

func TestDecayRumors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	require.NoError(t, errSecond(env.svc.UpdateBelievability(ctx, id, "alice", -0.7)))

	// Fresh moderate rumor: each pass removes exactly the base rate.
	for _, expected := range []float64{0.25, 0.20} {
		affected, err := env.svc.DecayRumors(ctx, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, affected)

		rumor, _ := env.svc.GetRumor(ctx, id)
		b, _ := rumor.BelievabilityForEntity("alice")
		assert.InDelta(t, expected, b, 1e-9)
	}
}

func TestDecayRumors_SeverityAndAgeScaleTheRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "critical", 0.9)

	env.advance(10 * 24 * time.Hour)

	affected, err := env.svc.DecayRumors(ctx, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	// 0.05 * 0.6 (critical) * (1 + 0.1*10) = 0.06
	rumor, _ := env.svc.GetRumor(ctx, id)
	b, _ := rumor.BelievabilityForEntity("alice")
	assert.InDelta(t, 0.94, b, 1e-9)
}

func TestDecayRumors_EntityFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	env.advance(time.Minute)
	require.NoError(t, errSecond(env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{})))

	_, err := env.svc.DecayRumors(ctx, 0, []string{"bob"})
	require.NoError(t, err)

	rumor, _ := env.svc.GetRumor(ctx, id)
	aliceB, _ := rumor.BelievabilityForEntity("alice")
	bobB, _ := rumor.BelievabilityForEntity("bob")
	assert.Equal(t, 1.0, aliceB, "alice excluded by filter")
	assert.InDelta(t, 0.95, bobB, 1e-9)
}

func TestDecayRumors_FloorsAtZeroAndNeverDeletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	for i := 0; i < 30; i++ {
		_, err := env.svc.DecayRumors(ctx, 0, nil)
		require.NoError(t, err)
	}

	rumor, err := env.svc.GetRumor(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rumor, "decay never deletes rumors")
	b, known := rumor.BelievabilityForEntity("alice")
	assert.True(t, known)
	assert.Equal(t, 0.0, b)
}

func TestGetRumorsForEntity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	idA, err := env.svc.CreateRumor(ctx, "alice", "gold in the hills", []string{"economic"}, "minor", 0.4)
	require.NoError(t, err)
	idB, err := env.svc.CreateRumor(ctx, "alice", "the duke eloped", []string{"gossip"}, "major", 0.8)
	require.NoError(t, err)

	env.advance(time.Minute)
	require.NoError(t, errSecond(env.svc.SpreadRumor(ctx, idA, "alice", "bob",
		SpreadOptions{BelievabilityModifier: -0.6})))
	require.NoError(t, errSecond(env.svc.SpreadRumor(ctx, idB, "alice", "bob",
		SpreadOptions{BelievabilityModifier: -0.2})))

	rumors, err := env.svc.GetRumorsForEntity(ctx, "bob", nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, rumors, 2)
	assert.Equal(t, idB, rumors[0].RumorID, "sorted by believability descending")
	assert.Equal(t, idA, rumors[1].RumorID)

	// Category filter.
	rumors, err = env.svc.GetRumorsForEntity(ctx, "bob", []string{"gossip"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rumors, 1)
	assert.Equal(t, idB, rumors[0].RumorID)

	// Believability floor.
	rumors, err = env.svc.GetRumorsForEntity(ctx, "bob", nil, 0.5, 0)
	require.NoError(t, err)
	require.Len(t, rumors, 1)
	assert.Equal(t, idB, rumors[0].RumorID)

	// Limit.
	rumors, err = env.svc.GetRumorsForEntity(ctx, "bob", nil, 0, 1)
	require.NoError(t, err)
	assert.Len(t, rumors, 1)
}

func TestGetRumorsForEntity_WarnsOnUnknownCategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	var logBuf bytes.Buffer
	env.svc.log = slog.New(slog.NewTextHandler(&logBuf, nil))

	// An unknown category is dropped from the filter, not matched as
	// "other", so the remaining filter still applies.
	rumors, err := env.svc.GetRumorsForEntity(ctx, "alice", []string{"nonsense", "political"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rumors, 1)
	assert.Equal(t, id, rumors[0].RumorID)
	assert.Contains(t, logBuf.String(), "unknown category filter")
}

func TestQueryRumors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	idOld, err := env.svc.CreateRumor(ctx, "alice", "bandits on the north road",
		[]string{"military"}, "major", 0.9)
	require.NoError(t, err)
	env.advance(time.Hour)
	idNew, err := env.svc.CreateRumor(ctx, "bob", "the baker waters down his ale",
		[]string{"gossip"}, "trivial", 0.3)
	require.NoError(t, err)

	results, err := env.svc.QueryRumors(ctx, QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, idNew, results[0].RumorID, "newest first")
	assert.Equal(t, idOld, results[1].RumorID)

	results, err = env.svc.QueryRumors(ctx, QueryFilter{MinSeverity: "moderate"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, idOld, results[0].RumorID)

	results, err = env.svc.QueryRumors(ctx, QueryFilter{MinTruth: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, idOld, results[0].RumorID)

	results, err = env.svc.QueryRumors(ctx, QueryFilter{SearchText: "BAKER"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, idNew, results[0].RumorID)

	results, err = env.svc.QueryRumors(ctx, QueryFilter{EntityKnows: "alice"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, idOld, results[0].RumorID)
	assert.Equal(t, 1.0, results[0].EntityBelievability)
	assert.Equal(t, "bandits on the north road", results[0].EntityContent)
}

func TestDeleteRumor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	deleted, err := env.svc.DeleteRumor(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	rumor, err := env.svc.GetRumor(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, rumor)
	assert.NotContains(t, env.index.Indexed, id)
	assert.Equal(t, ports.EventRumorDeleted, env.publisher.LastEvent().Type)

	deleted, err = env.svc.DeleteRumor(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMutationChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	v1, err := env.svc.MutateRumor(ctx, id, "alice", "", "", nil)
	require.NoError(t, err)
	env.generator.Content = "the mayor buried gold under the well"
	v2, err := env.svc.MutateRumor(ctx, id, "alice", v1.ID, "", nil)
	require.NoError(t, err)

	chain, err := env.svc.MutationChain(ctx, id, v2.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "the mayor is hiding gold", chain[0].Content)
	assert.Equal(t, v1.ID, chain[1].ID)
	assert.Equal(t, v2.ID, chain[2].ID)

	// Empty variant id traces the newest variant.
	chain, err = env.svc.MutationChain(ctx, id, "")
	require.NoError(t, err)
	require.Len(t, chain, 3)

	chain, err = env.svc.MutationChain(ctx, "no-such-rumor", "")
	require.NoError(t, err)
	assert.Nil(t, chain)
}

func TestFindSimilar(t *testing.T) {
	env := newTestEnv(t)
	env.index.Hits = []ports.SimilarRumor{{RumorID: "r1", Content: "gold rumor", Score: 0.92}}

	hits, err := env.svc.FindSimilar(context.Background(), "treasure", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "r1", hits[0].RumorID)
}

func TestFindSimilar_NoIndexConfigured(t *testing.T) {
	repo := mocks.NewRumorRepository()
	svc := NewRumorService(repo, ServiceConfig{})

	hits, err := svc.FindSimilar(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	idA, err := env.svc.CreateRumor(ctx, "alice", "rumor one", []string{"political"}, "major", 0.8)
	require.NoError(t, err)
	_, err = env.svc.CreateRumor(ctx, "bob", "rumor two", []string{"political", "gossip"}, "minor", 0.2)
	require.NoError(t, err)
	require.NoError(t, errSecond(env.svc.SpreadRumor(ctx, idA, "alice", "bob", SpreadOptions{})))

	stats, err := env.svc.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalRumors)
	assert.Equal(t, 2, stats.TotalVariants)
	assert.Equal(t, 3, stats.TotalSpreads)
	assert.InDelta(t, 0.5, stats.AverageTruthValue, 1e-9)
	assert.Equal(t, 2, stats.CategoryDistribution[entities.CategoryPolitical])
	assert.Equal(t, 1, stats.CategoryDistribution[entities.CategoryGossip])
	assert.Equal(t, 1, stats.SeverityDistribution[entities.SeverityMajor])
}

func TestSaveFailureLeavesCacheConsistent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "moderate", 0.6)

	env.repo.SaveErr = errors.New("disk full")

	_, err := env.svc.SpreadRumor(ctx, id, "alice", "bob", SpreadOptions{})
	require.Error(t, err)

	// The cached aggregate must not contain the failed spread.
	rumor, getErr := env.svc.GetRumor(ctx, id)
	require.NoError(t, getErr)
	assert.Len(t, rumor.Spread, 1)
	assert.False(t, rumor.EntityKnowsRumor("bob"))
}

func TestEventPublishFailureDoesNotFailOperation(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.Err = errors.New("bus down")

	id, err := env.svc.CreateRumor(context.Background(), "alice", "quiet rumor", nil, "minor", 0.5)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

// errSecond discards the first return value so require.NoError reads cleanly.
func errSecond[T any](_ T, err error) error { return err }
