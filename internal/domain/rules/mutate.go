package rules

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/ersonp/rumor-mill/internal/domain/ports"
)

// substitution rewrites one phrase into a vaguer or hedged form.
type substitution struct {
	old string
	new string
}

// substitutions is the library of canonical phrase rewrites applied when no
// external generator is configured. Matching is case-insensitive, the
// replacement is applied to the literal phrase.
var substitutions = []substitution{
	// Certainty softening
	{"is", "might be"},
	{"was", "supposedly was"},
	{"will", "could"},
	{"definitely", "probably"},
	{"certainly", "possibly"},
	{"always", "often"},
	{"never", "rarely"},

	// Location vagueness
	{"at the", "somewhere near the"},
	{"in the", "around the"},
	{"near", "somewhere close to"},

	// Time vagueness
	{"yesterday", "recently"},
	{"today", "lately"},
	{"tomorrow", "soon"},
	{"last week", "not long ago"},

	// Source uncertainty
	{"I saw", "someone saw"},
	{"I heard", "word is that"},
	{"he said", "they say"},
	{"she told me", "I heard that"},

	// Quantity hedging
	{"a few", "several"},
	{"many", "quite a few"},
	{"some", "a number of"},
	{"all", "most"},

	// Emotion hedging
	{"angry", "quite upset"},
	{"happy", "pleased"},
	{"sad", "rather down"},
	{"excited", "enthusiastic"},
}

// uncertaintySuffixes are occasionally appended to mark second-hand telling.
var uncertaintySuffixes = []string{
	" (or so I heard)",
	" (though I'm not certain)",
	" (if the rumors are true)",
	" (according to some)",
	" (allegedly)",
}

const suffixChance = 0.3

// Mutator is the local deterministic-fallback content transform: 1-3
// random phrase substitutions plus an occasional uncertainty suffix. It
// implements ports.MutationGenerator, never fails, and guarantees the
// output differs from the input.
type Mutator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMutator creates a Mutator with its own pseudo-random source.
func NewMutator() *Mutator {
	return &Mutator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededMutator creates a Mutator with a fixed seed for reproducible
// output in tests.
func NewSeededMutator(seed uint64) *Mutator {
	return &Mutator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Mutate rewrites content with 1-3 applicable phrase substitutions and a
// 30% chance of an uncertainty suffix. If nothing matched and the suffix
// roll failed, a suffix is appended anyway so a mutation always produces
// new text.
func (m *Mutator) Mutate(content string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	mutated := content
	count := 1 + m.rng.IntN(3)
	for _, i := range m.rng.Perm(len(substitutions)) {
		if count == 0 {
			break
		}
		sub := substitutions[i]
		if strings.Contains(strings.ToLower(mutated), sub.old) {
			mutated = strings.ReplaceAll(mutated, sub.old, sub.new)
			count--
		}
	}

	if m.rng.Float64() < suffixChance || mutated == content {
		mutated += uncertaintySuffixes[m.rng.IntN(len(uncertaintySuffixes))]
	}
	return mutated
}

// Generate implements ports.MutationGenerator.
func (m *Mutator) Generate(_ context.Context, original string, _ ports.MutationContext) (string, error) {
	return m.Mutate(original), nil
}
