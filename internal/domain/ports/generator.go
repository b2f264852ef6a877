package ports

import (
	"context"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
)

// MutationContext carries the rumor state a generator may condition on when
// rewriting content.
type MutationContext struct {
	RumorID    string
	Severity   entities.Severity
	Categories []entities.Category
	TruthValue float64
	EntityID   string
	Metadata   map[string]any
}

// MutationGenerator produces a mutated retelling of rumor content. The
// service treats generator failure as degradable: a local deterministic
// transform always stands in when Generate errors.
type MutationGenerator interface {
	Generate(ctx context.Context, original string, mctx MutationContext) (string, error)
}
