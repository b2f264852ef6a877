package ports

import "context"

// Embedder turns rumor content into the vector the semantic index stores.
// Rumors are embedded one at a time, on create and on mutation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
