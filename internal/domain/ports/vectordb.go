package ports

import "context"

// SimilarRumor is one semantic search hit against the rumor index.
type SimilarRumor struct {
	RumorID string  `json:"rumor_id"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// VectorIndex defines the interface for the optional semantic rumor index.
// Indexing is auxiliary to persistence: the repository stays authoritative
// and index failures degrade to substring search.
type VectorIndex interface {
	// Index stores or refreshes the searchable content for a rumor.
	Index(ctx context.Context, rumorID, content string) error

	// Search returns rumors semantically similar to the query text.
	Search(ctx context.Context, text string, limit int) ([]SimilarRumor, error)

	// Delete removes a rumor from the index.
	Delete(ctx context.Context, rumorID string) error
}
