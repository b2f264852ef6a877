// Package openai provides the Embedder feeding the semantic rumor index.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/rumor-mill/internal/infrastructure/config"
)

// VectorSize is the dimension of text-embedding-3-small vectors, used when
// provisioning the rumor collection.
const VectorSize = 1536

// Embedder embeds rumor content via the OpenAI embeddings API. Rumor texts
// are short, single statements, so each call embeds exactly one of them.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedder creates a new OpenAI embedder.
func NewEmbedder(cfg config.EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	return &Embedder{
		client: client,
		model:  model,
	}, nil
}

// Embed generates the vector embedding for one rumor text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding rumor text: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}

	return resp.Data[0].Embedding, nil
}
