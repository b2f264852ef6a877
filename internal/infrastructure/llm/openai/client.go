// Package openai provides a MutationGenerator implementation using OpenAI.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
	"github.com/ersonp/rumor-mill/internal/domain/ports"
	"github.com/ersonp/rumor-mill/internal/infrastructure/config"
)

const mutationPrompt = `You retell rumors the way people do: imprecisely. Given a rumor, produce a single mutated retelling.

Rules:
- Keep the core subject recognizable.
- Introduce small distortions: hedging, exaggeration, vague sourcing, shifted details.
- The retelling MUST differ from the input.
- Return ONLY the retold rumor text, no quotes, no commentary.`

// Client implements the MutationGenerator interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI mutation client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Generate produces a mutated retelling of the rumor content.
func (c *Client) Generate(ctx context.Context, original string, mctx ports.MutationContext) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: mutationPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(original, mctx),
			},
		},
		Temperature: 0.9,
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	content := cleanResponse(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty mutation from OpenAI")
	}
	if content == original {
		return "", errors.New("mutation identical to original")
	}

	return content, nil
}

// buildUserPrompt renders the rumor plus whatever context is available.
func buildUserPrompt(original string, mctx ports.MutationContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rumor: %s\n", original)

	if mctx.Severity != "" {
		fmt.Fprintf(&b, "Severity: %s\n", mctx.Severity)
	}
	if len(mctx.Categories) > 0 {
		names := lo.Map(mctx.Categories, func(c entities.Category, _ int) string {
			return string(c)
		})
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(names, ", "))
	}

	return b.String()
}

// cleanResponse strips surrounding quotes and whitespace the model
// sometimes adds despite instructions.
func cleanResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.Trim(content, `"`)
	return strings.TrimSpace(content)
}
