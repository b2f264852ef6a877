package mocks

import (
	"context"

	"github.com/ersonp/rumor-mill/internal/domain/ports"
)

// MutationGenerator is a mock implementation of ports.MutationGenerator.
type MutationGenerator struct {
	// Content is returned verbatim when set; otherwise the original
	// content with Suffix appended.
	Content string
	Suffix  string
	Err     error

	Calls []ports.MutationContext
}

// Generate returns the configured content or error.
func (m *MutationGenerator) Generate(_ context.Context, original string, mctx ports.MutationContext) (string, error) {
	m.Calls = append(m.Calls, mctx)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Content != "" {
		return m.Content, nil
	}
	return original + m.Suffix, nil
}
