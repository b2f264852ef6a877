package mocks

import "context"

// Embedder is a mock implementation of ports.Embedder.
type Embedder struct {
	Vector []float32
	Err    error
}

// Embed returns the configured vector or error.
func (m *Embedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}
