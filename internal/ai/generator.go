package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelNotFound marks a generation failure caused by the requested model
// identifier not existing at the provider. It is the only error class the
// fallback chain advances past; quota, network and malformed-response errors
// abort the whole attempt.
var ErrModelNotFound = errors.New("model not found")

// Generator produces free text for a prompt against one model identifier.
type Generator interface {
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chain tries an ordered list of generators, advancing to the next entry only
// on ErrModelNotFound. Any other error aborts immediately.
type Chain struct {
	generators []Generator
}

// NewChain builds a chain over the given generators in priority order.
func NewChain(generators ...Generator) *Chain {
	return &Chain{generators: generators}
}

// Model returns the identifier of the first generator in the chain.
func (c *Chain) Model() string {
	if len(c.generators) == 0 {
		return ""
	}
	return c.generators[0].Model()
}

// Generate runs the fallback chain.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	if len(c.generators) == 0 {
		return "", fmt.Errorf("no generators configured: %w", ErrModelNotFound)
	}
	var lastErr error
	for _, g := range c.generators {
		out, err := g.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrModelNotFound) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("all models exhausted: %w", lastErr)
}
