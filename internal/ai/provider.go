// Package ai provides the LLM client behind the resume matching, cover
// letter, and skill gap features. The Provider interface isolates handlers
// from the HTTP details so tests can substitute a canned implementation.
package ai

import (
	"context"
)

// Provider is the interface the AI handlers depend on.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the generated text.
	// temperature controls sampling: low for structured JSON output, higher
	// for prose like cover letters.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)

	// Name returns the provider identifier (e.g., "openai").
	Name() string
}

// ProviderConfig holds the credentials and settings for a provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}
