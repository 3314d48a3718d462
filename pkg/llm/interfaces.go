// Package llm provides text-generation clients for requirement extraction.
package llm

import "context"

// Client defines the interface for text-generation operations.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete generates a completion for the prompt under the given
	// system message.
	Complete(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string

	// Provider returns the provider identifier ("openai", "anthropic", ...).
	Provider() string
}
