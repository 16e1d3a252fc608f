// Package providers contains the thin adapters for the two model backends:
// a local OpenAI-compatible endpoint and the Gemini API.
package providers

import "context"

// Provider is the minimal chat surface the brain and router depend on.
type Provider interface {
	// Chat sends a system prompt and user prompt and returns plain text.
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// StructuredProvider produces schema-constrained JSON output. Used by the
// router's planning tier so parse failures stay local and recoverable.
type StructuredProvider interface {
	ChatStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]any) (string, error)
}

// Embedder turns text into a dense vector for similarity recall.
type Embedder interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}
