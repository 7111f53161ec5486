package llm

import (
	"context"
)

// Provider defines the interface for interacting with LLM services.
// Implementations make exactly one upstream call per invocation; all
// memoization lives with the caller.
type Provider interface {
	// GenerateChat sends a system and user prompt and returns the raw
	// text response.
	GenerateChat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
