package llm

import (
	"context"
	"sync/atomic"
)

// MockProvider is a canned-response Provider for development and tests.
type MockProvider struct {
	Response string
	Err      error
	calls    int64
}

// NewMockProvider returns a provider that always answers with response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

func (m *MockProvider) GenerateChat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	atomic.AddInt64(&m.calls, 1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls reports how many times GenerateChat was invoked.
func (m *MockProvider) Calls() int64 {
	return atomic.LoadInt64(&m.calls)
}
