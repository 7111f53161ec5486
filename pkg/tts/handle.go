package tts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handle lazily constructs a remote TTS client and memoizes it for the
// lifetime of the process. Construction failures are never cached, so a
// service that comes up later is picked up on the next request.
type Handle struct {
	mu      sync.Mutex
	client  Client
	factory Factory
	verify  bool
}

// NewHandle creates a Handle around factory. When verify is true the first
// construction attempt verifies TLS certificates; if that attempt fails, a
// second attempt without verification is made before giving up.
func NewHandle(factory Factory, verify bool) *Handle {
	return &Handle{factory: factory, verify: verify}
}

// Get returns the memoized client, constructing it on first use. Concurrent
// callers serialize on construction so the factory runs at most once per
// successful client. On failure Get returns an error wrapping
// ErrClientUnavailable.
func (h *Handle) Get(ctx context.Context) (Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		return h.client, nil
	}

	client, err := h.factory(ctx, h.verify)
	if err != nil && h.verify {
		slog.Warn("TTS client construction failed with TLS verification, retrying without", "error", err)
		client, err = h.factory(ctx, false)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientUnavailable, err)
	}

	h.client = client
	return h.client, nil
}
