package tts

import (
	"context"
	"errors"
)

// ErrClientUnavailable indicates that no remote TTS client could be
// constructed. Callers are expected to fall back to locally generated audio.
var ErrClientUnavailable = errors.New("tts client unavailable")

// Client defines the interface for remote Text-To-Speech services.
type Client interface {
	// Synthesize generates audio for text in the given dialect and returns
	// a local file holding the result.
	Synthesize(ctx context.Context, text, dialect string) (Result, error)
}

// Result describes a synthesized audio file on the local filesystem.
type Result struct {
	// Path is the location of the audio file.
	Path string
	// Temp marks files that were materialized for this request and must be
	// removed once their contents have been consumed.
	Temp bool
}

// Factory constructs a Client. The verify flag controls TLS certificate
// verification for the connection probe performed during construction.
type Factory func(ctx context.Context, verify bool) (Client, error)
