// Package audio turns exercise text into audio bytes, preferring the remote
// dialect TTS service and degrading to a locally generated tone.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"lessonlab/pkg/model"
	"lessonlab/pkg/tracker"
	"lessonlab/pkg/tts"
	"lessonlab/pkg/tts/tone"
)

const (
	trackerLabel = "tone-synth"

	// DefaultContentType is used when the file extension gives no MIME type.
	DefaultContentType = "audio/wav"
)

func init() {
	// The builtin MIME table does not cover audio extensions.
	_ = mime.AddExtensionType(".wav", "audio/wav")
	_ = mime.AddExtensionType(".mp3", "audio/mpeg")
	_ = mime.AddExtensionType(".ogg", "audio/ogg")
	_ = mime.AddExtensionType(".flac", "audio/flac")
}

// Payload is the audio delivered to the caller.
type Payload struct {
	Bytes       []byte
	ContentType string
}

// Pipeline acquires audio for lesson sentences.
type Pipeline struct {
	handle  *tts.Handle
	tracker *tracker.Tracker
	timeout time.Duration

	synthesize func(text string) (string, error)
}

// New creates a Pipeline. timeout bounds each remote synthesis call; zero
// means no extra bound beyond the caller's context.
func New(handle *tts.Handle, t *tracker.Tracker, timeout time.Duration) *Pipeline {
	return &Pipeline{
		handle:     handle,
		tracker:    t,
		timeout:    timeout,
		synthesize: tone.Synthesize,
	}
}

// Acquire returns audio speaking text in the given dialect. Remote failures
// of any kind degrade to the placeholder tone; only local IO failures are
// returned as errors. Temporary files are removed before returning.
func (p *Pipeline) Acquire(ctx context.Context, text, dialect string) (Payload, error) {
	dialect = model.NormalizeDialect(dialect)

	src, temp := p.fetchRemote(ctx, text, dialect)
	if src == "" {
		if p.tracker != nil {
			p.tracker.TrackFallback(trackerLabel)
		}
		path, err := p.synthesize(text)
		if err != nil {
			return Payload{}, fmt.Errorf("failed to generate placeholder audio: %w", err)
		}
		src, temp = path, true
	}

	payload, err := readPayload(src)
	if temp {
		if rmErr := os.Remove(src); rmErr != nil {
			slog.Warn("Failed to remove temp audio file", "path", src, "error", rmErr)
		}
	}
	return payload, err
}

// fetchRemote asks the TTS service for audio, returning an empty path when
// anything along the way fails or the reported file does not exist locally.
func (p *Pipeline) fetchRemote(ctx context.Context, text, dialect string) (string, bool) {
	client, err := p.handle.Get(ctx)
	if err != nil {
		slog.Warn("TTS client unavailable, falling back to synth tone", "error", err)
		return "", false
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res, err := client.Synthesize(ctx, text, dialect)
	if err != nil {
		slog.Warn("TTS request failed, using fallback audio", "error", err)
		return "", false
	}

	if _, err := os.Stat(res.Path); err != nil {
		slog.Warn("TTS result file missing, using fallback audio", "path", res.Path, "error", err)
		return "", false
	}
	return res.Path, res.Temp
}

// readPayload loads an audio file and derives its MIME type from the
// extension, defaulting to WAV.
func readPayload(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read audio file: %w", err)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = DefaultContentType
	}
	return Payload{Bytes: data, ContentType: ct}, nil
}
