package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"lessonlab/pkg/audio"
)

// AudioProvider produces audio bytes for a sentence.
type AudioProvider interface {
	Acquire(ctx context.Context, text, dialect string) (audio.Payload, error)
}

// AudioHandler handles audio synthesis requests.
type AudioHandler struct {
	pipeline AudioProvider
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(p AudioProvider) *AudioHandler {
	return &AudioHandler{pipeline: p}
}

// AudioRequest is the payload for POST /api/audio.
type AudioRequest struct {
	Text    string `json:"text"`
	Dialect string `json:"dialect"`
}

// AudioResponse carries base64-encoded audio.
type AudioResponse struct {
	AudioBase64 string `json:"audio_base64"`
	ContentType string `json:"content_type"`
}

// HandleAudio handles POST /api/audio.
func (h *AudioHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	var req AudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("API: HandleAudio decode error", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	payload, err := h.pipeline.Acquire(r.Context(), req.Text, req.Dialect)
	if err != nil {
		slog.Error("API: audio acquisition failed", "error", err)
		http.Error(w, "failed to produce audio", http.StatusInternalServerError)
		return
	}

	writeJSON(w, AudioResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(payload.Bytes),
		ContentType: payload.ContentType,
	})
}
