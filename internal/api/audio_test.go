package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lessonlab/pkg/audio"
)

type stubPipeline struct {
	payload    audio.Payload
	err        error
	gotText    string
	gotDialect string
}

func (s *stubPipeline) Acquire(ctx context.Context, text, dialect string) (audio.Payload, error) {
	s.gotText = text
	s.gotDialect = dialect
	return s.payload, s.err
}

func postAudio(t *testing.T, h *AudioHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/audio", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleAudio(rec, req)
	return rec
}

func TestHandleAudio(t *testing.T) {
	pipe := &stubPipeline{payload: audio.Payload{Bytes: []byte("wav-bytes"), ContentType: "audio/wav"}}
	h := NewAudioHandler(pipe)

	rec := postAudio(t, h, `{"text":"Grüezi","dialect":"Bern"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp AudioResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ContentType != "audio/wav" {
		t.Errorf("content_type = %q, want audio/wav", resp.ContentType)
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		t.Fatalf("decoding audio_base64: %v", err)
	}
	if string(decoded) != "wav-bytes" {
		t.Errorf("decoded audio = %q, want wav-bytes", decoded)
	}
	if pipe.gotText != "Grüezi" || pipe.gotDialect != "Bern" {
		t.Errorf("pipeline got %q/%q", pipe.gotText, pipe.gotDialect)
	}
}

func TestHandleAudioRequiresText(t *testing.T) {
	rec := postAudio(t, NewAudioHandler(&stubPipeline{}), `{"dialect":"Bern"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAudioPipelineFailure(t *testing.T) {
	pipe := &stubPipeline{err: errors.New("disk full")}
	rec := postAudio(t, NewAudioHandler(pipe), `{"text":"Hoi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
