package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lessonlab/pkg/model"
	"lessonlab/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, lessonH *LessonHandler, audioH *AudioHandler, stats *StatsHandler, staticDir string, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2b. Dialects Endpoint
	mux.HandleFunc("GET /api/dialects", handleDialects)

	// 2c. Stats Endpoint
	mux.Handle("GET /api/stats", stats)

	// 3. Lesson Endpoint
	mux.HandleFunc("POST /api/lesson", lessonH.HandleLesson)

	// 4. Audio Endpoint
	mux.HandleFunc("POST /api/audio", audioH.HandleAudio)

	// 5. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// 6. Static Frontend Serving (SPA)
	if fs := newSPAHandler(staticDir); fs != nil {
		mux.Handle("/", fs)
	}

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

// DialectsResponse lists the dialects the TTS service can speak.
type DialectsResponse struct {
	Dialects []string `json:"dialects"`
	Default  string   `json:"default"`
}

func handleDialects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, DialectsResponse{
		Dialects: model.Dialects,
		Default:  model.DefaultDialect,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
