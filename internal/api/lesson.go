package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"lessonlab/pkg/model"
)

// minTopicLength is the shortest topic accepted for lesson generation.
const minTopicLength = 3

// ExerciseBuilder assembles a fixed-size set of exercises for a topic.
type ExerciseBuilder interface {
	BuildExercises(ctx context.Context, topic, bookText, dialect string) []model.Exercise
}

// LessonHandler handles lesson generation requests.
type LessonHandler struct {
	builder ExerciseBuilder
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(b ExerciseBuilder) *LessonHandler {
	return &LessonHandler{builder: b}
}

// LessonRequest is the payload for POST /api/lesson.
type LessonRequest struct {
	Topic    string `json:"topic"`
	Dialect  string `json:"dialect"`
	BookText string `json:"book_text"`
}

// LessonResponse carries a generated lesson.
type LessonResponse struct {
	Topic     string           `json:"topic"`
	Dialect   string           `json:"dialect"`
	Exercises []model.Exercise `json:"exercises"`
}

// HandleLesson handles POST /api/lesson.
func (h *LessonHandler) HandleLesson(w http.ResponseWriter, r *http.Request) {
	var req LessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("API: HandleLesson decode error", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len([]rune(req.Topic)) < minTopicLength {
		http.Error(w, "topic must be at least 3 characters", http.StatusBadRequest)
		return
	}

	dialect := model.NormalizeDialect(req.Dialect)
	exercises := h.builder.BuildExercises(r.Context(), req.Topic, req.BookText, dialect)

	slog.Info("Lesson generated", "topic", req.Topic, "dialect", dialect, "exercises", len(exercises))
	writeJSON(w, LessonResponse{
		Topic:     req.Topic,
		Dialect:   dialect,
		Exercises: exercises,
	})
}
