package lesson

import (
	"context"
	"fmt"
	"strings"

	"lessonlab/pkg/model"
)

// fallbackTranslation is the English side of every placeholder pair.
const fallbackTranslation = "Need more topic details to generate a sentence."

// Builder assembles complete lessons from cached sentence batches.
type Builder struct {
	cache *BatchCache
	count int
}

// NewBuilder creates a Builder producing count exercises per lesson.
func NewBuilder(cache *BatchCache, count int) *Builder {
	return &Builder{cache: cache, count: count}
}

// BuildExercises returns exactly b.count exercises with ids 1..count.
// Batch entries fill exercises in order; missing entries degrade to a
// deterministic placeholder pair. The call never fails.
func (b *Builder) BuildExercises(ctx context.Context, topic, bookText, dialect string) []model.Exercise {
	dialect = model.NormalizeDialect(dialect)
	batch := b.cache.Get(ctx, topic, bookText)

	hint := fmt.Sprintf("Translate this %s dialect sentence into English.", dialect)

	exercises := make([]model.Exercise, 0, b.count)
	for idx := 0; idx < b.count; idx++ {
		pair := placeholderPair(topic)
		if idx < len(batch) {
			pair = batch[idx]
		}
		exercises = append(exercises, model.Exercise{
			ID:                   idx + 1,
			SwissSentence:        pair.SwissSentence,
			TranslationHint:      hint,
			ReferenceTranslation: pair.ReferenceTranslation,
		})
	}
	return exercises
}

// placeholderPair is the deterministic stand-in used when the batch has
// no entry for an exercise slot. It references the raw topic and is
// never cached.
func placeholderPair(topic string) model.SentencePair {
	topicPiece := strings.TrimSpace(topic)
	if topicPiece == "" {
		topicPiece = "dini Idee"
	}
	return model.SentencePair{
		SwissSentence:        fmt.Sprintf("Mir bruuche meh Infos zum Thema %s, drum probier s Sätzli nomol.", topicPiece),
		ReferenceTranslation: fallbackTranslation,
	}
}
