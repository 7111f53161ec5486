package lesson

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lessonlab/pkg/llm"
)

func newTestBuilder(t *testing.T, provider llm.Provider) *Builder {
	t.Helper()
	return NewBuilder(newTestCache(t, provider, 24), 6)
}

func TestBuildExercisesFullBatch(t *testing.T) {
	raw := `[
		{"swiss_sentence": "eis", "reference_translation": "one"},
		{"swiss_sentence": "zwei", "reference_translation": "two"},
		{"swiss_sentence": "drü", "reference_translation": "three"},
		{"swiss_sentence": "vier", "reference_translation": "four"},
		{"swiss_sentence": "föif", "reference_translation": "five"},
		{"swiss_sentence": "sächs", "reference_translation": "six"}
	]`
	b := newTestBuilder(t, llm.NewMockProvider(raw))

	exercises := b.BuildExercises(context.Background(), "Zahle", "", "Bern")

	if len(exercises) != 6 {
		t.Fatalf("expected 6 exercises, got %d", len(exercises))
	}
	for i, ex := range exercises {
		if ex.ID != i+1 {
			t.Errorf("exercise %d has id %d, want %d", i, ex.ID, i+1)
		}
		if ex.TranslationHint != "Translate this Bern dialect sentence into English." {
			t.Errorf("unexpected hint: %s", ex.TranslationHint)
		}
	}
	if exercises[0].SwissSentence != "eis" || exercises[5].SwissSentence != "sächs" {
		t.Errorf("batch order not preserved: %+v", exercises)
	}
}

func TestBuildExercisesPadsShortBatch(t *testing.T) {
	raw := `[{"swiss_sentence": "eis", "reference_translation": "one"}]`
	b := newTestBuilder(t, llm.NewMockProvider(raw))

	exercises := b.BuildExercises(context.Background(), "Zahle", "", "Zürich")

	if len(exercises) != 6 {
		t.Fatalf("expected 6 exercises, got %d", len(exercises))
	}
	if exercises[0].SwissSentence != "eis" {
		t.Errorf("first exercise should come from batch, got %q", exercises[0].SwissSentence)
	}
	for _, ex := range exercises[1:] {
		if !strings.Contains(ex.SwissSentence, "Zahle") {
			t.Errorf("placeholder should reference the topic: %q", ex.SwissSentence)
		}
		if ex.ReferenceTranslation != fallbackTranslation {
			t.Errorf("unexpected placeholder translation: %q", ex.ReferenceTranslation)
		}
	}
}

func TestBuildExercisesUpstreamFailure(t *testing.T) {
	provider := llm.NewMockProvider("")
	provider.Err = errors.New("llm down")
	b := newTestBuilder(t, provider)

	exercises := b.BuildExercises(context.Background(), "Wätter", "", "Luzern")

	if len(exercises) != 6 {
		t.Fatalf("expected 6 exercises despite failure, got %d", len(exercises))
	}
	for i, ex := range exercises {
		if ex.ID != i+1 {
			t.Errorf("ids must stay 1..6, got %d at %d", ex.ID, i)
		}
		if ex.SwissSentence == "" || ex.ReferenceTranslation == "" {
			t.Errorf("placeholder fields must be non-empty: %+v", ex)
		}
	}
}

func TestBuildExercisesNormalizesDialect(t *testing.T) {
	b := newTestBuilder(t, llm.NewMockProvider("[]"))

	exercises := b.BuildExercises(context.Background(), "Ässe", "", "Elbonian")
	if exercises[0].TranslationHint != "Translate this Zürich dialect sentence into English." {
		t.Errorf("unknown dialect should normalize to Zürich: %s", exercises[0].TranslationHint)
	}
}

func TestPlaceholderPairBlankTopic(t *testing.T) {
	pair := placeholderPair("   ")
	if !strings.Contains(pair.SwissSentence, "dini Idee") {
		t.Errorf("blank topic should fall back to 'dini Idee': %q", pair.SwissSentence)
	}
}
