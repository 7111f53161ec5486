package lesson

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"lessonlab/pkg/llm"
	"lessonlab/pkg/model"
)

// Generator produces one validated sentence batch per call via the
// configured LLM provider. It never returns an error: any upstream or
// parse failure degrades to an empty batch, which the caller may cache.
type Generator struct {
	provider  llm.Provider
	batchSize int
}

// NewGenerator creates a Generator asking for batchSize sentences per call.
func NewGenerator(provider llm.Provider, batchSize int) *Generator {
	return &Generator{provider: provider, batchSize: batchSize}
}

// Generate performs exactly one upstream call and returns the validated
// batch. An empty (possibly nil) slice means generation failed or
// produced nothing usable.
func (g *Generator) Generate(ctx context.Context, topic, bookText string) []model.SentencePair {
	prompt := GenerationPrompt(topic, bookText, g.batchSize)

	raw, err := g.provider.GenerateChat(ctx, SystemPrompt, prompt)
	if err != nil {
		slog.Warn("Sentence generation failed, using empty batch", "topic", topic, "error", err)
		return nil
	}

	pairs := parseBatch(raw)
	if len(pairs) == 0 {
		slog.Warn("Unable to parse LLM sentence batch, using empty batch", "topic", topic)
	}
	return pairs
}

// parseBatch parses the model response as a JSON array of sentence
// pairs. Entries that are not objects, fail to decode, or carry empty
// fields after trimming are silently dropped.
func parseBatch(raw string) []model.SentencePair {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil
	}

	var pairs []model.SentencePair
	for _, entry := range entries {
		var p model.SentencePair
		if err := json.Unmarshal(entry, &p); err != nil {
			continue
		}
		p.SwissSentence = strings.TrimSpace(p.SwissSentence)
		p.ReferenceTranslation = strings.TrimSpace(p.ReferenceTranslation)
		if p.SwissSentence == "" || p.ReferenceTranslation == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}
