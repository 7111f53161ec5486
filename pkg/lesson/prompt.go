package lesson

import (
	"fmt"
	"strings"
)

// SystemPrompt keeps the model short-winded and on topic.
const SystemPrompt = "You are concise and stay on topic."

// maxReferenceLines bounds how much of the optional reference text is
// quoted into the prompt.
const maxReferenceLines = 6

// GenerationPrompt builds the user prompt for one sentence batch. The
// optional bookText contributes at most maxReferenceLines non-blank
// lines as reference material.
func GenerationPrompt(topic, bookText string, count int) string {
	sampleText := ""
	if bookText != "" {
		var stripped []string
		for _, line := range strings.Split(bookText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			stripped = append(stripped, line)
			if len(stripped) == maxReferenceLines {
				break
			}
		}
		if len(stripped) > 0 {
			sampleText = "\n\nOptional reference (Swiss German):\n" + strings.Join(stripped, "\n")
		}
	}

	topicPiece := strings.TrimSpace(topic)
	if topicPiece == "" {
		topicPiece = "Alltag"
	}

	return fmt.Sprintf(
		"You are a friendly Swiss German language app. "+
			"Write %d short sentences in Züridütsch (Zürich dialect) about the given topic. "+
			"Each sentence must be about the topic and written fully in Swiss German (no labels). "+
			"Also provide a clear English translation for each sentence. "+
			"Return a JSON array of objects with keys 'swiss_sentence' and 'reference_translation'.\n\n"+
			"Topic: %s%s",
		count, topicPiece, sampleText)
}
