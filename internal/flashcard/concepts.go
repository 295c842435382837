package flashcard

import (
	"regexp"
	"strings"
)

const (
	maxConcepts      = 5
	conceptsFallback = 500
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// ExtractKeyConcepts condenses learning material to its first few
// sentences, one per line. When no sentence can be found it falls back
// to the beginning of the text.
func ExtractKeyConcepts(text string) string {
	var sentences []string
	for _, s := range sentenceEnd.Split(strings.TrimSpace(text), -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
		if len(sentences) == maxConcepts {
			break
		}
	}

	if len(sentences) > 0 {
		return strings.Join(sentences, "\n")
	}

	runes := []rune(text)
	if len(runes) > conceptsFallback {
		runes = runes[:conceptsFallback]
	}
	return string(runes)
}
