package flashcard

import (
	"regexp"
	"strings"
)

// Card is a generated question/answer pair that has not been stored yet
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var lineBreaks = regexp.MustCompile(`\n+`)

// Parse splits generated text into cards, one per non-blank line.
// A line is split at the first ';', or at the first tab when the line
// has no ';'. Lines without a delimiter become questions with an empty
// answer. Empty input yields an empty slice.
func Parse(text string) []Card {
	cards := []Card{}

	for _, line := range lineBreaks.Split(strings.TrimSpace(text), -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cards = append(cards, parseLine(line))
	}

	return cards
}

func parseLine(line string) Card {
	sep := "\t"
	if strings.Contains(line, ";") {
		sep = ";"
	}

	question, answer, found := strings.Cut(line, sep)
	if !found {
		return Card{Question: line}
	}

	return Card{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	}
}

// Format renders cards back into the line format accepted by Parse
func Format(cards []Card) string {
	var sb strings.Builder
	for _, card := range cards {
		sb.WriteString(card.Question)
		sb.WriteString(";")
		sb.WriteString(card.Answer)
		sb.WriteString("\n")
	}
	return sb.String()
}
