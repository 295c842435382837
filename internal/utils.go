package internal

import (
	"unicode"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque identifier for decks and cards
func NewID() string {
	return uuid.NewString()
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
