package deck

import (
	"strings"

	"codeberg.org/snonux/callical/internal/flashcard"
)

// GeneratedTitle is the title of a deck created from generated cards
const GeneratedTitle = "New deck"

// CreateFromGenerated stores generated cards in a new deck. Cards with a
// blank question and answer are dropped and the rest are trimmed. No deck
// is created when nothing remains.
func CreateFromGenerated(store *Store, title string, cards []flashcard.Card) (Deck, bool) {
	kept := make([]flashcard.Card, 0, len(cards))
	for _, c := range cards {
		q := strings.TrimSpace(c.Question)
		a := strings.TrimSpace(c.Answer)
		if q == "" && a == "" {
			continue
		}
		kept = append(kept, flashcard.Card{Question: q, Answer: a})
	}
	if len(kept) == 0 {
		return Deck{}, false
	}

	if strings.TrimSpace(title) == "" {
		title = GeneratedTitle
	}

	created := store.CreateDeck(title)
	store.AddCards(created.ID, kept)
	return store.GetDeck(created.ID)
}
