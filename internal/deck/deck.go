package deck

import (
	"time"
)

// DefaultTitle is used when a deck is created with a blank title
const DefaultTitle = "Untitled Deck"

// Card is a flashcard inside a deck
type Card struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Deck is a named, ordered collection of cards
type Deck struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeckUpdate lists the fields UpdateDeck replaces. Nil fields are kept.
type DeckUpdate struct {
	Title *string
	Cards *[]Card
}

// FindCard returns the index of the card with the given id, or -1
func (d *Deck) FindCard(cardID string) int {
	for i := range d.Cards {
		if d.Cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

func (d Deck) clone() Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	d.Cards = cards
	return d
}

func cloneDecks(decks []Deck) []Deck {
	result := make([]Deck, len(decks))
	for i := range decks {
		result[i] = decks[i].clone()
	}
	return result
}

func findDeck(decks []Deck, id string) int {
	for i := range decks {
		if decks[i].ID == id {
			return i
		}
	}
	return -1
}
