package anki

import (
	"encoding/csv"
	"fmt"
	"os"

	"codeberg.org/snonux/callical/internal"
	"codeberg.org/snonux/callical/internal/deck"
)

// Card represents a single Anki flashcard
type Card struct {
	ID       string // Stable id, used for the note guid
	Question string
	Answer   string
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Include CSV headers
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		IncludeHeaders: true,
	}
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
	}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// AddDeck adds all cards of a deck in order
func (g *Generator) AddDeck(d deck.Deck) {
	for _, c := range d.Cards {
		g.AddCard(Card{ID: c.ID, Question: c.Question, Answer: c.Answer})
	}
}

// GetCards returns a slice of all cards for modification
func (g *Generator) GetCards() []Card {
	return g.cards
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if g.options.IncludeHeaders {
		if err := writer.Write([]string{"Question", "Answer"}); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		if err := writer.Write([]string{card.Question, card.Answer}); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// GenerateAPKG creates a proper .apkg file for Anki import
func (g *Generator) GenerateAPKG(outputPath, deckName string) error {
	apkgGen := NewAPKGGenerator(deckName)

	for _, card := range g.cards {
		apkgGen.AddCard(card)
	}

	return apkgGen.GenerateAPKG(outputPath)
}

// Stats returns the number of cards and of cards without an answer
func (g *Generator) Stats() (totalCards, withoutAnswer int) {
	totalCards = len(g.cards)
	for _, card := range g.cards {
		if card.Answer == "" {
			withoutAnswer++
		}
	}
	return
}

// ExportFilename returns a file name for a deck export
func ExportFilename(title string, csvFormat bool) string {
	name := internal.SanitizeFilename(title)
	if name == "" {
		name = "deck"
	}
	if csvFormat {
		return name + ".csv"
	}
	return name + ".apkg"
}
