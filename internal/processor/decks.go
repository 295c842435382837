package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"codeberg.org/snonux/callical/internal/anki"
	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/flashcard"
)

// ListDecks prints one line per deck
func (p *Processor) ListDecks() error {
	store, err := p.getStore()
	if err != nil {
		return err
	}

	decks := store.Decks()
	if len(decks) == 0 {
		fmt.Fprintln(p.out, "No decks yet")
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCARDS\tUPDATED")
	for _, d := range decks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.Title, len(d.Cards), d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// CreateDeck creates an empty deck
func (p *Processor) CreateDeck(title string) error {
	store, err := p.getStore()
	if err != nil {
		return err
	}

	created := store.CreateDeck(title)
	fmt.Fprintf(p.out, "Created deck %q (%s)\n", created.Title, created.ID)
	return nil
}

// ShowDeck prints the cards of a deck
func (p *Processor) ShowDeck(deckID string) error {
	d, err := p.lookupDeck(deckID)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "%s (%d cards)\n", d.Title, len(d.Cards))
	for i, card := range d.Cards {
		fmt.Fprintf(p.out, "\n%d. [%s]\n   Q: %s\n   A: %s\n", i+1, card.ID, card.Question, card.Answer)
	}
	return nil
}

// RenameDeck changes the title of a deck
func (p *Processor) RenameDeck(deckID, title string) error {
	if _, err := p.lookupDeck(deckID); err != nil {
		return err
	}

	p.store.UpdateDeck(deckID, deck.DeckUpdate{Title: &title})
	fmt.Fprintf(p.out, "Renamed deck %s to %q\n", deckID, title)
	return nil
}

// DeleteDeck removes a deck and its cards
func (p *Processor) DeleteDeck(deckID string) error {
	d, err := p.lookupDeck(deckID)
	if err != nil {
		return err
	}

	p.store.DeleteDeck(deckID)
	fmt.Fprintf(p.out, "Deleted deck %q\n", d.Title)
	return nil
}

// AddCards appends the "question;answer" lines in text to a deck
func (p *Processor) AddCards(deckID, text string) error {
	if _, err := p.lookupDeck(deckID); err != nil {
		return err
	}

	cards := flashcard.Parse(text)
	if len(cards) == 0 {
		return fmt.Errorf("no cards found in input")
	}

	p.store.AddCards(deckID, cards)
	fmt.Fprintf(p.out, "Added %d cards\n", len(cards))
	return nil
}

// EditCard replaces the question and answer of a card
func (p *Processor) EditCard(deckID, cardID, question, answer string) error {
	d, err := p.lookupDeck(deckID)
	if err != nil {
		return err
	}
	if d.FindCard(cardID) < 0 {
		return fmt.Errorf("card not found: %s", cardID)
	}

	p.store.UpdateCard(deckID, cardID, question, answer)
	fmt.Fprintf(p.out, "Updated card %s\n", cardID)
	return nil
}

// DeleteCard removes a card from a deck
func (p *Processor) DeleteCard(deckID, cardID string) error {
	d, err := p.lookupDeck(deckID)
	if err != nil {
		return err
	}
	if d.FindCard(cardID) < 0 {
		return fmt.Errorf("card not found: %s", cardID)
	}

	p.store.DeleteCard(deckID, cardID)
	fmt.Fprintf(p.out, "Deleted card %s\n", cardID)
	return nil
}

// Export writes a deck as an Anki package, or as CSV with --csv, into the
// output directory and returns the written path
func (p *Processor) Export(deckID string) (string, error) {
	d, err := p.lookupDeck(deckID)
	if err != nil {
		return "", err
	}
	if len(d.Cards) == 0 {
		return "", fmt.Errorf("deck %q has no cards", d.Title)
	}

	if err := os.MkdirAll(p.flags.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(p.flags.OutputDir, anki.ExportFilename(d.Title, p.flags.CSV))

	gen := anki.NewGenerator(&anki.GeneratorOptions{
		OutputPath:     outputPath,
		IncludeHeaders: true,
	})
	gen.AddDeck(d)

	if p.flags.CSV {
		err = gen.GenerateCSV()
	} else {
		err = gen.GenerateAPKG(outputPath, d.Title)
	}
	if err != nil {
		return "", err
	}

	total, withoutAnswer := gen.Stats()
	fmt.Fprintf(p.out, "Exported %d cards to %s\n", total, outputPath)
	if withoutAnswer > 0 {
		fmt.Fprintf(p.out, "Note: %d cards have no answer\n", withoutAnswer)
	}
	return outputPath, nil
}

func (p *Processor) lookupDeck(deckID string) (deck.Deck, error) {
	store, err := p.getStore()
	if err != nil {
		return deck.Deck{}, err
	}

	d, ok := store.GetDeck(deckID)
	if !ok {
		return deck.Deck{}, fmt.Errorf("deck not found: %s", deckID)
	}
	return d, nil
}
