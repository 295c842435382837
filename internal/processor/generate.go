package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal/batch"
	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/flashcard"
	"codeberg.org/snonux/callical/internal/generation"
)

// Generate creates cards from the --text material and the given files.
// With --save the cards go into a new deck, otherwise they are printed
// as "question;answer" lines.
func (p *Processor) Generate(ctx context.Context, paths []string) error {
	if p.flags.BatchFile != "" {
		return p.ProcessBatch(ctx)
	}

	attachments, err := readAttachments(paths)
	if err != nil {
		return err
	}

	cards, err := p.generateCards(ctx, p.flags.Text, attachments)
	if err != nil {
		return err
	}

	if !p.flags.Save {
		fmt.Fprint(p.out, flashcard.Format(cards))
		return nil
	}

	created, err := p.saveGenerated(p.flags.Title, cards)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Created deck %q (%s) with %d cards\n", created.Title, created.ID, len(created.Cards))
	return nil
}

// ProcessBatch generates one deck per entry of the --batch file. Failing
// entries are reported and skipped.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}

	processedCount := 0
	errorCount := 0

	for i, entry := range entries {
		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), filepath.Base(entry.Path))

		if err := p.processEntry(ctx, entry); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing '%s': %v\n", entry.Path, err)
			errorCount++
			if ctx.Err() != nil {
				break
			}
			continue
		}
		processedCount++
	}

	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total files: %d\n", len(entries))
	fmt.Fprintf(p.out, "Processed: %d\n", processedCount)
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
		return fmt.Errorf("%d of %d batch entries failed", errorCount, len(entries))
	}

	return nil
}

func (p *Processor) processEntry(ctx context.Context, entry batch.Entry) error {
	attachments, err := readAttachments([]string{entry.Path})
	if err != nil {
		return err
	}

	cards, err := p.generateCards(ctx, "", attachments)
	if err != nil {
		return err
	}

	created, err := p.saveGenerated(entry.Title, cards)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "  ✓ Created deck %q with %d cards\n", created.Title, len(created.Cards))
	return nil
}

func (p *Processor) generateCards(ctx context.Context, text string, attachments []generation.Attachment) ([]flashcard.Card, error) {
	service, err := p.getService(ctx)
	if err != nil {
		return nil, err
	}

	logger := p.getLogger()
	logger.Debug("Generating flashcards",
		zap.Int("attachments", len(attachments)),
		zap.String("model", service.ModelName()),
	)

	cards, err := service.Generate(ctx, text, attachments)
	if err != nil {
		var genErr *generation.Error
		if errors.As(err, &genErr) && genErr.Err != nil {
			logger.Debug("Generation failed", zap.String("kind", genErr.Kind.String()), zap.Error(genErr.Err))
		}
		return nil, err
	}

	return cards, nil
}

func (p *Processor) saveGenerated(title string, cards []flashcard.Card) (deck.Deck, error) {
	store, err := p.getStore()
	if err != nil {
		return deck.Deck{}, err
	}

	created, ok := deck.CreateFromGenerated(store, title, cards)
	if !ok {
		return deck.Deck{}, errors.New(generation.MsgNoCards)
	}
	return created, nil
}

// readAttachments loads material files. The content type is sniffed so
// images are recognised even without a known extension.
func readAttachments(paths []string) ([]generation.Attachment, error) {
	attachments := make([]generation.Attachment, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read material: %w", err)
		}
		attachments = append(attachments, generation.Attachment{
			Filename:    filepath.Base(path),
			ContentType: http.DetectContentType(data),
			Data:        data,
		})
	}
	return attachments, nil
}

// Parse reads "question;answer" lines from r and prints the cards as JSON
func (p *Processor) Parse(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	cards := flashcard.Parse(string(data))

	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cards)
}

// Concepts prints the key sentences of the material read from r
func (p *Processor) Concepts(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintln(p.out, flashcard.ExtractKeyConcepts(string(data)))
	return nil
}
