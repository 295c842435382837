package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// relevantLimit caps the chat model listing before it is filtered down
const relevantLimit = 10

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewListerWithConfig creates a model lister. An empty baseURL uses the
// OpenAI API.
func NewListerWithConfig(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// ChatModels returns the sorted ids of all chat capable models
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .callical.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chatModels []string
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			chatModels = append(chatModels, model.ID)
		}
	}
	sort.Strings(chatModels)

	return chatModels, nil
}

// ListAvailableModels writes the chat models usable for flashcard generation
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	chatModels, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Chat Models (for flashcard generation):")
	if len(chatModels) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}

	if len(chatModels) <= relevantLimit {
		for _, model := range chatModels {
			fmt.Fprintf(w, "  %s\n", model)
		}
		return nil
	}

	// Show only relevant models
	shown := 0
	for _, model := range chatModels {
		if strings.Contains(model, "gpt-4") || strings.Contains(model, "chatgpt") {
			fmt.Fprintf(w, "  %s\n", model)
			shown++
		}
	}
	fmt.Fprintf(w, "  ... and %d more models\n", len(chatModels)-shown)

	return nil
}

func isChatModel(id string) bool {
	for _, skip := range []string{"tts", "audio", "realtime", "transcribe", "embedding", "dall-e", "whisper"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return strings.Contains(id, "gpt") || strings.Contains(id, "chat")
}
