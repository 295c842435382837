package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiModel generates cards with the Gemini API
type GeminiModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiModel creates a Gemini backed model
func NewGeminiModel(ctx context.Context, config *ModelConfig) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.GeminiModel
	if model == "" {
		model = DefaultModelConfig().GeminiModel
	}

	return &GeminiModel{
		client:      client,
		model:       model,
		temperature: config.Temperature,
	}, nil
}

// Name returns the provider name
func (m *GeminiModel) Name() string {
	return "gemini"
}

// Complete sends the request with the system prompt as system instruction
func (m *GeminiModel) Complete(ctx context.Context, req *Request) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(m.temperature),
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, toGeminiContents(req.Parts), config)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return resp.Text(), nil
}

func toGeminiContents(parts []Part) []*genai.Content {
	geminiParts := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			geminiParts = append(geminiParts, genai.NewPartFromText(p.Text))
		case ImagePart:
			geminiParts = append(geminiParts, genai.NewPartFromBytes(p.Data, p.MIMEType))
		}
	}
	return []*genai.Content{genai.NewContentFromParts(geminiParts, genai.RoleUser)}
}
