package generation

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIModel generates cards with the OpenAI chat completion API
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIModel creates an OpenAI backed model
func NewOpenAIModel(config *ModelConfig) *OpenAIModel {
	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	model := config.OpenAIModel
	if model == "" {
		model = DefaultModelConfig().OpenAIModel
	}

	return &OpenAIModel{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: config.Temperature,
	}
}

// Name returns the provider name
func (m *OpenAIModel) Name() string {
	return "openai"
}

// Complete sends the request as one system and one multimodal user message
func (m *OpenAIModel) Complete(ctx context.Context, req *Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: toOpenAIParts(req.Parts),
			},
		},
		Temperature: m.temperature,
	}

	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIParts(parts []Part) []openai.ChatMessagePart {
	result := make([]openai.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			result = append(result, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case ImagePart:
			result = append(result, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    p.DataURL(),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}
	return result
}
