package generation

import (
	"context"
	"errors"

	"codeberg.org/snonux/callical/internal/flashcard"
)

// ServiceConfig configures a Service
type ServiceConfig struct {
	// Model is nil when no credential is configured
	Model Model

	// UnavailableMessage is reported while Model is nil
	UnavailableMessage string
}

// Service runs one generation per call: build the request, invoke the
// model once, interpret the answer. Nothing is retried and there is no
// partial success.
type Service struct {
	model              Model
	unavailableMessage string
}

// NewService creates a generation service
func NewService(config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	msg := config.UnavailableMessage
	if msg == "" {
		msg = "OPENAI_API_KEY is not configured"
	}

	return &Service{
		model:              config.Model,
		unavailableMessage: msg,
	}
}

// Ready reports a ServiceUnavailable error when no model is configured.
// Callers check it before reading any request input.
func (s *Service) Ready() error {
	if s.model == nil {
		return &Error{Kind: KindServiceUnavailable, Message: s.unavailableMessage}
	}
	return nil
}

// ModelName returns the configured provider, or "" when unconfigured
func (s *Service) ModelName() string {
	if s.model == nil {
		return ""
	}
	return s.model.Name()
}

// Generate turns text and attachments into cards
func (s *Service) Generate(ctx context.Context, text string, attachments []Attachment) ([]flashcard.Card, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	req, err := BuildRequest(text, attachments)
	if err != nil {
		if errors.Is(err, ErrEmptyMaterial) {
			return nil, &Error{Kind: KindBadRequest, Message: MsgNoInput, Err: err}
		}
		return nil, NewBadRequest(err)
	}

	content, err := s.model.Complete(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindGenerationFailed, Message: MsgGenerationError, Err: err}
	}

	return Interpret(content)
}

// Interpret converts a raw model answer into cards. The invalid-input
// sentinel and answers without any card are reported as errors.
func Interpret(content string) ([]flashcard.Card, error) {
	if IsInvalidInputSignal(content) {
		return nil, &Error{Kind: KindInvalidInput, Message: MsgInvalidInput}
	}

	cards := flashcard.Parse(content)
	if len(cards) == 0 {
		return nil, &Error{Kind: KindUnprocessableContent, Message: MsgNoCards}
	}

	return cards, nil
}
