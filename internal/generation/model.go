package generation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey is returned by NewModel when the provider has no credential
var ErrMissingAPIKey = errors.New("API key is required")

// Model sends a generation request to a language model
type Model interface {
	// Complete returns the raw text answer of the model
	Complete(ctx context.Context, req *Request) (string, error)

	// Name returns the provider name
	Name() string
}

// ModelConfig selects and configures a model backend
type ModelConfig struct {
	Provider string // "openai" or "gemini"

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string // optional, for proxies and tests

	GeminiKey   string
	GeminiModel string

	Temperature float32

	// Circuit breaker around the model; zero values use the defaults
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// DefaultModelConfig returns the default configuration
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		Provider:           "openai",
		OpenAIModel:        "chatgpt-4o-latest",
		GeminiModel:        "gemini-2.0-flash",
		Temperature:        0.3,
		BreakerMaxFailures: 5,
		BreakerTimeout:     60 * time.Second,
	}
}

// NewModel creates the model for the configured provider, wrapped in a
// circuit breaker
func NewModel(ctx context.Context, config *ModelConfig) (Model, error) {
	if config == nil {
		config = DefaultModelConfig()
	}

	var (
		model Model
		err   error
	)

	switch config.Provider {
	case "", "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI %w", ErrMissingAPIKey)
		}
		model = NewOpenAIModel(config)

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini %w", ErrMissingAPIKey)
		}
		model, err = NewGeminiModel(ctx, config)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown generation provider: %s", config.Provider)
	}

	return NewBreakerModel(model, config.BreakerMaxFailures, config.BreakerTimeout), nil
}
