package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/generation"
)

// Config is the resolved application configuration
type Config struct {
	Debug      bool
	Server     ServerConfig
	Store      StoreConfig
	Generation GenerationConfig
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string `validate:"required"`
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadMB    int `validate:"min=1,max=512"`
	AllowedOrigins []string
}

// StoreConfig selects the deck persister
type StoreConfig struct {
	Backend string `validate:"oneof=json sqlite memory"`
	Path    string
}

// GenerationConfig selects and configures the model
type GenerationConfig struct {
	Provider           string `validate:"oneof=openai gemini"`
	OpenAIKey          string
	OpenAIModel        string `validate:"required"`
	OpenAIBaseURL      string `validate:"omitempty,url"`
	GeminiKey          string
	GeminiModel        string  `validate:"required"`
	Temperature        float32 `validate:"min=0,max=2"`
	BreakerMaxFailures uint32  `validate:"min=1"`
	BreakerTimeout     time.Duration
}

var validate = validator.New()

func setDefaults() {
	model := generation.DefaultModelConfig()

	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 120*time.Second)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	viper.SetDefault("store.backend", "json")
	viper.SetDefault("generation.provider", model.Provider)
	viper.SetDefault("generation.max_upload_mb", 20)
	viper.SetDefault("generation.temperature", model.Temperature)
	viper.SetDefault("openai.model", model.OpenAIModel)
	viper.SetDefault("gemini.model", model.GeminiModel)
	viper.SetDefault("breaker.max_failures", model.BreakerMaxFailures)
	viper.SetDefault("breaker.timeout", model.BreakerTimeout)
}

// LoadConfig assembles and validates the configuration from flags,
// environment and config file
func LoadConfig() (*Config, error) {
	setDefaults()

	cfg := &Config{
		Debug: viper.GetBool("debug"),
		Server: ServerConfig{
			Addr:           viper.GetString("server.addr"),
			ReadTimeout:    viper.GetDuration("server.read_timeout"),
			WriteTimeout:   viper.GetDuration("server.write_timeout"),
			MaxUploadMB:    viper.GetInt("generation.max_upload_mb"),
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(viper.GetString("store.backend")),
			Path:    viper.GetString("store.path"),
		},
		Generation: GenerationConfig{
			Provider:           strings.ToLower(viper.GetString("generation.provider")),
			OpenAIKey:          GetOpenAIKey(),
			OpenAIModel:        viper.GetString("openai.model"),
			OpenAIBaseURL:      viper.GetString("openai.base_url"),
			GeminiKey:          GetGeminiKey(),
			GeminiModel:        viper.GetString("gemini.model"),
			Temperature:        float32(viper.GetFloat64("generation.temperature")),
			BreakerMaxFailures: viper.GetUint32("breaker.max_failures"),
			BreakerTimeout:     viper.GetDuration("breaker.timeout"),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Applied after validation so a bad store.backend is still reported
	if viper.GetBool("store.ephemeral") {
		cfg.Store.Backend = "memory"
		cfg.Store.Path = ""
	}

	if cfg.Store.Path == "" && cfg.Store.Backend != "memory" {
		path, err := defaultStorePath(cfg.Store.Backend)
		if err != nil {
			return nil, err
		}
		cfg.Store.Path = path
	}

	return cfg, nil
}

func defaultStorePath(backend string) (string, error) {
	path, err := deck.DefaultFilePath()
	if err != nil {
		return "", err
	}
	if backend == "sqlite" {
		return filepath.Join(filepath.Dir(path), "callical.db"), nil
	}
	return path, nil
}

// ModelConfig converts the generation settings for generation.NewModel
func (g GenerationConfig) ModelConfig() *generation.ModelConfig {
	return &generation.ModelConfig{
		Provider:           g.Provider,
		OpenAIKey:          g.OpenAIKey,
		OpenAIModel:        g.OpenAIModel,
		OpenAIBaseURL:      g.OpenAIBaseURL,
		GeminiKey:          g.GeminiKey,
		GeminiModel:        g.GeminiModel,
		Temperature:        g.Temperature,
		BreakerMaxFailures: g.BreakerMaxFailures,
		BreakerTimeout:     g.BreakerTimeout,
	}
}

// UnavailableMessage names the missing credential of the provider
func (g GenerationConfig) UnavailableMessage() string {
	if g.Provider == "gemini" {
		return "GEMINI_API_KEY is not configured"
	}
	return "OPENAI_API_KEY is not configured"
}

// MaxUploadBytes returns the upload limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}
