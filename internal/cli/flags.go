package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile string
	Debug   bool

	// Store flags
	StoreBackend string
	StorePath    string
	Ephemeral    bool

	// Generation flags
	Provider           string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiModel        string
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	// Serve flags
	Addr        string
	MaxUploadMB int

	// Generate flags
	Text      string
	Save      bool
	Title     string
	BatchFile string

	// Export flags
	OutputDir string
	CSV       bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		StoreBackend:       "json",
		Provider:           "openai",
		OpenAIModel:        "chatgpt-4o-latest",
		GeminiModel:        "gemini-2.0-flash",
		BreakerMaxFailures: 5,
		BreakerTimeout:     60 * time.Second,
		Addr:               "127.0.0.1:8080",
		MaxUploadMB:        20,
		OutputDir:          ".",
	}
}
