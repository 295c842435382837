package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/callical/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "callical",
		Short: "AI flashcard generator and deck manager",
		Long: `callical turns learning material into question/answer flashcards
and keeps them organised in decks.

Text files and images are sent to a language model (OpenAI or Gemini)
which answers with one "question;answer" line per card.

Examples:
  callical serve                          # Run the HTTP API
  callical generate notes.md --save       # Generate cards into a new deck
  callical generate --text "..." board.png
  callical deck list                      # Show all decks
  callical export <deck-id>               # Write an Anki package`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.callical.yaml)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	// Store flags
	pf.StringVar(&flags.StoreBackend, "store", flags.StoreBackend, "Deck storage backend: json or sqlite")
	pf.StringVar(&flags.StorePath, "store-path", "", "Deck storage location (default is ~/.local/state/callical/)")
	pf.BoolVar(&flags.Ephemeral, "ephemeral", false, "Keep decks in memory only")

	// Generation flags
	pf.StringVar(&flags.Provider, "provider", flags.Provider, "Generation provider: openai or gemini")
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model")
	pf.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "OpenAI compatible API base URL")
	pf.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model")
	pf.Uint32Var(&flags.BreakerMaxFailures, "breaker-max-failures", flags.BreakerMaxFailures, "Consecutive model failures before requests fail fast")
	pf.DurationVar(&flags.BreakerTimeout, "breaker-timeout", flags.BreakerTimeout, "How long the model stays disabled after tripping")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()

	viper.BindPFlag("debug", pf.Lookup("debug"))
	viper.BindPFlag("store.backend", pf.Lookup("store"))
	viper.BindPFlag("store.path", pf.Lookup("store-path"))
	viper.BindPFlag("store.ephemeral", pf.Lookup("ephemeral"))
	viper.BindPFlag("generation.provider", pf.Lookup("provider"))
	viper.BindPFlag("openai.model", pf.Lookup("openai-model"))
	viper.BindPFlag("openai.base_url", pf.Lookup("openai-base-url"))
	viper.BindPFlag("gemini.model", pf.Lookup("gemini-model"))
	viper.BindPFlag("breaker.max_failures", pf.Lookup("breaker-max-failures"))
	viper.BindPFlag("breaker.timeout", pf.Lookup("breaker-timeout"))
}

// SetupServeFlags adds the flags of the serve command
func SetupServeFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	cmd.Flags().IntVar(&flags.MaxUploadMB, "max-upload-mb", flags.MaxUploadMB, "Maximum upload size in MiB")

	viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	viper.BindPFlag("generation.max_upload_mb", cmd.Flags().Lookup("max-upload-mb"))
}

// SetupGenerateFlags adds the flags of the generate command
func SetupGenerateFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVarP(&flags.Text, "text", "t", "", "Learning material given inline")
	cmd.Flags().BoolVar(&flags.Save, "save", false, "Save the cards into a new deck")
	cmd.Flags().StringVar(&flags.Title, "title", "", "Title of the new deck (default \"New deck\")")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "File listing one material path per line, each saved as its own deck")
}

// SetupExportFlags adds the flags of the export command
func SetupExportFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	cmd.Flags().BoolVar(&flags.CSV, "csv", false, "Write a CSV file instead of an Anki package")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A missing .env file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".callical" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".callical")
	}

	// Environment variables, e.g. CALLICAL_SERVER_ADDR
	viper.SetEnvPrefix("CALLICAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("openai.key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("gemini.key")
}
