package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/callical/internal/cli"
	"codeberg.org/snonux/callical/internal/processor"
)

func addCommands(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.AddCommand(
		newServeCommand(flags),
		newGenerateCommand(flags),
		newParseCommand(flags),
		newConceptsCommand(flags),
		newDeckCommand(flags),
		newExportCommand(flags),
		newModelsCommand(flags),
		newArchiveCommand(flags),
	)
}

// withProcessor runs fn with a processor that is closed afterwards
func withProcessor(flags *cli.Flags, fn func(p *processor.Processor) error) error {
	proc := processor.NewProcessor(flags)
	err := fn(proc)
	if closeErr := proc.Close(); err == nil {
		err = closeErr
	}
	return err
}

// openInput returns stdin for no argument or "-", otherwise the named file
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return file, nil
}

func newServeCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withProcessor(flags, func(p *processor.Processor) error {
				return p.Serve(ctx)
			})
		},
	}
	cli.SetupServeFlags(cmd, flags)
	return cmd
}

func newGenerateCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Generate flashcards from text, documents and images",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.BatchFile == "" && flags.Text == "" && len(args) == 0 {
				return fmt.Errorf("no material given: pass files, --text or --batch")
			}
			return withProcessor(flags, func(p *processor.Processor) error {
				return p.Generate(cmd.Context(), args)
			})
		},
	}
	cli.SetupGenerateFlags(cmd, flags)
	return cmd
}

func newParseCommand(flags *cli.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse \"question;answer\" lines and print the cards as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := openInput(args)
			if err != nil {
				return err
			}
			defer input.Close()

			return processor.NewProcessor(flags).Parse(input)
		},
	}
}

func newConceptsCommand(flags *cli.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "concepts [file]",
		Short: "Print the key sentences of learning material",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := openInput(args)
			if err != nil {
				return err
			}
			defer input.Close()

			return processor.NewProcessor(flags).Concepts(input)
		},
	}
}

func newDeckCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks and cards",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all decks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProcessor(flags, func(p *processor.Processor) error {
					return p.ListDecks()
				})
			},
		},
		&cobra.Command{
			Use:   "create [title]",
			Short: "Create an empty deck",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProcessor(flags, func(p *processor.Processor) error {
					return p.CreateDeck(strings.Join(args, " "))
				})
			},
		},
		&cobra.Command{
			Use:   "show <deck-id>",
			Short: "Show the cards of a deck",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProcessor(flags, func(p *processor.Processor) error {
					return p.ShowDeck(args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "rename <deck-id> <title>",
			Short: "Rename a deck",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProcessor(flags, func(p *processor.Processor) error {
					return p.RenameDeck(args[0], strings.Join(args[1:], " "))
				})
			},
		},
		&cobra.Command{
			Use:   "delete <deck-id>",
			Short: "Delete a deck and its cards",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProcessor(flags, func(p *processor.Processor) error {
					return p.DeleteDeck(args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "add <deck-id> [file]",
			Short: "Add \"question;answer\" lines from a file or stdin",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				input, err := openInput(args[1:])
				if err != nil {
					return err
				}
				defer input.Close()

				data, err := io.ReadAll(input)
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}

				return withProcessor(flags, func(p *processor.Processor) error {
					return p.AddCards(args[0], string(data))
				})
			},
		},
		&cobra.Command{
			Use:   "edit-card <deck-id> <card-id> <question> <answer>",
			Short: "Replace the question and answer of a card",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProcessor(flags, func(p *processor.Processor) error {
					return p.EditCard(args[0], args[1], args[2], args[3])
				})
			},
		},
		&cobra.Command{
			Use:   "delete-card <deck-id> <card-id>",
			Short: "Delete a card",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProcessor(flags, func(p *processor.Processor) error {
					return p.DeleteCard(args[0], args[1])
				})
			},
		},
	)

	return cmd
}

func newExportCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <deck-id>",
		Short: "Export a deck as an Anki package or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(flags, func(p *processor.Processor) error {
				_, err := p.Export(args[0])
				return err
			})
		},
	}
	cli.SetupExportFlags(cmd, flags)
	return cmd
}

func newModelsCommand(flags *cli.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the OpenAI chat models available to your API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(flags, func(p *processor.Processor) error {
				return p.ListModels(cmd.Context())
			})
		},
	}
}

func newArchiveCommand(flags *cli.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move the deck store into the archive directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(flags, func(p *processor.Processor) error {
				return p.Archive()
			})
		},
	}
}
