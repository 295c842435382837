package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal/archive"
	"codeberg.org/snonux/callical/internal/cli"
	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/generation"
	"codeberg.org/snonux/callical/internal/models"
	"codeberg.org/snonux/callical/internal/server"
)

// Processor coordinates the components behind each command. The
// configuration, logger, store and service are created on first use.
type Processor struct {
	flags *cli.Flags
	out   io.Writer

	config  *cli.Config
	logger  *zap.Logger
	store   *deck.Store
	service *generation.Service
	closers []func() error
}

// NewProcessor creates a new processor writing its output to stdout
func NewProcessor(flags *cli.Flags) *Processor {
	return &Processor{
		flags: flags,
		out:   os.Stdout,
	}
}

// Close releases the store backend
func (p *Processor) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	p.closers = nil
	if p.logger != nil {
		_ = p.logger.Sync()
	}
	return errors.Join(errs...)
}

func (p *Processor) loadConfig() (*cli.Config, error) {
	if p.config != nil {
		return p.config, nil
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	p.config = cfg
	return cfg, nil
}

func (p *Processor) getLogger() *zap.Logger {
	if p.logger != nil {
		return p.logger
	}

	var (
		logger *zap.Logger
		err    error
	)
	if p.flags.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		logger = zap.NewNop()
	}

	p.logger = logger
	return logger
}

func (p *Processor) getStore() (*deck.Store, error) {
	if p.store != nil {
		return p.store, nil
	}

	cfg, err := p.loadConfig()
	if err != nil {
		return nil, err
	}

	persister, closer, err := newPersister(cfg.Store)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		p.closers = append(p.closers, closer)
	}

	logger := p.getLogger()
	logger.Debug("Opened deck store",
		zap.String("backend", cfg.Store.Backend),
		zap.String("path", cfg.Store.Path),
	)

	p.store = deck.NewStore(persister, &deck.StoreOptions{Logger: logger})
	return p.store, nil
}

func newPersister(cfg cli.StoreConfig) (deck.Persister, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return deck.NewMemoryPersister(), nil, nil
	case "sqlite":
		persister, err := deck.OpenSQLitePersister(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return persister, persister.Close, nil
	default:
		return deck.NewFilePersister(cfg.Path), nil, nil
	}
}

// getService builds the generation service. A missing API key leaves the
// service unconfigured so that every generation reports it.
func (p *Processor) getService(ctx context.Context) (*generation.Service, error) {
	if p.service != nil {
		return p.service, nil
	}

	cfg, err := p.loadConfig()
	if err != nil {
		return nil, err
	}

	model, err := generation.NewModel(ctx, cfg.Generation.ModelConfig())
	if err != nil && !errors.Is(err, generation.ErrMissingAPIKey) {
		return nil, err
	}
	if err != nil {
		p.getLogger().Warn("Generation disabled", zap.String("reason", cfg.Generation.UnavailableMessage()))
		model = nil
	}

	p.service = generation.NewService(&generation.ServiceConfig{
		Model:              model,
		UnavailableMessage: cfg.Generation.UnavailableMessage(),
	})
	return p.service, nil
}

// Serve runs the HTTP API until ctx is cancelled
func (p *Processor) Serve(ctx context.Context) error {
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}

	store, err := p.getStore()
	if err != nil {
		return err
	}

	service, err := p.getService(ctx)
	if err != nil {
		return err
	}

	srv := server.New(&server.Config{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, service, store, p.getLogger())

	return srv.Run(ctx)
}

// ListModels prints the chat models available to the OpenAI key
func (p *Processor) ListModels(ctx context.Context) error {
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}

	lister := models.NewListerWithConfig(cfg.Generation.OpenAIKey, cfg.Generation.OpenAIBaseURL)
	return lister.ListAvailableModels(ctx, p.out)
}

// Archive moves the deck store aside so the next run starts empty
func (p *Processor) Archive() error {
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Backend == "memory" {
		return fmt.Errorf("nothing to archive for the memory store")
	}

	archivedPath, err := archive.ArchiveStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to archive decks: %w", err)
	}

	fmt.Fprintf(p.out, "Decks archived to: %s\n", archivedPath)
	return nil
}
