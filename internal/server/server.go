package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/generation"
)

// Config holds the HTTP server settings
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	AllowedOrigins []string
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Addr:           "127.0.0.1:8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   120 * time.Second,
		MaxUploadBytes: 20 << 20,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// Server serves the HTTP API
type Server struct {
	config  *Config
	service *generation.Service
	store   *deck.Store
	logger  *zap.Logger
	metrics *Metrics
	handler http.Handler
}

// New creates a server. A nil logger disables logging.
func New(config *Config, service *generation.Service, store *deck.Store, logger *zap.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:  config,
		service: service,
		store:   store,
		logger:  logger,
		metrics: NewMetrics(),
	}
	s.metrics.SetDecks(store.Len())
	store.Subscribe(func(decks []deck.Deck) {
		s.metrics.SetDecks(len(decks))
	})

	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the metrics collector of the server
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))
	router.Use(s.metrics.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.handleHealth)
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Post("/generate-flashcards", s.handleGenerate)

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", s.handleListDecks)
			r.Post("/", s.handleCreateDeck)
			r.Post("/generate", s.handleGenerateDeck)
			r.Get("/events", s.handleEvents)

			r.Get("/{deckID}", s.handleGetDeck)
			r.Patch("/{deckID}", s.handleUpdateDeck)
			r.Delete("/{deckID}", s.handleDeleteDeck)

			r.Post("/{deckID}/cards", s.handleAddCards)
			r.Put("/{deckID}/cards/{cardID}", s.handleUpdateCard)
			r.Delete("/{deckID}/cards/{cardID}", s.handleDeleteCard)
		})
	})

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server",
			zap.String("addr", s.config.Addr),
			zap.String("model", s.service.ModelName()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)

	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
