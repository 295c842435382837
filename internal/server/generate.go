package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/flashcard"
	"codeberg.org/snonux/callical/internal/generation"
)

const multipartMemory = 32 << 20

type generateResponse struct {
	Cards []flashcard.Card `json:"cards"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	cards, ok := s.generate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Cards: cards})
}

func (s *Server) handleGenerateDeck(w http.ResponseWriter, r *http.Request) {
	cards, ok := s.generate(w, r)
	if !ok {
		return
	}

	created, ok := deck.CreateFromGenerated(s.store, r.FormValue("title"), cards)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, generation.MsgNoCards)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// generate runs one generation for the request and writes the error
// response itself when it fails
func (s *Server) generate(w http.ResponseWriter, r *http.Request) ([]flashcard.Card, bool) {
	start := time.Now()

	// Refuse before touching the body when no model is configured
	if err := s.service.Ready(); err != nil {
		s.writeGenerationError(w, r, err, start)
		return nil, false
	}

	text, attachments, err := s.readGenerationInput(w, r)
	if err != nil {
		s.writeGenerationError(w, r, generation.NewBadRequest(err), start)
		return nil, false
	}

	cards, err := s.service.Generate(r.Context(), text, attachments)
	if err != nil {
		s.writeGenerationError(w, r, err, start)
		return nil, false
	}

	s.metrics.ObserveGeneration("success", time.Since(start))
	s.logger.Info("Generated flashcards",
		zap.Int("cards", len(cards)),
		zap.Int("attachments", len(attachments)),
		zap.Duration("duration", time.Since(start)),
	)
	return cards, true
}

func (s *Server) readGenerationInput(w http.ResponseWriter, r *http.Request) (string, []generation.Attachment, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, fmt.Errorf("failed to parse form: %w", err)
	}

	text := r.FormValue("text")

	var attachments []generation.Attachment
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return "", nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}

		attachments = append(attachments, generation.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return text, attachments, nil
}

func (s *Server) writeGenerationError(w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	kind := generation.KindOf(err)
	s.metrics.ObserveGeneration(kind.String(), time.Since(start))

	message := generation.MsgGenerationError
	var genErr *generation.Error
	if errors.As(err, &genErr) {
		message = genErr.Message
	}

	status := statusForKind(kind)
	fields := []zap.Field{
		zap.String("kind", kind.String()),
		zap.String("requestID", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Flashcard generation failed", fields...)
	} else {
		s.logger.Warn("Flashcard generation rejected", fields...)
	}

	writeError(w, status, message)
}

func statusForKind(kind generation.Kind) int {
	switch kind {
	case generation.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case generation.KindBadRequest, generation.KindInvalidInput:
		return http.StatusBadRequest
	case generation.KindUnprocessableContent:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
