package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/flashcard"
)

type createDeckRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type cardRequest struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question" validate:"max=10000"`
	Answer   string `json:"answer" validate:"max=10000"`
}

type updateDeckRequest struct {
	Title *string        `json:"title,omitempty" validate:"omitempty,max=200"`
	Cards *[]cardRequest `json:"cards,omitempty" validate:"omitempty,dive"`
}

type addCardsRequest struct {
	Cards []cardRequest `json:"cards" validate:"dive"`
}

type decksResponse struct {
	Decks []deck.Deck `json:"decks"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, decksResponse{Decks: s.store.Decks()})
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created := s.store.CreateDeck(req.Title)
	s.logger.Info("Created deck", zap.String("deckID", created.ID), zap.String("title", created.Title))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	s.writeDeck(w, chi.URLParam(r, "deckID"))
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req updateDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	update := deck.DeckUpdate{Title: req.Title}
	if req.Cards != nil {
		cards := make([]deck.Card, len(*req.Cards))
		for i, c := range *req.Cards {
			cards[i] = deck.Card{ID: c.ID, Question: c.Question, Answer: c.Answer}
		}
		update.Cards = &cards
	}

	deckID := chi.URLParam(r, "deckID")
	s.store.UpdateDeck(deckID, update)
	s.writeDeck(w, deckID)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteDeck(chi.URLParam(r, "deckID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCards(w http.ResponseWriter, r *http.Request) {
	var req addCardsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cards := make([]flashcard.Card, len(req.Cards))
	for i, c := range req.Cards {
		cards[i] = flashcard.Card{Question: c.Question, Answer: c.Answer}
	}

	deckID := chi.URLParam(r, "deckID")
	s.store.AddCards(deckID, cards)
	s.writeDeck(w, deckID)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	deckID := chi.URLParam(r, "deckID")
	s.store.UpdateCard(deckID, chi.URLParam(r, "cardID"), req.Question, req.Answer)
	s.writeDeck(w, deckID)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteCard(chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeDeck(w http.ResponseWriter, deckID string) {
	d, ok := s.store.GetDeck(deckID)
	if !ok {
		writeError(w, http.StatusNotFound, "deck not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
