package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal/deck"
)

const keepAliveInterval = 30 * time.Second

// handleEvents streams the deck collection: the current snapshot on
// connect, then one "decks" event per change
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Only the latest snapshot matters, so a slow client skips stale ones
	updates := make(chan []deck.Deck, 1)
	unsubscribe := s.store.Subscribe(func(decks []deck.Deck) {
		select {
		case updates <- decks:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- decks
		}
	})
	defer unsubscribe()

	if err := writeEvent(w, rc, s.store.Decks()); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case decks := <-updates:
			if err := writeEvent(w, rc, decks); err != nil {
				s.logger.Debug("Event stream closed", zap.Error(err))
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, decks []deck.Deck) error {
	data, err := json.Marshal(decks)
	if err != nil {
		return fmt.Errorf("failed to encode decks: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: decks\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}
