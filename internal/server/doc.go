// Package server exposes flashcard generation and the deck store over HTTP.
//
// Routes are served by a chi router with request ids, panic recovery,
// zap request logging, CORS and Prometheus metrics. Deck changes are
// streamed to clients as server-sent events.
package server
