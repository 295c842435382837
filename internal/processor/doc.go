// Package processor contains the application logic behind the callical
// commands. It resolves the configuration, opens the deck store and the
// generation service, and coordinates generation, deck editing, Anki
// export and the HTTP server.
package processor
