// Package deck owns the deck collection of the application.
//
// A Store holds one immutable snapshot of all decks. Every mutation builds
// a new snapshot, swaps it in, saves it through a Persister and notifies
// subscribers before returning. Store operations never fail: unknown ids
// are ignored and persistence errors are only logged.
//
// Three persisters are provided: FilePersister (a JSON file),
// SQLitePersister (a key-value table) and MemoryPersister.
package deck
