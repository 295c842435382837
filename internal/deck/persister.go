package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SlotName names the stored deck collection
const SlotName = "callical-decks"

// Persister loads and saves the whole deck collection.
// Load returns nil and no error when nothing has been saved yet.
type Persister interface {
	Load() ([]Deck, error)
	Save(decks []Deck) error
}

func decodeDecks(data []byte) ([]Deck, error) {
	var decks []Deck
	if err := json.Unmarshal(data, &decks); err != nil {
		return nil, fmt.Errorf("malformed deck data: %w", err)
	}
	return decks, nil
}

func encodeDecks(decks []Deck) ([]byte, error) {
	if decks == nil {
		decks = []Deck{}
	}
	data, err := json.MarshalIndent(decks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode decks: %w", err)
	}
	return data, nil
}

// DefaultFilePath returns ~/.local/state/callical/callical-decks.json
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "callical", SlotName+".json"), nil
}

// FilePersister stores the collection in a single JSON file
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister for the given file
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the file location
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads the file. A missing file is an empty collection.
func (p *FilePersister) Load() ([]Deck, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", p.path, err)
	}
	return decodeDecks(data)
}

// Save writes the collection to a temporary file and renames it into place
func (p *FilePersister) Save(decks []Deck) error {
	data, err := encodeDecks(decks)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+SlotName+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write decks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write decks: %w", err)
	}

	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p.path, err)
	}
	return nil
}

// MemoryPersister keeps the encoded collection in memory
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int

	// SaveErr, when set, is returned by every Save
	SaveErr error
}

// NewMemoryPersister creates a persister preloaded with decks
func NewMemoryPersister(decks ...Deck) *MemoryPersister {
	p := &MemoryPersister{}
	if len(decks) > 0 {
		p.data, _ = encodeDecks(decks)
	}
	return p
}

// SetRaw replaces the stored bytes
func (p *MemoryPersister) SetRaw(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
}

// SaveCount returns the number of successful saves
func (p *MemoryPersister) SaveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// Load decodes the stored collection
func (p *MemoryPersister) Load() ([]Deck, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data == nil {
		return nil, nil
	}
	return decodeDecks(p.data)
}

// Save encodes and keeps the collection
func (p *MemoryPersister) Save(decks []Deck) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.SaveErr != nil {
		return p.SaveErr
	}

	data, err := encodeDecks(decks)
	if err != nil {
		return err
	}
	p.data = data
	p.saves++
	return nil
}
