package deck

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// SQLitePersister stores the collection as one row of a key-value table
type SQLitePersister struct {
	db *sql.DB
}

// OpenSQLitePersister opens or creates the database at path
func OpenSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

// Close closes the database connection
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

// Load reads the collection row
func (p *SQLitePersister) Load() ([]Deck, error) {
	var value string
	err := p.db.QueryRow("SELECT value FROM slots WHERE key = ?", SlotName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load decks: %w", err)
	}
	return decodeDecks([]byte(value))
}

// Save replaces the collection row
func (p *SQLitePersister) Save(decks []Deck) error {
	data, err := encodeDecks(decks)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(
		"INSERT INTO slots (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		SlotName, string(data),
	)
	if err != nil {
		return fmt.Errorf("save decks: %w", err)
	}
	return nil
}
