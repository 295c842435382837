package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestNewAPKGGenerator(t *testing.T) {
	gen := NewAPKGGenerator("Test Deck")

	if gen == nil {
		t.Fatal("NewAPKGGenerator returned nil")
	}

	if gen.deckName != "Test Deck" {
		t.Errorf("Expected deck name 'Test Deck', got '%s'", gen.deckName)
	}

	if len(gen.cards) != 0 {
		t.Errorf("Expected empty cards slice, got %d cards", len(gen.cards))
	}

	if gen.modelID == gen.deckID {
		t.Error("Model and deck ids must differ")
	}
}

func TestGenerateAPKG(t *testing.T) {
	tempDir := t.TempDir()

	gen := NewAPKGGenerator("Biology")
	gen.AddCard(Card{ID: "c1", Question: "Powerhouse of the cell?", Answer: "Mitochondria"})
	gen.AddCard(Card{ID: "c2", Question: "Is 1 < 2?", Answer: "yes\nalways"})

	outputPath := filepath.Join(tempDir, "biology.apkg")
	if err := gen.GenerateAPKG(outputPath); err != nil {
		t.Fatalf("GenerateAPKG() error = %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open APKG as zip: %v", err)
	}
	defer reader.Close()

	found := map[string]*zip.File{}
	for _, file := range reader.File {
		found[file.Name] = file
	}

	for _, name := range []string{"collection.anki2", "media"} {
		if found[name] == nil {
			t.Fatalf("Required file '%s' not found in APKG", name)
		}
	}

	rc, err := found["media"].Open()
	if err != nil {
		t.Fatalf("Failed to open media: %v", err)
	}
	media, _ := io.ReadAll(rc)
	rc.Close()
	if string(media) != "{}" {
		t.Errorf("Expected empty media mapping, got %s", media)
	}

	// Extract the collection and inspect it
	dbPath := filepath.Join(tempDir, "collection.anki2")
	rc, err = found["collection.anki2"].Open()
	if err != nil {
		t.Fatalf("Failed to open collection: %v", err)
	}
	out, err := os.Create(dbPath)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	_, err = io.Copy(out, rc)
	rc.Close()
	out.Close()
	if err != nil {
		t.Fatalf("Failed to extract collection: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var notes, cards int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&notes); err != nil {
		t.Fatalf("Failed to count notes: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cards); err != nil {
		t.Fatalf("Failed to count cards: %v", err)
	}
	if notes != 2 || cards != 2 {
		t.Errorf("Expected 2 notes and 2 cards, got %d and %d", notes, cards)
	}

	var flds, guid string
	if err := db.QueryRow("SELECT flds, guid FROM notes ORDER BY id LIMIT 1 OFFSET 1").Scan(&flds, &guid); err != nil {
		t.Fatalf("Failed to read note: %v", err)
	}
	if flds != "Is 1 &lt; 2?\x1fyes<br>always" {
		t.Errorf("Unexpected fields: %q", flds)
	}
	if guid != "cl_c2" {
		t.Errorf("Unexpected guid: %s", guid)
	}

	var decks string
	if err := db.QueryRow("SELECT decks FROM col").Scan(&decks); err != nil {
		t.Fatalf("Failed to read col: %v", err)
	}
	if !strings.Contains(decks, `"Biology"`) {
		t.Errorf("Deck name missing from collection: %s", decks)
	}

	var modelsJSON, dconfJSON string
	var ver int
	if err := db.QueryRow("SELECT models, dconf, ver FROM col").Scan(&modelsJSON, &dconfJSON, &ver); err != nil {
		t.Fatalf("Failed to read col: %v", err)
	}
	if ver != schemaVersion {
		t.Errorf("Expected schema version %d, got %d", schemaVersion, ver)
	}

	var noteTypes map[string]noteType
	if err := json.Unmarshal([]byte(modelsJSON), &noteTypes); err != nil {
		t.Fatalf("Failed to decode note types: %v", err)
	}
	nt, ok := noteTypes[strconv.FormatInt(gen.modelID, 10)]
	if !ok {
		t.Fatalf("Note type %d missing: %s", gen.modelID, modelsJSON)
	}
	if len(nt.Fields) != 2 || nt.Fields[0].Name != "Front" || nt.Fields[1].Name != "Back" {
		t.Errorf("Unexpected note fields: %+v", nt.Fields)
	}
	if nt.DeckID != gen.deckID {
		t.Errorf("Note type deck = %d, want %d", nt.DeckID, gen.deckID)
	}

	var options map[string]deckOptions
	if err := json.Unmarshal([]byte(dconfJSON), &options); err != nil {
		t.Fatalf("Failed to decode deck options: %v", err)
	}
	if options["1"].New.PerDay != 20 {
		t.Errorf("Unexpected deck options: %+v", options["1"])
	}
}

func TestFieldChecksum(t *testing.T) {
	// Stripping tags must not change the checksum of plain text
	if fieldChecksum("<b>Vienna</b>") != fieldChecksum("Vienna") {
		t.Error("Expected tags to be ignored")
	}
	if fieldChecksum("a") == fieldChecksum("b") {
		t.Error("Expected different checksums")
	}
	if fieldChecksum("Vienna") < 0 {
		t.Error("Checksum must be positive")
	}
}

func TestFieldHTML(t *testing.T) {
	if got := fieldHTML("a<b\nc & d"); got != "a&lt;b<br>c &amp; d" {
		t.Errorf("fieldHTML() = %q", got)
	}
}
