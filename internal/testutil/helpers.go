package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/flashcard"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// NewTestStore creates a store backed by an in-memory persister
func NewTestStore(t *testing.T) (*deck.Store, *deck.MemoryPersister) {
	t.Helper()

	persister := deck.NewMemoryPersister()
	return deck.NewStore(persister, nil), persister
}

// NewFileStore creates a store backed by a JSON file in a temp directory
func NewFileStore(t *testing.T) (*deck.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), deck.SlotName+".json")
	return deck.NewStore(deck.NewFilePersister(path), nil), path
}

// AddTestDeck creates a deck holding the given "question;answer" lines
func AddTestDeck(t *testing.T, store *deck.Store, title string, lines ...string) deck.Deck {
	t.Helper()

	created := store.CreateDeck(title)
	store.AddCards(created.ID, flashcard.Parse(strings.Join(lines, "\n")))

	d, ok := store.GetDeck(created.ID)
	if !ok {
		t.Fatalf("Deck %s vanished after creation", created.ID)
	}
	return d
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// CaptureOutput captures stdout/stderr during test execution
func CaptureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	outCh := make(chan string)
	errCh := make(chan string)
	go func() {
		data, _ := io.ReadAll(rOut)
		outCh <- string(data)
	}()
	go func() {
		data, _ := io.ReadAll(rErr)
		errCh <- string(data)
	}()

	defer func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	}()

	f()

	wOut.Close()
	wErr.Close()

	return <-outCh, <-errCh
}
