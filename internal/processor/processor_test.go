package processor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal/cli"
	"codeberg.org/snonux/callical/internal/deck"
	"codeberg.org/snonux/callical/internal/generation"
	"codeberg.org/snonux/callical/internal/testutil"
)

func newTestProcessor(t *testing.T, response string) (*Processor, *bytes.Buffer, *testutil.MockModel) {
	t.Helper()

	store, _ := testutil.NewTestStore(t)
	service, model := testutil.NewMockService(response)

	flags := cli.NewFlags()
	flags.OutputDir = t.TempDir()

	out := &bytes.Buffer{}
	p := &Processor{
		flags:   flags,
		out:     out,
		logger:  zap.NewNop(),
		store:   store,
		service: service,
	}
	return p, out, model
}

func TestNewProcessor(t *testing.T) {
	flags := cli.NewFlags()
	p := NewProcessor(flags)

	require.NotNil(t, p)
	assert.Same(t, flags, p.flags)
	assert.Equal(t, os.Stdout, p.out)
	assert.Nil(t, p.store)
	assert.Nil(t, p.service)
}

func TestGenerate_Print(t *testing.T) {
	p, out, model := newTestProcessor(t, "What is Go?;A language\nWho made it?;Google")
	p.flags.Text = "Go is a language made by Google."

	require.NoError(t, p.Generate(context.Background(), nil))

	assert.Equal(t, "What is Go?;A language\nWho made it?;Google\n", out.String())
	assert.Equal(t, 1, model.Calls())
	assert.Equal(t, 0, p.store.Len())
}

func TestGenerate_Save(t *testing.T) {
	p, out, _ := newTestProcessor(t, "Q1;A1\nQ2;A2")
	p.flags.Save = true
	p.flags.Title = "Chapter 1"

	material := filepath.Join(t.TempDir(), "notes.txt")
	testutil.CreateTestFile(t, material, []byte("Some notes"))

	require.NoError(t, p.Generate(context.Background(), []string{material}))

	decks := p.store.Decks()
	require.Len(t, decks, 1)
	assert.Equal(t, "Chapter 1", decks[0].Title)
	assert.Len(t, decks[0].Cards, 2)
	assert.Contains(t, out.String(), `Created deck "Chapter 1"`)
}

func TestGenerate_SaveToFileStore(t *testing.T) {
	p, _, _ := newTestProcessor(t, "Q1;A1")
	store, path := testutil.NewFileStore(t)
	p.store = store
	p.flags.Text = "material"
	p.flags.Save = true

	require.NoError(t, p.Generate(context.Background(), nil))

	testutil.AssertFileContains(t, path, `"title": "New deck"`)
	testutil.AssertFileContains(t, path, `"question": "Q1"`)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		text     string
		wantKind generation.Kind
	}{
		{"no material", "Q;A", "", generation.KindBadRequest},
		{"invalid input", generation.InvalidInputSentinel, "gibberish", generation.KindInvalidInput},
		{"no cards", "   ", "material", generation.KindUnprocessableContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestProcessor(t, tt.response)
			p.flags.Text = tt.text
			p.flags.Save = true

			err := p.Generate(context.Background(), nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, generation.KindOf(err))
			assert.Equal(t, 0, p.store.Len())
		})
	}
}

func TestGenerate_MissingFile(t *testing.T) {
	p, _, model := newTestProcessor(t, "Q;A")

	err := p.Generate(context.Background(), []string{filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read material")
	assert.Equal(t, 0, model.Calls())
}

func TestGenerate_ImageAttachment(t *testing.T) {
	p, _, model := newTestProcessor(t, "Q;A")

	// PNG signature is enough for content sniffing
	image := filepath.Join(t.TempDir(), "board")
	testutil.CreateTestFile(t, image, []byte("\x89PNG\r\n\x1a\n0000"))

	require.NoError(t, p.Generate(context.Background(), []string{image}))

	req := model.LastRequest()
	require.NotNil(t, req)
	assert.Len(t, req.Images(), 1)
}

func TestProcessBatch(t *testing.T) {
	p, out, _ := newTestProcessor(t, "Q;A")

	dir := t.TempDir()
	testutil.CreateTestFile(t, filepath.Join(dir, "bio.txt"), []byte("cells"))
	testutil.CreateTestFile(t, filepath.Join(dir, "chem.txt"), []byte("atoms"))
	batchFile := filepath.Join(dir, "batch.txt")
	testutil.CreateTestFile(t, batchFile, []byte("bio.txt = Biology\nchem.txt\n"))
	p.flags.BatchFile = batchFile

	require.NoError(t, p.Generate(context.Background(), nil))

	decks := p.store.Decks()
	require.Len(t, decks, 2)
	assert.Equal(t, "Biology", decks[0].Title)
	assert.Equal(t, deck.GeneratedTitle, decks[1].Title)
	assert.Contains(t, out.String(), "Processed: 2")
}

func TestProcessBatch_PartialFailure(t *testing.T) {
	p, out, _ := newTestProcessor(t, "Q;A")

	dir := t.TempDir()
	testutil.CreateTestFile(t, filepath.Join(dir, "bio.txt"), []byte("cells"))
	batchFile := filepath.Join(dir, "batch.txt")
	testutil.CreateTestFile(t, batchFile, []byte("bio.txt\nmissing.txt\n"))
	p.flags.BatchFile = batchFile

	var err error
	_, stderr := testutil.CaptureOutput(t, func() {
		err = p.ProcessBatch(context.Background())
	})
	require.Error(t, err)
	assert.Contains(t, stderr, "Error processing")
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Equal(t, 1, p.store.Len())
	assert.Contains(t, out.String(), "Errors: 1")
}

func TestParse(t *testing.T) {
	p, out, _ := newTestProcessor(t, "")

	require.NoError(t, p.Parse(strings.NewReader("Capital of Austria?;Vienna\n\nOnly a question\n")))

	assert.JSONEq(t, `[
		{"question": "Capital of Austria?", "answer": "Vienna"},
		{"question": "Only a question", "answer": ""}
	]`, out.String())
}

func TestParse_Empty(t *testing.T) {
	p, out, _ := newTestProcessor(t, "")

	require.NoError(t, p.Parse(strings.NewReader("  \n")))
	assert.JSONEq(t, `[]`, out.String())
}

func TestConcepts(t *testing.T) {
	p, out, _ := newTestProcessor(t, "")

	require.NoError(t, p.Concepts(strings.NewReader("First point. Second point! Third?")))
	assert.Equal(t, "First point\nSecond point\nThird\n", out.String())
}

func TestArchive(t *testing.T) {
	p, out, _ := newTestProcessor(t, "")

	storePath := filepath.Join(t.TempDir(), "callical-decks.json")
	testutil.CreateTestFile(t, storePath, []byte("[]"))
	p.config = &cli.Config{Store: cli.StoreConfig{Backend: "json", Path: storePath}}

	require.NoError(t, p.Archive())
	testutil.AssertFileNotExists(t, storePath)
	assert.Contains(t, out.String(), "Decks archived to:")
}

func TestArchive_Memory(t *testing.T) {
	p, _, _ := newTestProcessor(t, "")
	p.config = &cli.Config{Store: cli.StoreConfig{Backend: "memory"}}

	assert.Error(t, p.Archive())
}

func TestNewPersister(t *testing.T) {
	dir := t.TempDir()

	persister, closer, err := newPersister(cli.StoreConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &deck.MemoryPersister{}, persister)
	assert.Nil(t, closer)

	persister, closer, err = newPersister(cli.StoreConfig{Backend: "json", Path: filepath.Join(dir, "decks.json")})
	require.NoError(t, err)
	assert.IsType(t, &deck.FilePersister{}, persister)
	assert.Nil(t, closer)

	persister, closer, err = newPersister(cli.StoreConfig{Backend: "sqlite", Path: filepath.Join(dir, "decks.db")})
	require.NoError(t, err)
	assert.IsType(t, &deck.SQLitePersister{}, persister)
	require.NotNil(t, closer)
	assert.NoError(t, closer())
}

func TestGetStore_FromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callical.db")
	p := NewProcessor(cli.NewFlags())
	p.out = &bytes.Buffer{}
	p.logger = zap.NewNop()
	p.config = &cli.Config{Store: cli.StoreConfig{Backend: "sqlite", Path: path}}

	store, err := p.getStore()
	require.NoError(t, err)
	store.CreateDeck("Persisted")
	require.NoError(t, p.Close())

	// A fresh processor sees the saved deck
	p2 := NewProcessor(cli.NewFlags())
	p2.logger = zap.NewNop()
	p2.config = p.config
	store2, err := p2.getStore()
	require.NoError(t, err)
	defer p2.Close()

	decks := store2.Decks()
	require.Len(t, decks, 1)
	assert.Equal(t, "Persisted", decks[0].Title)
}

func TestGetService_MissingKey(t *testing.T) {
	p := NewProcessor(cli.NewFlags())
	p.logger = zap.NewNop()
	p.config = &cli.Config{Generation: cli.GenerationConfig{Provider: "gemini"}}

	service, err := p.getService(context.Background())
	require.NoError(t, err)

	err = service.Ready()
	require.Error(t, err)
	assert.Equal(t, generation.KindServiceUnavailable, generation.KindOf(err))
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
