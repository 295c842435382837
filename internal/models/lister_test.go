package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newModelServer(t *testing.T, ids ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		data := make([]map[string]string, 0, len(ids))
		for _, id := range ids {
			data = append(data, map[string]string{"id": id, "object": "model"})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestNewListerWithConfig(t *testing.T) {
	lister := NewListerWithConfig("test-api-key", "")

	if lister == nil {
		t.Fatal("NewListerWithConfig returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestListAvailableModels_NoAPIKey(t *testing.T) {
	lister := NewListerWithConfig("", "")

	err := lister.ListAvailableModels(context.Background(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("Expected key hint in error, got: %v", err)
	}
}

func TestChatModels(t *testing.T) {
	srv := newModelServer(t, "gpt-4o", "tts-1", "dall-e-3", "chatgpt-4o-latest", "whisper-1", "gpt-4o-audio-preview", "text-embedding-3-small")
	lister := NewListerWithConfig("test-key", srv.URL+"/v1")

	got, err := lister.ChatModels(context.Background())
	if err != nil {
		t.Fatalf("ChatModels() error = %v", err)
	}

	want := []string{"chatgpt-4o-latest", "gpt-4o"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("ChatModels() = %v, want %v", got, want)
	}
}

func TestListAvailableModels(t *testing.T) {
	srv := newModelServer(t, "gpt-4o-mini", "gpt-4o")
	lister := NewListerWithConfig("test-key", srv.URL+"/v1")

	var out bytes.Buffer
	if err := lister.ListAvailableModels(context.Background(), &out); err != nil {
		t.Fatalf("ListAvailableModels() error = %v", err)
	}

	expected := "Chat Models (for flashcard generation):\n  gpt-4o\n  gpt-4o-mini\n"
	if out.String() != expected {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestListAvailableModels_Truncated(t *testing.T) {
	ids := []string{"gpt-4o", "gpt-4.1"}
	for i := 0; i < 10; i++ {
		ids = append(ids, fmt.Sprintf("gpt-3.5-turbo-%d", i))
	}
	srv := newModelServer(t, ids...)

	var out bytes.Buffer
	if err := NewListerWithConfig("test-key", srv.URL+"/v1").ListAvailableModels(context.Background(), &out); err != nil {
		t.Fatalf("ListAvailableModels() error = %v", err)
	}

	if !strings.Contains(out.String(), "... and 10 more models") {
		t.Errorf("Expected truncation note, got:\n%s", out.String())
	}
}

func TestListAvailableModels_Empty(t *testing.T) {
	srv := newModelServer(t, "tts-1")

	var out bytes.Buffer
	if err := NewListerWithConfig("test-key", srv.URL+"/v1").ListAvailableModels(context.Background(), &out); err != nil {
		t.Fatalf("ListAvailableModels() error = %v", err)
	}

	if !strings.Contains(out.String(), "No chat models found") {
		t.Errorf("Expected empty note, got:\n%s", out.String())
	}
}

func TestListAvailableModels_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	err := NewListerWithConfig("test-key", srv.URL+"/v1").ListAvailableModels(context.Background(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "failed to list models") {
		t.Errorf("Expected list error, got: %v", err)
	}
}
