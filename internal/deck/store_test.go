package deck

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/callical/internal/flashcard"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T, persister Persister) *Store {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	return NewStore(persister, &StoreOptions{
		Now: clock.Now,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
}

func TestCreateDeck_Titles(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"", DefaultTitle},
		{"   ", DefaultTitle},
		{"  Bio  ", "Bio"},
		{"Chemistry", "Chemistry"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			store := newTestStore(t, nil)
			d := store.CreateDeck(tt.title)

			if d.Title != tt.expected {
				t.Errorf("CreateDeck(%q).Title = %q, want %q", tt.title, d.Title, tt.expected)
			}
			if d.ID == "" {
				t.Error("Expected an id")
			}
			if len(d.Cards) != 0 || d.Cards == nil {
				t.Errorf("Expected empty non-nil cards, got %v", d.Cards)
			}
			if !d.CreatedAt.Equal(d.UpdatedAt) {
				t.Error("Expected createdAt == updatedAt")
			}
		})
	}
}

func TestCreateDeck_VisibleImmediately(t *testing.T) {
	store := newTestStore(t, nil)
	d := store.CreateDeck("Bio")

	decks := store.Decks()
	if len(decks) != 1 || decks[0].ID != d.ID {
		t.Fatalf("Expected snapshot to contain new deck, got %v", decks)
	}

	got, ok := store.GetDeck(d.ID)
	if !ok || got.Title != "Bio" {
		t.Errorf("GetDeck() = %v, %v", got, ok)
	}
}

func TestGetDeck_Missing(t *testing.T) {
	store := newTestStore(t, nil)
	if _, ok := store.GetDeck("nope"); ok {
		t.Error("Expected missing deck")
	}
}

func TestAddCards_ParsedRoundTrip(t *testing.T) {
	store := newTestStore(t, nil)
	d := store.CreateDeck("Math")

	parsed := flashcard.Parse("What is 2+2?;4\nWhat is 3*3?;9\nPi\n")
	store.AddCards(d.ID, parsed)

	got, _ := store.GetDeck(d.ID)
	if len(got.Cards) != 3 {
		t.Fatalf("Expected 3 cards, got %d", len(got.Cards))
	}

	seen := make(map[string]bool)
	for i, c := range got.Cards {
		if c.Question != parsed[i].Question || c.Answer != parsed[i].Answer {
			t.Errorf("cards[%d] = %+v, want %+v", i, c, parsed[i])
		}
		if c.ID == "" || seen[c.ID] {
			t.Errorf("cards[%d] has missing or duplicate id %q", i, c.ID)
		}
		seen[c.ID] = true
	}

	if !got.UpdatedAt.After(d.UpdatedAt) {
		t.Error("Expected updatedAt to advance")
	}
}

func TestAddCards_NoOps(t *testing.T) {
	persister := NewMemoryPersister()
	store := newTestStore(t, persister)
	d := store.CreateDeck("Math")
	saves := persister.SaveCount()

	store.AddCards(d.ID, nil)
	store.AddCards("unknown", []flashcard.Card{{Question: "q", Answer: "a"}})

	got, _ := store.GetDeck(d.ID)
	if len(got.Cards) != 0 || !got.UpdatedAt.Equal(d.UpdatedAt) {
		t.Errorf("Expected unchanged deck, got %+v", got)
	}
	if persister.SaveCount() != saves {
		t.Error("No-op mutations must not persist")
	}
}

func TestUpdateCard(t *testing.T) {
	store := newTestStore(t, nil)
	d := store.CreateDeck("Geo")
	store.AddCards(d.ID, []flashcard.Card{{Question: "Capital of France?", Answer: "Lyon"}})

	before, _ := store.GetDeck(d.ID)
	cardID := before.Cards[0].ID

	store.UpdateCard(d.ID, cardID, "Capital of France?", "Paris")

	after, _ := store.GetDeck(d.ID)
	if after.Cards[0].Answer != "Paris" || after.Cards[0].ID != cardID {
		t.Errorf("Unexpected card after update: %+v", after.Cards[0])
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Error("Expected updatedAt to advance")
	}

	store.UpdateCard(d.ID, "missing", "x", "y")
	unchanged, _ := store.GetDeck(d.ID)
	if !unchanged.UpdatedAt.Equal(after.UpdatedAt) || unchanged.Cards[0].Answer != "Paris" {
		t.Error("Updating an unknown card must be a no-op")
	}
}

func TestDeleteCard(t *testing.T) {
	store := newTestStore(t, nil)
	d := store.CreateDeck("Geo")
	store.AddCards(d.ID, []flashcard.Card{{Question: "a"}, {Question: "b"}, {Question: "c"}})

	before, _ := store.GetDeck(d.ID)
	store.DeleteCard(d.ID, before.Cards[1].ID)

	after, _ := store.GetDeck(d.ID)
	if len(after.Cards) != 2 || after.Cards[0].Question != "a" || after.Cards[1].Question != "c" {
		t.Errorf("Unexpected cards: %+v", after.Cards)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Error("Expected updatedAt to advance")
	}
}

func TestDeleteCard_UnknownIsNoOp(t *testing.T) {
	store := newTestStore(t, nil)
	d := store.CreateDeck("Geo")
	store.AddCards(d.ID, []flashcard.Card{{Question: "a"}})
	before, _ := store.GetDeck(d.ID)

	notified := 0
	unsubscribe := store.Subscribe(func([]Deck) { notified++ })
	defer unsubscribe()

	store.DeleteCard(d.ID, "missing")
	store.DeleteCard("missing", before.Cards[0].ID)

	after, _ := store.GetDeck(d.ID)
	if len(after.Cards) != 1 || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("Expected unchanged deck, got %+v", after)
	}
	if notified != 0 {
		t.Errorf("Expected no notifications, got %d", notified)
	}
}

func TestUpdateDeck(t *testing.T) {
	store := newTestStore(t, nil)
	d := store.CreateDeck("Old")
	store.AddCards(d.ID, []flashcard.Card{{Question: "q1", Answer: "a1"}})
	existing, _ := store.GetDeck(d.ID)

	title := "New"
	cards := []Card{
		existing.Cards[0],
		{Question: "q2", Answer: "a2"},
	}
	store.UpdateDeck(d.ID, DeckUpdate{Title: &title, Cards: &cards})

	got, _ := store.GetDeck(d.ID)
	if got.Title != "New" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(got.Cards))
	}
	if got.Cards[0].ID != existing.Cards[0].ID {
		t.Error("Existing card id must be kept")
	}
	if got.Cards[1].ID == "" {
		t.Error("New card must receive an id")
	}
	if !got.CreatedAt.Equal(d.CreatedAt) {
		t.Error("createdAt must not change")
	}

	// Title only keeps cards
	other := "Other"
	store.UpdateDeck(d.ID, DeckUpdate{Title: &other})
	got, _ = store.GetDeck(d.ID)
	if got.Title != "Other" || len(got.Cards) != 2 {
		t.Errorf("Unexpected deck after title update: %+v", got)
	}

	store.UpdateDeck("missing", DeckUpdate{Title: &other})
	if len(store.Decks()) != 1 {
		t.Error("Updating an unknown deck must not create one")
	}
}

func TestDeleteDeck_Idempotent(t *testing.T) {
	store := newTestStore(t, nil)
	a := store.CreateDeck("A")
	b := store.CreateDeck("B")

	store.DeleteDeck(a.ID)
	store.DeleteDeck(a.ID)

	decks := store.Decks()
	if len(decks) != 1 || decks[0].ID != b.ID {
		t.Errorf("Unexpected decks: %+v", decks)
	}
}

func TestDecks_ReturnsCopies(t *testing.T) {
	store := newTestStore(t, nil)
	d := store.CreateDeck("A")
	store.AddCards(d.ID, []flashcard.Card{{Question: "q", Answer: "a"}})

	decks := store.Decks()
	decks[0].Title = "mutated"
	decks[0].Cards[0].Answer = "mutated"

	got, _ := store.GetDeck(d.ID)
	if got.Title != "A" || got.Cards[0].Answer != "a" {
		t.Error("Callers must not be able to mutate the snapshot")
	}
}

func TestSubscribe(t *testing.T) {
	store := newTestStore(t, nil)

	var received [][]Deck
	unsubscribe := store.Subscribe(func(decks []Deck) {
		received = append(received, decks)
	})

	d := store.CreateDeck("A")
	store.AddCards(d.ID, []flashcard.Card{{Question: "q"}})

	if len(received) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(received))
	}
	if len(received[1]) != 1 || len(received[1][0].Cards) != 1 {
		t.Errorf("Subscriber did not receive the new snapshot: %+v", received[1])
	}

	unsubscribe()
	unsubscribe()
	store.DeleteDeck(d.ID)

	if len(received) != 2 {
		t.Errorf("Expected no notification after unsubscribe, got %d", len(received))
	}
}

func TestStore_PersistsAndReloads(t *testing.T) {
	persister := NewMemoryPersister()
	store := newTestStore(t, persister)
	d := store.CreateDeck("Bio")
	store.AddCards(d.ID, []flashcard.Card{{Question: "q", Answer: "a"}})

	if persister.SaveCount() != 2 {
		t.Errorf("Expected 2 saves, got %d", persister.SaveCount())
	}

	reloaded := NewStore(persister, nil)
	got, ok := reloaded.GetDeck(d.ID)
	if !ok {
		t.Fatal("Expected deck after reload")
	}
	if got.Title != "Bio" || len(got.Cards) != 1 || got.Cards[0].Answer != "a" {
		t.Errorf("Unexpected reloaded deck: %+v", got)
	}
	if !got.UpdatedAt.Equal(d.UpdatedAt.Add(time.Second)) {
		t.Errorf("Timestamps not preserved: %v", got.UpdatedAt)
	}
}

func TestStore_MalformedDataStartsEmpty(t *testing.T) {
	persister := NewMemoryPersister()
	persister.SetRaw([]byte("{not json"))

	store := newTestStore(t, persister)
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d decks", store.Len())
	}
}

func TestStore_NilCardsNormalized(t *testing.T) {
	persister := NewMemoryPersister()
	persister.SetRaw([]byte(`[{"id":"d1","title":"T","cards":null}]`))

	store := newTestStore(t, persister)
	d, ok := store.GetDeck("d1")
	if !ok {
		t.Fatal("Expected deck d1")
	}
	if d.Cards == nil {
		t.Error("Expected non-nil cards")
	}
}

func TestStore_SaveFailureDoesNotSurface(t *testing.T) {
	persister := NewMemoryPersister()
	persister.SaveErr = errors.New("disk full")

	store := newTestStore(t, persister)
	d := store.CreateDeck("A")

	if _, ok := store.GetDeck(d.ID); !ok {
		t.Error("Mutation must apply even when saving fails")
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	store := NewStore(NewMemoryPersister(), nil)
	d := store.CreateDeck("A")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.AddCards(d.ID, []flashcard.Card{{Question: fmt.Sprintf("q%d", i)}})
			_ = store.Decks()
		}(i)
	}
	wg.Wait()

	got, _ := store.GetDeck(d.ID)
	if len(got.Cards) != 20 {
		t.Errorf("Expected 20 cards, got %d", len(got.Cards))
	}
}
