package deck

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/callical/internal"
	"codeberg.org/snonux/callical/internal/flashcard"
)

// StoreOptions configures a Store. Nil fields use defaults.
type StoreOptions struct {
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

type subscriber struct {
	id int
	fn func([]Deck)
}

// Store is the observable deck collection
type Store struct {
	mu       sync.Mutex // serializes mutations
	snapshot atomic.Pointer[[]Deck]

	subMu       sync.Mutex
	subscribers []subscriber
	nextSubID   int

	persister Persister
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewStore creates a store and loads the saved collection. Missing or
// unreadable data yields an empty collection.
func NewStore(persister Persister, opts *StoreOptions) *Store {
	if opts == nil {
		opts = &StoreOptions{}
	}

	s := &Store{
		persister: persister,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = internal.NewID
	}

	s.snapshot.Store(s.load())
	return s
}

func (s *Store) load() *[]Deck {
	decks := []Deck{}
	if s.persister == nil {
		return &decks
	}

	loaded, err := s.persister.Load()
	if err != nil {
		s.logger.Warn("Failed to load decks, starting empty", zap.Error(err))
		return &decks
	}

	for _, d := range loaded {
		if d.Cards == nil {
			d.Cards = []Card{}
		}
		decks = append(decks, d)
	}

	s.logger.Debug("Loaded decks", zap.Int("count", len(decks)))
	return &decks
}

// Decks returns a copy of the current snapshot
func (s *Store) Decks() []Deck {
	return cloneDecks(*s.snapshot.Load())
}

// Len returns the number of decks
func (s *Store) Len() int {
	return len(*s.snapshot.Load())
}

// GetDeck returns a copy of the deck with the given id
func (s *Store) GetDeck(id string) (Deck, bool) {
	decks := *s.snapshot.Load()
	if i := findDeck(decks, id); i >= 0 {
		return decks[i].clone(), true
	}
	return Deck{}, false
}

// CreateDeck adds an empty deck. A blank title becomes DefaultTitle.
func (s *Store) CreateDeck(title string) Deck {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	var created Deck
	s.mutate(func(decks []Deck) ([]Deck, bool) {
		now := s.now()
		created = Deck{
			ID:        s.newID(),
			Title:     title,
			Cards:     []Card{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return append(decks, created), true
	})
	return created.clone()
}

// UpdateDeck replaces the supplied fields. Cards without an id get one.
func (s *Store) UpdateDeck(id string, update DeckUpdate) {
	s.mutate(func(decks []Deck) ([]Deck, bool) {
		i := findDeck(decks, id)
		if i < 0 {
			return nil, false
		}

		if update.Title != nil {
			decks[i].Title = *update.Title
		}
		if update.Cards != nil {
			cards := make([]Card, len(*update.Cards))
			for j, c := range *update.Cards {
				if c.ID == "" {
					c.ID = s.newID()
				}
				cards[j] = c
			}
			decks[i].Cards = cards
		}
		decks[i].UpdatedAt = s.now()
		return decks, true
	})
}

// DeleteDeck removes a deck. Unknown ids are ignored.
func (s *Store) DeleteDeck(id string) {
	s.mutate(func(decks []Deck) ([]Deck, bool) {
		i := findDeck(decks, id)
		if i < 0 {
			return nil, false
		}
		return append(decks[:i], decks[i+1:]...), true
	})
}

// AddCards appends cards with fresh ids in the given order
func (s *Store) AddCards(deckID string, cards []flashcard.Card) {
	if len(cards) == 0 {
		return
	}

	s.mutate(func(decks []Deck) ([]Deck, bool) {
		i := findDeck(decks, deckID)
		if i < 0 {
			return nil, false
		}

		for _, c := range cards {
			decks[i].Cards = append(decks[i].Cards, Card{
				ID:       s.newID(),
				Question: c.Question,
				Answer:   c.Answer,
			})
		}
		decks[i].UpdatedAt = s.now()
		return decks, true
	})
}

// UpdateCard replaces the text of a card in place
func (s *Store) UpdateCard(deckID, cardID, question, answer string) {
	s.mutate(func(decks []Deck) ([]Deck, bool) {
		i := findDeck(decks, deckID)
		if i < 0 {
			return nil, false
		}
		j := decks[i].FindCard(cardID)
		if j < 0 {
			return nil, false
		}

		decks[i].Cards[j].Question = question
		decks[i].Cards[j].Answer = answer
		decks[i].UpdatedAt = s.now()
		return decks, true
	})
}

// DeleteCard removes a card. Unknown decks or cards are ignored.
func (s *Store) DeleteCard(deckID, cardID string) {
	s.mutate(func(decks []Deck) ([]Deck, bool) {
		i := findDeck(decks, deckID)
		if i < 0 {
			return nil, false
		}
		j := decks[i].FindCard(cardID)
		if j < 0 {
			return nil, false
		}

		decks[i].Cards = append(decks[i].Cards[:j], decks[i].Cards[j+1:]...)
		decks[i].UpdatedAt = s.now()
		return decks, true
	})
}

// Subscribe registers fn to receive every new snapshot. Callbacks run
// synchronously on the mutating goroutine and must not mutate the store.
func (s *Store) Subscribe(fn func([]Deck)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// mutate applies fn to a private copy of the snapshot. When fn reports a
// change the copy is published, saved and announced.
func (s *Store) mutate(fn func(decks []Deck) ([]Deck, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(cloneDecks(*s.snapshot.Load()))
	if !changed {
		return
	}
	if next == nil {
		next = []Deck{}
	}

	s.snapshot.Store(&next)
	s.save(next)
	s.notify(next)
}

func (s *Store) save(decks []Deck) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(decks); err != nil {
		s.logger.Warn("Failed to save decks", zap.Error(err))
	}
}

func (s *Store) notify(decks []Deck) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(cloneDecks(decks))
	}
}
