package example

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("item not found")

type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" openapi:"description=Display name,example=Widget"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ItemInput struct {
	Name string   `json:"name" openapi:"description=Display name,example=Widget"`
	Tags []string `json:"tags,omitempty"`
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// Store keeps items in memory, ordered by creation.
type Store struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Item
	order []uuid.UUID
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		items: make(map[uuid.UUID]Item),
		now:   time.Now,
	}
}

func (s *Store) Create(in ItemInput) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	item := Item{
		ID:        uuid.New(),
		Name:      in.Name,
		Tags:      slices.Clone(in.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item
}

func (s *Store) Get(id uuid.UUID) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

// List returns items in creation order. A non-empty tag keeps only items
// carrying it and a positive limit caps the result.
func (s *Store) List(tag string, limit int) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		if tag != "" && !slices.Contains(item.Tags, tag) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *Store) Update(id uuid.UUID, in ItemInput) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	item.Name = in.Name
	item.Tags = slices.Clone(in.Tags)
	item.UpdatedAt = s.now().UTC()
	s.items[id] = item
	return item, nil
}

func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
