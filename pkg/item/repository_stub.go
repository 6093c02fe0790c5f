package item

import (
	"context"
	"sync"
	"time"

	"github.com/cofrinho/cofrinho/internal/collection"
	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RepositoryStub struct {
	mu      sync.Mutex
	items   map[int]*collection.Store[Item]
	entries map[uuid.UUID][]ItemEntry
	now     time.Time
	// Err, when set, is returned by every mutating call.
	Err error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:   map[int]*collection.Store[Item]{},
		entries: map[uuid.UUID][]ItemEntry{},
		now:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = map[int]*collection.Store[Item]{}
	s.entries = map[uuid.UUID][]ItemEntry{}
	s.Err = nil
}

func (s *RepositoryStub) store(userId int) *collection.Store[Item] {
	store, ok := s.items[userId]
	if !ok {
		store = collection.NewStore[Item](nil)
		s.items[userId] = store
	}
	return store
}

func (s *RepositoryStub) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *RepositoryStub) ListItems(ctx context.Context, userId int) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(userId).List(), nil
}

func (s *RepositoryStub) GetItem(ctx context.Context, userId int, id uuid.UUID) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.store(userId).Get(id)
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (s *RepositoryStub) CreateItem(ctx context.Context, userId int, item Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Item{}, s.Err
	}
	item.Id = uuid.New()
	item.CreatedAt = s.tick()
	item.UpdatedAt = item.CreatedAt
	s.store(userId).Add(item)
	return item, nil
}

func (s *RepositoryStub) UpdateItem(ctx context.Context, userId int, item Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Item{}, s.Err
	}
	existing, ok := s.store(userId).Get(item.Id)
	if !ok {
		return Item{}, ErrItemNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.tick()
	_ = s.store(userId).Update(item)
	return item, nil
}

func (s *RepositoryStub) DeleteItem(ctx context.Context, userId int, id uuid.UUID) (Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Item{}, false, s.Err
	}
	existing, ok := s.store(userId).Get(id)
	if !ok {
		return Item{}, false, nil
	}
	s.store(userId).Remove(id)
	delete(s.entries, id)
	return existing, true, nil
}

func (s *RepositoryStub) SetQuantity(ctx context.Context, userId int, id uuid.UUID, quantity int) (Item, error) {
	return s.modify(userId, id, func(item *Item) {
		item.Quantity = quantity
	})
}

func (s *RepositoryStub) AddEntry(ctx context.Context, userId int, entry ItemEntry) (Item, ItemEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Item{}, ItemEntry{}, s.Err
	}
	item, ok := s.store(userId).Get(entry.ItemId)
	if !ok {
		return Item{}, ItemEntry{}, ErrItemNotFound
	}
	if item.AmountSaved.Add(entry.Amount).GreaterThan(rest.MaxAmount) {
		return Item{}, ItemEntry{}, ErrSavedTooLarge
	}
	entry.Id = uuid.New()
	entry.CreatedAt = s.tick()
	item.AmountSaved = item.AmountSaved.Add(entry.Amount)
	item.UpdatedAt = entry.CreatedAt
	_ = s.store(userId).Update(item)
	s.entries[item.Id] = append([]ItemEntry{entry}, s.entries[item.Id]...)
	return item, entry, nil
}

func (s *RepositoryStub) ListEntries(ctx context.Context, userId int, itemId uuid.UUID) ([]ItemEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store(userId).Get(itemId); !ok {
		return []ItemEntry{}, nil
	}
	result := make([]ItemEntry, len(s.entries[itemId]))
	copy(result, s.entries[itemId])
	return result, nil
}

func (s *RepositoryStub) RecalculateAmountSaved(ctx context.Context, userId int, itemId uuid.UUID) (Item, error) {
	s.mu.Lock()
	entries := s.entries[itemId]
	s.mu.Unlock()
	return s.modify(userId, itemId, func(item *Item) {
		total := decimal.Zero
		for _, entry := range entries {
			total = total.Add(entry.Amount)
		}
		item.AmountSaved = total
	})
}

func (s *RepositoryStub) modify(userId int, id uuid.UUID, change func(*Item)) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Item{}, s.Err
	}
	item, ok := s.store(userId).Get(id)
	if !ok {
		return Item{}, ErrItemNotFound
	}
	change(&item)
	item.UpdatedAt = s.tick()
	_ = s.store(userId).Update(item)
	return item, nil
}
