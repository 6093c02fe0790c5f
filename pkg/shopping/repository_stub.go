package shopping

import (
	"context"
	"sync"
	"time"

	"github.com/cofrinho/cofrinho/internal/collection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RepositoryStub struct {
	mu    sync.Mutex
	lists map[int]*collection.Store[ShoppingItem]
	now   time.Time
	Err   error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		lists: map[int]*collection.Store[ShoppingItem]{},
		now:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = map[int]*collection.Store[ShoppingItem]{}
	s.Err = nil
}

func (s *RepositoryStub) list(userId int) *collection.Store[ShoppingItem] {
	if _, ok := s.lists[userId]; !ok {
		s.lists[userId] = collection.NewStore[ShoppingItem](nil)
	}
	return s.lists[userId]
}

func (s *RepositoryStub) List(ctx context.Context, userId int) ([]ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(userId).List(), nil
}

func (s *RepositoryStub) Create(ctx context.Context, userId int, item ShoppingItem) (ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return ShoppingItem{}, s.Err
	}
	s.now = s.now.Add(time.Second)
	item.Id = uuid.New()
	item.CreatedAt = s.now
	item.UpdatedAt = s.now
	s.list(userId).Add(item)
	return item, nil
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, item ShoppingItem) (ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modify(userId, item.Id, func(existing *ShoppingItem) {
		existing.Name = item.Name
		existing.Quantity = item.Quantity
		existing.Price = item.Price
		existing.IsPurchased = item.IsPurchased
	})
}

func (s *RepositoryStub) SetPurchased(ctx context.Context, userId int, id uuid.UUID, purchased bool) (ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modify(userId, id, func(existing *ShoppingItem) {
		existing.IsPurchased = purchased
	})
}

func (s *RepositoryStub) SetPrice(ctx context.Context, userId int, id uuid.UUID, price decimal.Decimal) (ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modify(userId, id, func(existing *ShoppingItem) {
		existing.Price = price
	})
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.list(userId).Remove(id), nil
}

func (s *RepositoryStub) modify(userId int, id uuid.UUID, change func(*ShoppingItem)) (ShoppingItem, error) {
	if s.Err != nil {
		return ShoppingItem{}, s.Err
	}
	item, ok := s.list(userId).Get(id)
	if !ok {
		return ShoppingItem{}, ErrShoppingItemNotFound
	}
	change(&item)
	s.now = s.now.Add(time.Second)
	item.UpdatedAt = s.now
	_ = s.list(userId).Update(item)
	return item, nil
}
