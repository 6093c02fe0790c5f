package shopping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cofrinho/cofrinho/internal/collection"
	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyName       = errors.New("name is required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

type Service interface {
	List(ctx context.Context) ([]ShoppingItem, error)
	Create(ctx context.Context, item ShoppingItem) (ShoppingItem, error)
	Update(ctx context.Context, item ShoppingItem) (ShoppingItem, error)
	SetPurchased(ctx context.Context, id uuid.UUID, purchased bool) (ShoppingItem, error)
	SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (ShoppingItem, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type ServiceImpl struct {
	repo     Repository
	sessions *collection.Sessions[ShoppingItem]
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	sessions := collection.NewSessions[ShoppingItem](repo.List, clock)
	sessions.InvalidateOnSignOut(eventBus)
	return &ServiceImpl{repo: repo, sessions: sessions, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]ShoppingItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	store, err := s.sessions.Load(ctx, userId)
	if err != nil {
		return nil, err
	}
	return store.List(), nil
}

func (s *ServiceImpl) Create(ctx context.Context, item ShoppingItem) (ShoppingItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ShoppingItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if item, err = validate(item); err != nil {
		return ShoppingItem{}, err
	}

	created, err := s.repo.Create(ctx, userId, item)
	if err != nil {
		return ShoppingItem{}, err
	}
	s.sessions.Mutate(userId, func(store *collection.Store[ShoppingItem]) error {
		store.Add(created)
		return nil
	})
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, item ShoppingItem) (ShoppingItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ShoppingItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if item, err = validate(item); err != nil {
		return ShoppingItem{}, err
	}

	updated, err := s.repo.Update(ctx, userId, item)
	if err != nil {
		return ShoppingItem{}, err
	}
	s.mirror(userId, updated)
	return updated, nil
}

func (s *ServiceImpl) SetPurchased(ctx context.Context, id uuid.UUID, purchased bool) (ShoppingItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ShoppingItem{}, fmt.Errorf("failed to get current user: %w", err)
	}

	updated, err := s.repo.SetPurchased(ctx, userId, id, purchased)
	if err != nil {
		return ShoppingItem{}, err
	}
	s.mirror(userId, updated)

	if purchased {
		err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.ShoppingItemBoughtType, event_bus.ShoppingItemPurchased{
			UserId: userId,
			Id:     updated.Id,
			Name:   updated.Name,
			Total:  updated.Total(),
		}))
		if err != nil {
			log.Warnf("failed to publish purchase of %s: %v", updated.Id, err)
		}
	}
	return updated, nil
}

func (s *ServiceImpl) SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (ShoppingItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ShoppingItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if price.IsNegative() {
		return ShoppingItem{}, ErrInvalidPrice
	}

	updated, err := s.repo.SetPrice(ctx, userId, id, price)
	if err != nil {
		return ShoppingItem{}, err
	}
	s.mirror(userId, updated)
	return updated, nil
}

// Delete removes the entry. An unknown id is not an error.
func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return false, err
	}
	s.sessions.Mutate(userId, func(store *collection.Store[ShoppingItem]) error {
		store.Remove(id)
		return nil
	})
	return deleted, nil
}

func (s *ServiceImpl) mirror(userId int, item ShoppingItem) {
	s.sessions.Mutate(userId, func(store *collection.Store[ShoppingItem]) error {
		return store.Update(item)
	})
}

func validate(item ShoppingItem) (ShoppingItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ShoppingItem{}, ErrEmptyName
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Quantity < 1 {
		return ShoppingItem{}, ErrInvalidQuantity
	}
	if item.Price.IsNegative() {
		return ShoppingItem{}, ErrInvalidPrice
	}
	return item, nil
}
