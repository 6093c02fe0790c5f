package item

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cofrinho/cofrinho/internal/collection"
	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/storage"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidSaved    = errors.New("amount saved must not be negative")
	ErrEmptyName       = errors.New("name is required")
)

type Service interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) (Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (bool, error)
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (Item, error)
	AddEntry(ctx context.Context, itemId uuid.UUID, amount decimal.Decimal, quantity int, description string) (Item, ItemEntry, error)
	ListEntries(ctx context.Context, itemId uuid.UUID) ([]ItemEntry, error)
	RecalculateAmountSaved(ctx context.Context, itemId uuid.UUID) (Item, error)
	UploadImage(ctx context.Context, upload storage.Upload) (string, error)
}

type ServiceImpl struct {
	repo     Repository
	sessions *collection.Sessions[Item]
	storage  storage.Storage
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, storage storage.Storage, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	sessions := collection.NewSessions[Item](repo.ListItems, clock)
	sessions.InvalidateOnSignOut(eventBus)
	return &ServiceImpl{
		repo:     repo,
		sessions: sessions,
		storage:  storage,
		eventBus: eventBus,
		clock:    clock,
	}
}

// ListItems returns the user's items, newest first.
func (s *ServiceImpl) ListItems(ctx context.Context) ([]Item, error) {
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

func (s *ServiceImpl) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if store, ok := s.sessions.Peek(userId); ok {
		if item, found := store.Get(id); found {
			return item, nil
		}
	}
	return s.repo.GetItem(ctx, userId, id)
}

func (s *ServiceImpl) CreateItem(ctx context.Context, item Item) (Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current user: %w", err)
	}
	item, err = normalize(item)
	if err != nil {
		return Item{}, err
	}

	created, err := s.repo.CreateItem(ctx, userId, item)
	if err != nil {
		return Item{}, err
	}
	s.sessions.Mutate(userId, func(store *collection.Store[Item]) error {
		store.Add(created)
		return nil
	})
	return created, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, item Item) (Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current user: %w", err)
	}
	item, err = normalize(item)
	if err != nil {
		return Item{}, err
	}

	updated, err := s.repo.UpdateItem(ctx, userId, item)
	if err != nil {
		return Item{}, err
	}
	s.mirror(userId, updated)
	return updated, nil
}

// DeleteItem removes the item and its entries. Deleting an unknown item is not an error.
func (s *ServiceImpl) DeleteItem(ctx context.Context, id uuid.UUID) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	deleted, ok, err := s.repo.DeleteItem(ctx, userId, id)
	if err != nil {
		return false, err
	}
	s.sessions.Mutate(userId, func(store *collection.Store[Item]) error {
		store.Remove(id)
		return nil
	})
	if ok && deleted.ImageUrl != "" {
		if err := storage.DeleteUrl(ctx, s.storage, deleted.ImageUrl); err != nil {
			log.Warnf("failed to delete image of item %s: %v", deleted.Id, err)
		}
	}
	if ok {
		s.publish(ctx, event_bus.ItemDeletedType, event_bus.ItemDeleted{
			UserId:   userId,
			ItemId:   deleted.Id,
			ItemName: deleted.Name,
		})
	}
	return ok, nil
}

// SetQuantity changes how many units the goal covers; the target follows as price × quantity.
func (s *ServiceImpl) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if quantity < 1 {
		return Item{}, ErrInvalidQuantity
	}

	updated, err := s.repo.SetQuantity(ctx, userId, id, quantity)
	if err != nil {
		return Item{}, err
	}
	s.mirror(userId, updated)
	return updated, nil
}

// AddEntry records a contribution and adds it to the item's amount saved.
// A quantity of 0 means one unit.
func (s *ServiceImpl) AddEntry(ctx context.Context, itemId uuid.UUID, amount decimal.Decimal, quantity int, description string) (Item, ItemEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, ItemEntry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !amount.IsPositive() {
		return Item{}, ItemEntry{}, ErrInvalidAmount
	}
	if quantity < 0 {
		return Item{}, ItemEntry{}, ErrInvalidQuantity
	}
	if quantity == 0 {
		quantity = 1
	}

	updated, entry, err := s.repo.AddEntry(ctx, userId, ItemEntry{
		ItemId:      itemId,
		Amount:      amount,
		Quantity:    quantity,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return Item{}, ItemEntry{}, err
	}
	s.mirror(userId, updated)

	s.publish(ctx, event_bus.ItemEntryAddedType, event_bus.ItemEntryAdded{
		UserId:      userId,
		ItemId:      updated.Id,
		ItemName:    updated.Name,
		Amount:      entry.Amount,
		AmountSaved: updated.AmountSaved,
		Target:      updated.TotalPrice(),
	})
	before := updated
	before.AmountSaved = updated.AmountSaved.Sub(entry.Amount)
	if updated.GoalReached() && !before.GoalReached() {
		s.publish(ctx, event_bus.ItemGoalReachedType, event_bus.ItemGoalReached{
			UserId:   userId,
			ItemId:   updated.Id,
			ItemName: updated.Name,
			Target:   updated.TotalPrice(),
		})
	}
	return updated, entry, nil
}

func (s *ServiceImpl) ListEntries(ctx context.Context, itemId uuid.UUID) ([]ItemEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListEntries(ctx, userId, itemId)
}

// RecalculateAmountSaved resets the amount saved to the sum of the item's entries.
func (s *ServiceImpl) RecalculateAmountSaved(ctx context.Context, itemId uuid.UUID) (Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current user: %w", err)
	}
	updated, err := s.repo.RecalculateAmountSaved(ctx, userId, itemId)
	if err != nil {
		return Item{}, err
	}
	s.mirror(userId, updated)
	return updated, nil
}

// UploadImage stores an item picture and returns its URL. The client sets it on the item afterwards.
func (s *ServiceImpl) UploadImage(ctx context.Context, upload storage.Upload) (string, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	key := fmt.Sprintf("items/%s/%d.%s", current.Uid, s.clock.Now().UnixMilli(), upload.Extension)
	url, err := s.storage.Put(ctx, key, upload.Reader(), upload.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to store item image: %w", err)
	}
	return url, nil
}

func (s *ServiceImpl) mirror(userId int, item Item) {
	s.sessions.Mutate(userId, func(store *collection.Store[Item]) error {
		return store.Update(item)
	})
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}

func normalize(item Item) (Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return Item{}, ErrEmptyName
	}
	if item.Price.IsNegative() {
		return Item{}, ErrInvalidPrice
	}
	if item.AmountSaved.IsNegative() {
		return Item{}, ErrInvalidSaved
	}
	if item.Quantity < 0 {
		return Item{}, ErrInvalidQuantity
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.PurchaseLinks == nil {
		item.PurchaseLinks = []string{}
	}
	return item, nil
}
