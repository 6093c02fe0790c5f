package investment

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
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidType   = errors.New("unknown investment type")
	ErrInvalidAmount = errors.New("amount must not be negative")
	ErrInvalidRate   = errors.New("rate must be between 0 and 9999.99")
)

type Service interface {
	List(ctx context.Context) ([]Investment, error)
	Create(ctx context.Context, investment Investment) (Investment, error)
	Update(ctx context.Context, investment Investment) (Investment, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	GetSettings(ctx context.Context) (FinancialSettings, error)
	UpdateSettings(ctx context.Context, settings FinancialSettings) (FinancialSettings, error)
}

type ServiceImpl struct {
	repo     Repository
	sessions *collection.Sessions[Investment]
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	sessions := collection.NewSessions[Investment](repo.List, clock)
	sessions.InvalidateOnSignOut(eventBus)
	return &ServiceImpl{repo: repo, sessions: sessions, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Investment, error) {
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

func (s *ServiceImpl) Create(ctx context.Context, investment Investment) (Investment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Investment{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if investment, err = validate(investment); err != nil {
		return Investment{}, err
	}

	created, err := s.repo.Create(ctx, userId, investment)
	if err != nil {
		return Investment{}, err
	}
	s.sessions.Mutate(userId, func(store *collection.Store[Investment]) error {
		store.Add(created)
		return nil
	})

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.InvestmentCreatedType, event_bus.InvestmentCreated{
		UserId: userId,
		Id:     created.Id,
		Name:   created.Name,
		Type:   string(created.Type),
		Amount: created.Amount,
	}))
	if err != nil {
		log.Warnf("failed to publish investment %s: %v", created.Id, err)
	}
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, investment Investment) (Investment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Investment{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if investment, err = validate(investment); err != nil {
		return Investment{}, err
	}

	updated, err := s.repo.Update(ctx, userId, investment)
	if err != nil {
		return Investment{}, err
	}
	s.sessions.Mutate(userId, func(store *collection.Store[Investment]) error {
		return store.Update(updated)
	})
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	_, deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return false, err
	}
	s.sessions.Mutate(userId, func(store *collection.Store[Investment]) error {
		store.Remove(id)
		return nil
	})
	return deleted, nil
}

// GetSettings returns the user's rates, or the defaults when none were saved.
func (s *ServiceImpl) GetSettings(ctx context.Context) (FinancialSettings, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return FinancialSettings{}, fmt.Errorf("failed to get current user: %w", err)
	}
	settings, err := s.repo.GetSettings(ctx, userId)
	if errors.Is(err, ErrSettingsNotFound) {
		return DefaultSettings(), nil
	}
	return settings, err
}

func (s *ServiceImpl) UpdateSettings(ctx context.Context, settings FinancialSettings) (FinancialSettings, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return FinancialSettings{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !validRate(settings.CdiRate) || !validRate(settings.SelicRate) {
		return FinancialSettings{}, ErrInvalidRate
	}
	return s.repo.StoreSettings(ctx, userId, settings)
}

func validate(investment Investment) (Investment, error) {
	investment.Name = strings.TrimSpace(investment.Name)
	if investment.Name == "" {
		return Investment{}, ErrEmptyName
	}
	if !investment.Type.Valid() {
		return Investment{}, ErrInvalidType
	}
	if investment.Amount.IsNegative() {
		return Investment{}, ErrInvalidAmount
	}
	return investment, nil
}

// SimulateBudget validates the budget before running SimulateQuotas.
func SimulateBudget(budget decimal.Decimal) ([]QuotaSimulation, error) {
	if budget.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return SimulateQuotas(budget), nil
}

var maxRate = decimal.RequireFromString("9999.99")

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && !rate.GreaterThan(maxRate)
}
