package investment

import (
	"context"
	"sync"
	"time"

	"github.com/cofrinho/cofrinho/internal/collection"
	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu          sync.Mutex
	investments map[int]*collection.Store[Investment]
	settings    map[int]FinancialSettings
	now         time.Time
	Err         error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		investments: map[int]*collection.Store[Investment]{},
		settings:    map[int]FinancialSettings{},
		now:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments = map[int]*collection.Store[Investment]{}
	s.settings = map[int]FinancialSettings{}
	s.Err = nil
}

func (s *RepositoryStub) store(userId int) *collection.Store[Investment] {
	if _, ok := s.investments[userId]; !ok {
		s.investments[userId] = collection.NewStore[Investment](nil)
	}
	return s.investments[userId]
}

func (s *RepositoryStub) List(ctx context.Context, userId int) ([]Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(userId).List(), nil
}

func (s *RepositoryStub) Create(ctx context.Context, userId int, investment Investment) (Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Investment{}, s.Err
	}
	s.now = s.now.Add(time.Second)
	investment.Id = uuid.New()
	investment.CreatedAt = s.now
	investment.UpdatedAt = s.now
	s.store(userId).Add(investment)
	return investment, nil
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, investment Investment) (Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Investment{}, s.Err
	}
	existing, ok := s.store(userId).Get(investment.Id)
	if !ok {
		return Investment{}, ErrInvestmentNotFound
	}
	s.now = s.now.Add(time.Second)
	investment.CreatedAt = existing.CreatedAt
	investment.UpdatedAt = s.now
	_ = s.store(userId).Update(investment)
	return investment, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id uuid.UUID) (Investment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return Investment{}, false, s.Err
	}
	existing, ok := s.store(userId).Get(id)
	if !ok {
		return Investment{}, false, nil
	}
	s.store(userId).Remove(id)
	return existing, true, nil
}

func (s *RepositoryStub) GetSettings(ctx context.Context, userId int) (FinancialSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.settings[userId]
	if !ok {
		return FinancialSettings{}, ErrSettingsNotFound
	}
	return settings, nil
}

func (s *RepositoryStub) StoreSettings(ctx context.Context, userId int, settings FinancialSettings) (FinancialSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return FinancialSettings{}, s.Err
	}
	s.settings[userId] = settings
	return settings, nil
}
