package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/user"
)

var ErrForbidden = errors.New("admin role required")

type Service interface {
	GetStats(ctx context.Context) (Stats, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) GetStats(ctx context.Context) (Stats, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !current.IsAdmin() {
		return Stats{}, ErrForbidden
	}

	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	items, err := s.repo.CountItems(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count items: %w", err)
	}
	return ComputeStats(accounts, items, s.clock.Now()), nil
}
