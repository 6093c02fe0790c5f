package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/investment"
	"github.com/cofrinho/cofrinho/pkg/item"
	"github.com/cofrinho/cofrinho/pkg/shopping"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ItemSource interface {
	ListItems(ctx context.Context) ([]item.Item, error)
}

type ShoppingSource interface {
	List(ctx context.Context) ([]shopping.ShoppingItem, error)
}

type InvestmentSource interface {
	List(ctx context.Context) ([]investment.Investment, error)
	GetSettings(ctx context.Context) (investment.FinancialSettings, error)
}

// Summary is a point-in-time roll-up of everything the user tracks.
type Summary struct {
	GeneratedAt time.Time

	ItemCount      int
	ItemsCompleted int
	TotalValue     decimal.Decimal
	TotalSaved     decimal.Decimal
	TotalRemaining decimal.Decimal
	GlobalProgress decimal.Decimal

	ShoppingCount          int
	ShoppingTotal          decimal.Decimal
	ShoppingPurchasedTotal decimal.Decimal

	InvestmentsByType []TypeTotal
	InvestmentsTotal  decimal.Decimal
	Settings          investment.FinancialSettings
	// YearlyProjection is InvestmentsTotal at the CDI rate for one year.
	YearlyProjection decimal.Decimal
}

// ShoppingPending is what is still to be spent on the list.
func (s Summary) ShoppingPending() decimal.Decimal {
	return s.ShoppingTotal.Sub(s.ShoppingPurchasedTotal)
}

type SummaryService interface {
	GetSummary(ctx context.Context) (Summary, error)
}

type SummaryServiceImpl struct {
	items       ItemSource
	shopping    ShoppingSource
	investments InvestmentSource
	clock       utils.Clock
}

func NewSummaryService(items ItemSource, shopping ShoppingSource, investments InvestmentSource, clock utils.Clock) *SummaryServiceImpl {
	return &SummaryServiceImpl{
		items:       items,
		shopping:    shopping,
		investments: investments,
		clock:       clock,
	}
}

// GetSummary loads the four collections concurrently and rolls them up.
// The first failing load cancels the others.
func (s *SummaryServiceImpl) GetSummary(ctx context.Context) (Summary, error) {
	var (
		items       []item.Item
		list        []shopping.ShoppingItem
		investments []investment.Investment
		settings    investment.FinancialSettings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if items, err = s.items.ListItems(gctx); err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if list, err = s.shopping.List(gctx); err != nil {
			return fmt.Errorf("failed to list shopping items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if investments, err = s.investments.List(gctx); err != nil {
			return fmt.Errorf("failed to list investments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if settings, err = s.investments.GetSettings(gctx); err != nil {
			return fmt.Errorf("failed to get financial settings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return Build(items, list, investments, settings, s.clock.Now()), nil
}

// Build assembles a Summary from already loaded snapshots.
func Build(items []item.Item, list []shopping.ShoppingItem, investments []investment.Investment, settings investment.FinancialSettings, now time.Time) Summary {
	completed := 0
	for _, i := range items {
		if i.GoalReached() {
			completed++
		}
	}
	value := TotalValue(items)
	saved := TotalSaved(items)
	invested := InvestmentsTotal(investments)

	return Summary{
		GeneratedAt:            now,
		ItemCount:              len(items),
		ItemsCompleted:         completed,
		TotalValue:             value,
		TotalSaved:             saved,
		TotalRemaining:         decimal.Max(value.Sub(saved), decimal.Zero),
		GlobalProgress:         GlobalProgress(items),
		ShoppingCount:          len(list),
		ShoppingTotal:          ShoppingTotal(list),
		ShoppingPurchasedTotal: ShoppingPurchasedTotal(list),
		InvestmentsByType:      InvestmentsByType(investments),
		InvestmentsTotal:       invested,
		Settings:               settings,
		YearlyProjection:       investment.Projection(invested, settings.CdiRate),
	}
}
