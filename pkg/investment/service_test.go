package investment

import (
	"context"
	"testing"
	"time"

	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Uid: "user-1"})

var repoStub = NewRepositoryStub()
var eventBus *event_bus.EventBus
var service *ServiceImpl

func setup(t *testing.T) func() {
	eventBus = event_bus.NewEventBus()
	service = NewService(repoStub, eventBus, &utils.MockClock{FixedNow: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)})
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create and publish", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		var published []event_bus.InvestmentCreated
		event_bus.SubscribeTyped(eventBus, event_bus.InvestmentCreatedType, func(e event_bus.EventT[event_bus.InvestmentCreated]) error {
			published = append(published, e.Data)
			return nil
		})

		// when
		created, err := service.Create(ctx, Investment{Name: "Tesouro Selic 2029", Type: TreasuryDirect, Amount: decimal.NewFromInt(100)})

		// then
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.Id)
		require.Len(t, published, 1)
		assert.Equal(t, "treasury_direct", published[0].Type)
	})

	t.Run("should accept a zero amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, Investment{Name: "Reserva", Type: FixedIncome, Amount: decimal.Zero})

		// then
		require.NoError(t, err)
		assert.True(t, created.Amount.IsZero())
	})

	t.Run("should reject invalid investments", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, Investment{Name: "X", Type: "crypto", Amount: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, ErrInvalidType)

		_, err = service.Create(ctx, Investment{Name: "X", Type: FixedIncome, Amount: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = service.Create(ctx, Investment{Name: " ", Type: FixedIncome, Amount: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, ErrEmptyName)
	})
}

func TestServiceImpl_UpdateAndDelete(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	created, err := service.Create(ctx, Investment{Name: "CDB", Type: FixedIncome, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = service.List(ctx)
	require.NoError(t, err)

	// when
	created.Amount = decimal.NewFromInt(150)
	updated, err := service.Update(ctx, created)
	require.NoError(t, err)
	listed, err := service.List(ctx)
	require.NoError(t, err)

	// then
	assert.True(t, decimal.NewFromInt(150).Equal(updated.Amount))
	assert.True(t, decimal.NewFromInt(150).Equal(listed[0].Amount))

	deleted, err := service.Delete(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = service.Delete(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = service.Update(ctx, created)
	assert.ErrorIs(t, err, ErrInvestmentNotFound)
}

func TestServiceImpl_Settings(t *testing.T) {
	t.Run("should default to 10.75", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		settings, err := service.GetSettings(ctx)

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("10.75").Equal(settings.CdiRate))
		assert.True(t, decimal.RequireFromString("10.75").Equal(settings.SelicRate))
	})

	t.Run("should store rates", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.UpdateSettings(ctx, FinancialSettings{CdiRate: decimal.RequireFromString("12.15"), SelicRate: decimal.RequireFromString("12.25")})
		require.NoError(t, err)
		settings, err := service.GetSettings(ctx)

		// then
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("12.15").Equal(settings.CdiRate))
	})

	t.Run("should reject negative rates", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.UpdateSettings(ctx, FinancialSettings{CdiRate: decimal.NewFromInt(-1), SelicRate: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("should reject rates the column cannot hold", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.UpdateSettings(ctx, FinancialSettings{CdiRate: decimal.NewFromInt(1), SelicRate: decimal.NewFromInt(10000)})

		assert.ErrorIs(t, err, ErrInvalidRate)
	})
}

func TestProjection(t *testing.T) {
	yield := Projection(decimal.NewFromInt(1000), decimal.RequireFromString("10.75"))
	assert.True(t, decimal.RequireFromString("107.5").Equal(yield), yield.String())
}

func TestSimulateQuotas(t *testing.T) {
	t.Run("should buy whole quotas only", func(t *testing.T) {
		// when
		simulations := SimulateQuotas(decimal.NewFromInt(1000))

		// then
		require.Len(t, simulations, 2)
		assert.Equal(t, "CTPS11", simulations[0].Fund.Ticker)
		assert.Equal(t, int64(10), simulations[0].Quotas)
		assert.True(t, decimal.RequireFromString("9.5").Equal(simulations[0].MonthlyDividend))
		assert.True(t, decimal.RequireFromString("955").Equal(simulations[0].Invested))
		assert.Equal(t, "MXRF11", simulations[1].Fund.Ticker)
		assert.Equal(t, int64(102), simulations[1].Quotas)
		assert.True(t, decimal.RequireFromString("8.16").Equal(simulations[1].MonthlyDividend))
	})

	t.Run("should buy nothing with a small budget", func(t *testing.T) {
		simulations := SimulateQuotas(decimal.NewFromInt(5))
		assert.Equal(t, int64(0), simulations[0].Quotas)
		assert.Equal(t, int64(0), simulations[1].Quotas)
	})

	t.Run("should reject negative budget", func(t *testing.T) {
		_, err := SimulateBudget(decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}
