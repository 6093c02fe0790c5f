//go:build integration

package investment

import (
	"context"
	"os"
	"testing"

	"github.com/cofrinho/cofrinho/internal/test_utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository, int) {
	ctx := context.Background()
	userId, err := test_utils.CreateTestUser(ctx, db, uuid.NewString()+"@example.com")
	require.NoError(t, err)
	return ctx, NewRepository(db), userId
}

func TestRepositoryImpl_Investments(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	created, err := repo.Create(ctx, userId, Investment{Name: "CDB", Type: FixedIncome, Amount: decimal.RequireFromString("1500.25")})
	require.NoError(t, err)

	// when
	created.Amount = decimal.NewFromInt(2000)
	updated, err := repo.Update(ctx, userId, created)
	require.NoError(t, err)
	list, err := repo.List(ctx, userId)
	require.NoError(t, err)

	// then
	require.Len(t, list, 1)
	assert.Equal(t, updated.Id, list[0].Id)
	assert.True(t, decimal.NewFromInt(2000).Equal(list[0].Amount))

	deleted, found, err := repo.Delete(ctx, userId, created.Id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "CDB", deleted.Name)

	_, found, err = repo.Delete(ctx, userId, created.Id)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = repo.Update(ctx, userId, created)
	assert.ErrorIs(t, err, ErrInvestmentNotFound)
}

func TestRepositoryImpl_Settings(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	_, err := repo.GetSettings(ctx, userId)
	require.ErrorIs(t, err, ErrSettingsNotFound)

	// when
	_, err = repo.StoreSettings(ctx, userId, FinancialSettings{CdiRate: decimal.NewFromInt(12), SelicRate: decimal.NewFromInt(11)})
	require.NoError(t, err)
	_, err = repo.StoreSettings(ctx, userId, FinancialSettings{CdiRate: decimal.RequireFromString("13.65"), SelicRate: decimal.Zero})
	require.NoError(t, err)

	// then
	settings, err := repo.GetSettings(ctx, userId)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("13.65").Equal(settings.CdiRate))
	assert.True(t, settings.SelicRate.IsZero())
}
