package investment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrInvestmentNotFound = errors.New("investment not found")
var ErrSettingsNotFound = errors.New("financial settings not found")

type Repository interface {
	List(ctx context.Context, userId int) ([]Investment, error)
	Create(ctx context.Context, userId int, investment Investment) (Investment, error)
	Update(ctx context.Context, userId int, investment Investment) (Investment, error)
	Delete(ctx context.Context, userId int, id uuid.UUID) (Investment, bool, error)
	GetSettings(ctx context.Context, userId int) (FinancialSettings, error)
	StoreSettings(ctx context.Context, userId int, settings FinancialSettings) (FinancialSettings, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const columns = `id, name, type, amount, created_at, updated_at`

func (r *RepositoryImpl) List(ctx context.Context, userId int) ([]Investment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM investments WHERE user_id = $1 ORDER BY created_at DESC, id`, userId)
	if err != nil {
		err := fmt.Errorf("could not query investments: %w", err)
		log.Error(err)
		return nil, err
	}
	investments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Investment, error) {
		return scan(row)
	})
	if err != nil {
		err := fmt.Errorf("error reading investments: %w", err)
		log.Error(err)
		return nil, err
	}
	return investments, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userId int, investment Investment) (Investment, error) {
	query := `INSERT INTO investments (user_id, name, type, amount) VALUES ($1, $2, $3, $4) RETURNING ` + columns
	return r.one(r.db.QueryRow(ctx, query, userId, investment.Name, string(investment.Type), investment.Amount), "create investment")
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, investment Investment) (Investment, error) {
	query := `UPDATE investments SET name = $1, type = $2, amount = $3, updated_at = now()
				WHERE user_id = $4 AND id = $5 RETURNING ` + columns
	return r.one(r.db.QueryRow(ctx, query, investment.Name, string(investment.Type), investment.Amount, userId, investment.Id), "update investment")
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id uuid.UUID) (Investment, bool, error) {
	deleted, err := r.one(r.db.QueryRow(ctx, `DELETE FROM investments WHERE user_id = $1 AND id = $2 RETURNING `+columns, userId, id), "delete investment")
	if err != nil {
		if errors.Is(err, ErrInvestmentNotFound) {
			return Investment{}, false, nil
		}
		return Investment{}, false, err
	}
	return deleted, true, nil
}

func (r *RepositoryImpl) GetSettings(ctx context.Context, userId int) (FinancialSettings, error) {
	var settings FinancialSettings
	err := r.db.QueryRow(ctx, `SELECT cdi_rate, selic_rate FROM financial_settings WHERE user_id = $1`, userId).
		Scan(&settings.CdiRate, &settings.SelicRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FinancialSettings{}, ErrSettingsNotFound
		}
		err := fmt.Errorf("could not get financial settings: %w", err)
		log.Error(err)
		return FinancialSettings{}, err
	}
	return settings, nil
}

func (r *RepositoryImpl) StoreSettings(ctx context.Context, userId int, settings FinancialSettings) (FinancialSettings, error) {
	query := `INSERT INTO financial_settings (user_id, cdi_rate, selic_rate) VALUES ($1, $2, $3)
				ON CONFLICT (user_id) DO UPDATE SET cdi_rate = EXCLUDED.cdi_rate, selic_rate = EXCLUDED.selic_rate, updated_at = now()
				RETURNING cdi_rate, selic_rate`
	var stored FinancialSettings
	err := r.db.QueryRow(ctx, query, userId, settings.CdiRate, settings.SelicRate).Scan(&stored.CdiRate, &stored.SelicRate)
	if err != nil {
		err := fmt.Errorf("could not store financial settings: %w", err)
		log.Error(err)
		return FinancialSettings{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) one(row pgx.Row, operation string) (Investment, error) {
	investment, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Investment{}, ErrInvestmentNotFound
		}
		err := fmt.Errorf("could not %s: %w", operation, err)
		log.Error(err)
		return Investment{}, err
	}
	return investment, nil
}

func scan(row pgx.Row) (Investment, error) {
	var investment Investment
	var investmentType string
	err := row.Scan(&investment.Id, &investment.Name, &investmentType, &investment.Amount, &investment.CreatedAt, &investment.UpdatedAt)
	investment.Type = Type(investmentType)
	return investment, err
}
