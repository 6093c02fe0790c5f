package admin

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	CountItems(ctx context.Context) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListAccounts(ctx context.Context) ([]Account, error) {
	query := `SELECT id, is_active, last_login_at, created_at FROM users ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		log.Errorf("failed to list accounts: %v", err)
		return nil, err
	}
	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Account, error) {
		var a Account
		err := row.Scan(&a.Id, &a.IsActive, &a.LastLoginAt, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		log.Errorf("failed to scan accounts: %v", err)
		return nil, err
	}
	return accounts, nil
}

func (r *RepositoryImpl) CountItems(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM items`).Scan(&count); err != nil {
		log.Errorf("failed to count items: %v", err)
		return 0, err
	}
	return count, nil
}
