package shopping

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrShoppingItemNotFound = errors.New("shopping item not found")

type Repository interface {
	List(ctx context.Context, userId int) ([]ShoppingItem, error)
	Create(ctx context.Context, userId int, item ShoppingItem) (ShoppingItem, error)
	Update(ctx context.Context, userId int, item ShoppingItem) (ShoppingItem, error)
	SetPurchased(ctx context.Context, userId int, id uuid.UUID, purchased bool) (ShoppingItem, error)
	SetPrice(ctx context.Context, userId int, id uuid.UUID, price decimal.Decimal) (ShoppingItem, error)
	Delete(ctx context.Context, userId int, id uuid.UUID) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const columns = `id, name, quantity, price, is_purchased, created_at, updated_at`

func (r *RepositoryImpl) List(ctx context.Context, userId int) ([]ShoppingItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM shopping_list WHERE user_id = $1 ORDER BY created_at DESC, id`, userId)
	if err != nil {
		err := fmt.Errorf("could not query shopping list: %w", err)
		log.Error(err)
		return nil, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ShoppingItem, error) {
		return scan(row)
	})
	if err != nil {
		err := fmt.Errorf("error reading shopping list: %w", err)
		log.Error(err)
		return nil, err
	}
	return items, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userId int, item ShoppingItem) (ShoppingItem, error) {
	query := `INSERT INTO shopping_list (user_id, name, quantity, price, is_purchased)
				VALUES ($1, $2, $3, $4, $5) RETURNING ` + columns
	return r.one(r.db.QueryRow(ctx, query, userId, item.Name, item.Quantity, item.Price, item.IsPurchased), "create shopping item")
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, item ShoppingItem) (ShoppingItem, error) {
	query := `UPDATE shopping_list SET name = $1, quantity = $2, price = $3, is_purchased = $4, updated_at = now()
				WHERE user_id = $5 AND id = $6 RETURNING ` + columns
	return r.one(r.db.QueryRow(ctx, query, item.Name, item.Quantity, item.Price, item.IsPurchased, userId, item.Id), "update shopping item")
}

func (r *RepositoryImpl) SetPurchased(ctx context.Context, userId int, id uuid.UUID, purchased bool) (ShoppingItem, error) {
	query := `UPDATE shopping_list SET is_purchased = $1, updated_at = now() WHERE user_id = $2 AND id = $3 RETURNING ` + columns
	return r.one(r.db.QueryRow(ctx, query, purchased, userId, id), "mark shopping item")
}

func (r *RepositoryImpl) SetPrice(ctx context.Context, userId int, id uuid.UUID, price decimal.Decimal) (ShoppingItem, error) {
	query := `UPDATE shopping_list SET price = $1, updated_at = now() WHERE user_id = $2 AND id = $3 RETURNING ` + columns
	return r.one(r.db.QueryRow(ctx, query, price, userId, id), "set shopping item price")
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM shopping_list WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete shopping item: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) one(row pgx.Row, operation string) (ShoppingItem, error) {
	item, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ShoppingItem{}, ErrShoppingItemNotFound
		}
		err := fmt.Errorf("could not %s: %w", operation, err)
		log.Error(err)
		return ShoppingItem{}, err
	}
	return item, nil
}

func scan(row pgx.Row) (ShoppingItem, error) {
	var item ShoppingItem
	err := row.Scan(&item.Id, &item.Name, &item.Quantity, &item.Price, &item.IsPurchased, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
