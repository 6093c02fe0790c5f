package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrSavedTooLarge = errors.New("amount saved would exceed 999999999999.99")
)

const numericOutOfRange = "22003"

type Repository interface {
	ListItems(ctx context.Context, userId int) ([]Item, error)
	GetItem(ctx context.Context, userId int, id uuid.UUID) (Item, error)
	CreateItem(ctx context.Context, userId int, item Item) (Item, error)
	UpdateItem(ctx context.Context, userId int, item Item) (Item, error)
	DeleteItem(ctx context.Context, userId int, id uuid.UUID) (Item, bool, error)
	SetQuantity(ctx context.Context, userId int, id uuid.UUID, quantity int) (Item, error)
	AddEntry(ctx context.Context, userId int, entry ItemEntry) (Item, ItemEntry, error)
	ListEntries(ctx context.Context, userId int, itemId uuid.UUID) ([]ItemEntry, error)
	RecalculateAmountSaved(ctx context.Context, userId int, itemId uuid.UUID) (Item, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const itemColumns = `id, name, COALESCE(description, ''), price, quantity, amount_saved, COALESCE(image_url, ''),
				purchase_links, created_at, updated_at`

func (r *RepositoryImpl) ListItems(ctx context.Context, userId int) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 ORDER BY created_at DESC, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			err := fmt.Errorf("error scanning item row: %w", err)
			log.Error(err)
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over item rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return items, nil
}

func (r *RepositoryImpl) GetItem(ctx context.Context, userId int, id uuid.UUID) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 AND id = $2`
	return r.one(r.db.QueryRow(ctx, query, userId, id), "get item")
}

func (r *RepositoryImpl) CreateItem(ctx context.Context, userId int, item Item) (Item, error) {
	query := `INSERT INTO items (user_id, name, description, price, quantity, amount_saved, image_url, purchase_links)
				VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8)
				RETURNING ` + itemColumns
	return r.one(r.db.QueryRow(ctx, query,
		userId,
		item.Name,
		item.Description,
		item.Price,
		item.Quantity,
		item.AmountSaved,
		item.ImageUrl,
		item.PurchaseLinks,
	), "create item")
}

func (r *RepositoryImpl) UpdateItem(ctx context.Context, userId int, item Item) (Item, error) {
	query := `UPDATE items SET
					name = $1,
					description = NULLIF($2, ''),
					price = $3,
					quantity = $4,
					amount_saved = $5,
					image_url = NULLIF($6, ''),
					purchase_links = $7,
					updated_at = now()
				WHERE user_id = $8 AND id = $9
				RETURNING ` + itemColumns
	return r.one(r.db.QueryRow(ctx, query,
		item.Name,
		item.Description,
		item.Price,
		item.Quantity,
		item.AmountSaved,
		item.ImageUrl,
		item.PurchaseLinks,
		userId,
		item.Id,
	), "update item")
}

func (r *RepositoryImpl) DeleteItem(ctx context.Context, userId int, id uuid.UUID) (Item, bool, error) {
	query := `DELETE FROM items WHERE user_id = $1 AND id = $2 RETURNING ` + itemColumns
	deleted, err := r.one(r.db.QueryRow(ctx, query, userId, id), "delete item")
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return Item{}, false, nil
		}
		return Item{}, false, err
	}
	return deleted, true, nil
}

func (r *RepositoryImpl) SetQuantity(ctx context.Context, userId int, id uuid.UUID, quantity int) (Item, error) {
	query := `UPDATE items SET quantity = $1, updated_at = now() WHERE user_id = $2 AND id = $3 RETURNING ` + itemColumns
	return r.one(r.db.QueryRow(ctx, query, quantity, userId, id), "set item quantity")
}

// AddEntry records the contribution and bumps amount_saved in one transaction.
func (r *RepositoryImpl) AddEntry(ctx context.Context, userId int, entry ItemEntry) (Item, ItemEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Item{}, ItemEntry{}, err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE items SET amount_saved = amount_saved + $1, updated_at = now()
				WHERE user_id = $2 AND id = $3 RETURNING ` + itemColumns
	item, err := r.one(tx.QueryRow(ctx, query, entry.Amount, userId, entry.ItemId), "add amount to item")
	if err != nil {
		return Item{}, ItemEntry{}, err
	}

	entryQuery := `INSERT INTO item_entries (item_id, user_id, amount, quantity, description)
				VALUES ($1, $2, $3, $4, NULLIF($5, ''))
				RETURNING id, item_id, amount, quantity, COALESCE(description, ''), created_at`
	stored, err := scanEntry(tx.QueryRow(ctx, entryQuery, entry.ItemId, userId, entry.Amount, entry.Quantity, entry.Description))
	if err != nil {
		err := fmt.Errorf("could not insert item entry: %w", err)
		log.Error(err)
		return Item{}, ItemEntry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Item{}, ItemEntry{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return item, stored, nil
}

func (r *RepositoryImpl) ListEntries(ctx context.Context, userId int, itemId uuid.UUID) ([]ItemEntry, error) {
	query := `SELECT id, item_id, amount, quantity, COALESCE(description, ''), created_at
				FROM item_entries WHERE user_id = $1 AND item_id = $2 ORDER BY created_at DESC, id`
	rows, err := r.db.Query(ctx, query, userId, itemId)
	if err != nil {
		err := fmt.Errorf("could not query item entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]ItemEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			err := fmt.Errorf("error scanning entry row: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over entry rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return entries, nil
}

// RecalculateAmountSaved rebuilds amount_saved as the sum of the item's entries.
func (r *RepositoryImpl) RecalculateAmountSaved(ctx context.Context, userId int, itemId uuid.UUID) (Item, error) {
	query := `UPDATE items SET amount_saved = (
					SELECT COALESCE(SUM(e.amount), 0) FROM item_entries e WHERE e.item_id = items.id
				), updated_at = now()
				WHERE user_id = $1 AND id = $2 RETURNING ` + itemColumns
	return r.one(r.db.QueryRow(ctx, query, userId, itemId), "recalculate item")
}

func (r *RepositoryImpl) one(row pgx.Row, operation string) (Item, error) {
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == numericOutOfRange {
			return Item{}, ErrSavedTooLarge
		}
		err := fmt.Errorf("could not %s: %w", operation, err)
		log.Error(err)
		return Item{}, err
	}
	return item, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.Id,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Quantity,
		&item.AmountSaved,
		&item.ImageUrl,
		&item.PurchaseLinks,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Item{}, err
	}
	if item.PurchaseLinks == nil {
		item.PurchaseLinks = []string{}
	}
	return item, nil
}

func scanEntry(row pgx.Row) (ItemEntry, error) {
	var entry ItemEntry
	err := row.Scan(
		&entry.Id,
		&entry.ItemId,
		&entry.Amount,
		&entry.Quantity,
		&entry.Description,
		&entry.CreatedAt,
	)
	return entry, err
}
