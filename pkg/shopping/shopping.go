package shopping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShoppingItem struct {
	Id          uuid.UUID
	Name        string
	Quantity    int
	Price       decimal.Decimal
	IsPurchased bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s ShoppingItem) Identity() uuid.UUID {
	return s.Id
}

// Total is price × quantity.
func (s ShoppingItem) Total() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}
