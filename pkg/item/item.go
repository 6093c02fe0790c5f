package item

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a savings goal: something the household wants to buy, with the money set aside so far.
type Item struct {
	Id            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	Quantity      int
	AmountSaved   decimal.Decimal
	ImageUrl      string
	PurchaseLinks []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (i Item) Identity() uuid.UUID {
	return i.Id
}

// ItemEntry is one contribution towards an item. Entries are never edited.
type ItemEntry struct {
	Id          uuid.UUID
	ItemId      uuid.UUID
	Amount      decimal.Decimal
	Quantity    int
	Description string
	CreatedAt   time.Time
}
