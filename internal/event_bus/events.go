package event_bus

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ItemEntryAddedType     EventType = "item.entry.added"
	ItemGoalReachedType    EventType = "item.goal.reached"
	ItemDeletedType        EventType = "item.deleted"
	InvestmentCreatedType  EventType = "investment.created"
	UserSignedOutType      EventType = "user.signed_out"
	ShoppingItemBoughtType EventType = "shopping.item.purchased"
)

type ItemEntryAdded struct {
	UserId      int
	ItemId      uuid.UUID
	ItemName    string
	Amount      decimal.Decimal
	AmountSaved decimal.Decimal
	// Target is price × quantity at the time of the contribution.
	Target decimal.Decimal
}

type ItemGoalReached struct {
	UserId   int
	ItemId   uuid.UUID
	ItemName string
	Target   decimal.Decimal
}

type ItemDeleted struct {
	UserId   int
	ItemId   uuid.UUID
	ItemName string
}

type InvestmentCreated struct {
	UserId int
	Id     uuid.UUID
	Name   string
	Type   string
	Amount decimal.Decimal
}

type ShoppingItemPurchased struct {
	UserId int
	Id     uuid.UUID
	Name   string
	Total  decimal.Decimal
}

type UserSignedOut struct {
	UserId int
}
