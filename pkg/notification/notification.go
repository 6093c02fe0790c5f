package notification

import (
	"context"
	"time"
)

type Kind string

const (
	KindEntryAdded        Kind = "entry_added"
	KindGoalReached       Kind = "goal_reached"
	KindItemDeleted       Kind = "item_deleted"
	KindInvestmentCreated Kind = "investment_created"
	KindShoppingPurchased Kind = "shopping_purchased"
)

type Notification struct {
	UserId    int       `json:"userId"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink delivers a notification somewhere. Delivery is best effort.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}
