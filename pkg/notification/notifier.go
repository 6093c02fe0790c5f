package notification

import (
	"context"
	"fmt"

	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Notifier turns domain events into notifications and hands them to every sink.
// Sink failures are logged and never reach the publisher.
type Notifier struct {
	sinks    []Sink
	currency string
	clock    utils.Clock
}

func NewNotifier(currency string, clock utils.Clock, sinks ...Sink) *Notifier {
	return &Notifier{
		sinks:    sinks,
		currency: currency,
		clock:    clock,
	}
}

// Subscribe registers the notifier on the bus and returns a function removing all its handlers.
func (n *Notifier) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubscribers := []func(){
		event_bus.SubscribeTyped(bus, event_bus.ItemEntryAddedType, func(e event_bus.EventT[event_bus.ItemEntryAdded]) error {
			n.notify(e.Context(), e.Data.UserId, KindEntryAdded, "Entrada adicionada!",
				fmt.Sprintf("%s foi adicionado a %s. Total guardado: %s de %s.",
					n.money(e.Data.Amount), e.Data.ItemName, n.money(e.Data.AmountSaved), n.money(e.Data.Target)))
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.ItemGoalReachedType, func(e event_bus.EventT[event_bus.ItemGoalReached]) error {
			n.notify(e.Context(), e.Data.UserId, KindGoalReached, "Meta atingida!",
				fmt.Sprintf("Você juntou %s para %s.", n.money(e.Data.Target), e.Data.ItemName))
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.ItemDeletedType, func(e event_bus.EventT[event_bus.ItemDeleted]) error {
			n.notify(e.Context(), e.Data.UserId, KindItemDeleted, "Item removido!",
				fmt.Sprintf("%s foi removido com sucesso.", e.Data.ItemName))
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.InvestmentCreatedType, func(e event_bus.EventT[event_bus.InvestmentCreated]) error {
			n.notify(e.Context(), e.Data.UserId, KindInvestmentCreated, "Investimento registrado!",
				fmt.Sprintf("%s em %s.", n.money(e.Data.Amount), e.Data.Name))
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.ShoppingItemBoughtType, func(e event_bus.EventT[event_bus.ShoppingItemPurchased]) error {
			n.notify(e.Context(), e.Data.UserId, KindShoppingPurchased, "Item comprado!",
				fmt.Sprintf("%s marcado como comprado (%s).", e.Data.Name, n.money(e.Data.Total)))
			return nil
		}),
	}

	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

func (n *Notifier) notify(ctx context.Context, userId int, kind Kind, title, message string) {
	notification := Notification{
		UserId:    userId,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: n.clock.Now(),
	}
	for _, sink := range n.sinks {
		if err := sink.Send(ctx, notification); err != nil {
			log.Warnf("failed to deliver %s notification to user %d: %v", kind, userId, err)
		}
	}
}

func (n *Notifier) money(amount decimal.Decimal) string {
	return utils.FormatMoney(amount, n.currency)
}
