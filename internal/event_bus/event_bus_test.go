package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should deliver to handlers in subscription order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var calls []string
		bus.Subscribe(ItemDeletedType, func(e Event) error {
			calls = append(calls, "first")
			return nil
		})
		bus.Subscribe(ItemDeletedType, func(e Event) error {
			calls = append(calls, "second")
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), ItemDeletedType, ItemDeleted{UserId: 1}))

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("should keep delivering after a handler fails or panics", func(t *testing.T) {
		// given
		bus := NewEventBus()
		failure := errors.New("sink down")
		delivered := false
		bus.Subscribe(ItemDeletedType, func(e Event) error { return failure })
		bus.Subscribe(ItemDeletedType, func(e Event) error { panic("boom") })
		bus.Subscribe(ItemDeletedType, func(e Event) error {
			delivered = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), ItemDeletedType, ItemDeleted{}))

		// then
		assert.True(t, delivered)
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "2 handler(s) failed")
	})

	t.Run("should not deliver after unsubscribe", func(t *testing.T) {
		// given
		bus := NewEventBus()
		count := 0
		unsubscribe := bus.Subscribe(UserSignedOutType, func(e Event) error {
			count++
			return nil
		})
		unsubscribe()

		// when
		err := bus.Publish(NewEvent(context.Background(), UserSignedOutType, UserSignedOut{UserId: 1}))

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("should refuse cancelled context", func(t *testing.T) {
		// given
		bus := NewEventBus()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		err := bus.Publish(NewEvent(ctx, UserSignedOutType, UserSignedOut{}))

		// then
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSubscribeTyped(t *testing.T) {
	t.Run("should pass typed payload", func(t *testing.T) {
		// given
		bus := NewEventBus()
		itemId := uuid.New()
		var received ItemEntryAdded
		SubscribeTyped(bus, ItemEntryAddedType, func(e EventT[ItemEntryAdded]) error {
			received = e.Data
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), ItemEntryAddedType, ItemEntryAdded{
			UserId:      7,
			ItemId:      itemId,
			ItemName:    "Bike",
			Amount:      decimal.NewFromInt(250),
			AmountSaved: decimal.NewFromInt(500),
		}))

		// then
		require.NoError(t, err)
		assert.Equal(t, 7, received.UserId)
		assert.Equal(t, itemId, received.ItemId)
		assert.True(t, received.AmountSaved.Equal(decimal.NewFromInt(500)))
	})

	t.Run("should skip payloads of another type", func(t *testing.T) {
		// given
		bus := NewEventBus()
		called := false
		SubscribeTyped(bus, ItemEntryAddedType, func(e EventT[ItemEntryAdded]) error {
			called = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), ItemEntryAddedType, "not an entry"))

		// then
		require.NoError(t, err)
		assert.False(t, called)
	})
}
