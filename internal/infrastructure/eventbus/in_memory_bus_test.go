package eventbus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/event"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/eventbus"
)

func TestInMemoryBus_ShouldDeliverToTypedAndWildcardHandlers(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	var typed, all []event.Event
	bus.Subscribe(event.PaymentCreated, func(evt event.Event) error {
		typed = append(typed, evt)
		return nil
	})
	bus.SubscribeAll(func(evt event.Event) error {
		all = append(all, evt)
		return nil
	})

	require.NoError(t, bus.Publish(event.Event{Type: event.PaymentCreated}))
	require.NoError(t, bus.Publish(event.Event{Type: event.PaymentCancelled}))

	require.Len(t, typed, 1)
	require.Len(t, all, 2)
	require.NotEmpty(t, typed[0].ID)
	require.False(t, typed[0].OccurredAt.IsZero())
}

func TestInMemoryBus_ShouldRunRemainingHandlers_WhenOneFails(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	calls := 0
	bus.Subscribe(event.PaymentFailed, func(event.Event) error {
		calls++
		return errors.New("handler down")
	})
	bus.Subscribe(event.PaymentFailed, func(event.Event) error {
		calls++
		return nil
	})

	err := bus.Publish(event.Event{Type: event.PaymentFailed})

	require.Error(t, err)
	require.Equal(t, 2, calls)
}
