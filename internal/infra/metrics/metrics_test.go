package metrics_test

import (
	"testing"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/event"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/metrics"
)

func TestCounters_ShouldCountLifecycleEvents(t *testing.T) {
	c := &metrics.Counters{}

	for _, typ := range []event.Type{
		event.PaymentCreated,
		event.PaymentCreated,
		event.PaymentCompleted,
		event.PaymentCancelled,
	} {
		if err := c.Handle(event.Event{Type: typ}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snap := c.Snapshot()
	if snap.Created != 2 {
		t.Errorf("expected Created = 2, got %d", snap.Created)
	}
	if snap.Completed != 1 {
		t.Errorf("expected Completed = 1, got %d", snap.Completed)
	}
	if snap.Cancelled != 1 {
		t.Errorf("expected Cancelled = 1, got %d", snap.Cancelled)
	}
	if snap.Captured != 0 || snap.Failed != 0 {
		t.Errorf("expected no captured/failed, got %+v", snap)
	}
}
