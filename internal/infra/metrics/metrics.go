package metrics

import (
	"sync/atomic"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/event"
)

type Counters struct {
	PaymentsCreated   uint64
	PaymentsCaptured  uint64
	PaymentsCompleted uint64
	PaymentsCancelled uint64
	PaymentsFailed    uint64
}

type Snapshot struct {
	Created   uint64 `json:"created"`
	Captured  uint64 `json:"captured"`
	Completed uint64 `json:"completed"`
	Cancelled uint64 `json:"cancelled"`
	Failed    uint64 `json:"failed"`
}

func (c *Counters) IncCreated() {
	atomic.AddUint64(&c.PaymentsCreated, 1)
}

func (c *Counters) IncCaptured() {
	atomic.AddUint64(&c.PaymentsCaptured, 1)
}

func (c *Counters) IncCompleted() {
	atomic.AddUint64(&c.PaymentsCompleted, 1)
}

func (c *Counters) IncCancelled() {
	atomic.AddUint64(&c.PaymentsCancelled, 1)
}

func (c *Counters) IncFailed() {
	atomic.AddUint64(&c.PaymentsFailed, 1)
}

// Handle counts payment lifecycle events; subscribe it on the event bus.
func (c *Counters) Handle(evt event.Event) error {
	switch evt.Type {
	case event.PaymentCreated:
		c.IncCreated()
	case event.PaymentCaptured:
		c.IncCaptured()
	case event.PaymentCompleted:
		c.IncCompleted()
	case event.PaymentCancelled:
		c.IncCancelled()
	case event.PaymentFailed:
		c.IncFailed()
	}
	return nil
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Created:   atomic.LoadUint64(&c.PaymentsCreated),
		Captured:  atomic.LoadUint64(&c.PaymentsCaptured),
		Completed: atomic.LoadUint64(&c.PaymentsCompleted),
		Cancelled: atomic.LoadUint64(&c.PaymentsCancelled),
		Failed:    atomic.LoadUint64(&c.PaymentsFailed),
	}
}
