package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/event"
)

type HandlerFunc func(event.Event) error

// InMemoryBus delivers events synchronously, in subscription order, on the
// publisher's goroutine.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerFunc
	all      []HandlerFunc
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[event.Type][]HandlerFunc),
	}
}

func (b *InMemoryBus) Subscribe(eventType event.Type, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers handler for every event type.
func (b *InMemoryBus) SubscribeAll(handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, handler)
}

// Publish runs every matching handler even if an earlier one fails and
// returns the joined errors.
func (b *InMemoryBus) Publish(evt event.Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]HandlerFunc, 0, len(b.handlers[evt.Type])+len(b.all))
	handlers = append(handlers, b.handlers[evt.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(evt); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
