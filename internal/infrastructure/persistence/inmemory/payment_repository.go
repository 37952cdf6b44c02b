package inmemory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

type PaymentRepository struct {
	mu               sync.RWMutex
	payments         map[string]*payment.Record
	providerOrderIDs map[string]string
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments:         make(map[string]*payment.Record),
		providerOrderIDs: make(map[string]string),
	}
}

func (r *PaymentRepository) Create(_ context.Context, p *payment.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.OrderID]; exists {
		return payment.ErrDuplicateOrder
	}
	if p.ProviderOrderID != "" {
		if _, exists := r.providerOrderIDs[p.ProviderOrderID]; exists {
			return payment.ErrDuplicateOrder
		}
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	r.payments[p.OrderID] = p.Clone()
	if p.ProviderOrderID != "" {
		r.providerOrderIDs[p.ProviderOrderID] = p.OrderID
	}
	return nil
}

func (r *PaymentRepository) FindByOrderID(_ context.Context, orderID string) (*payment.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[orderID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) FindByProviderOrderID(_ context.Context, providerOrderID string) (*payment.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderID, ok := r.providerOrderIDs[providerOrderID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	p, ok := r.payments[orderID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) Update(_ context.Context, orderID string, changes payment.Changes) (*payment.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[orderID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	if changes.ExpectStatus != nil && p.Status != *changes.ExpectStatus {
		return nil, payment.ErrStatusConflict
	}

	changes.Apply(p, time.Now().UTC())
	return p.Clone(), nil
}

func (r *PaymentRepository) List(_ context.Context) ([]*payment.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payment.Record, 0, len(r.payments))
	for p := range maps.Values(r.payments) {
		out = append(out, p.Clone())
	}

	slices.SortFunc(out, func(a, b *payment.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.OrderID, b.OrderID)
	})
	return out, nil
}

// Payments returns a copy of every stored record keyed by order id.
func (r *PaymentRepository) Payments() map[string]*payment.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*payment.Record, len(r.payments))
	for id, p := range r.payments {
		out[id] = p.Clone()
	}
	return out
}
