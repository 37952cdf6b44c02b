package mongostore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

type paymentDocument struct {
	OrderID         string    `bson:"order_id"`
	ProviderOrderID string    `bson:"provider_order_id,omitempty"`
	Amount          string    `bson:"amount"`
	Currency        string    `bson:"currency"`
	Method          string    `bson:"method"`
	Status          string    `bson:"status"`
	CaptureID       string    `bson:"capture_id,omitempty"`
	PayerID         string    `bson:"payer_id,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toDocument(r *payment.Record) paymentDocument {
	return paymentDocument{
		OrderID:         r.OrderID,
		ProviderOrderID: r.ProviderOrderID,
		Amount:          r.Amount.String(),
		Currency:        r.Currency,
		Method:          string(r.Method),
		Status:          string(r.Status),
		CaptureID:       r.CaptureID,
		PayerID:         r.PayerID,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func (d paymentDocument) toRecord() (*payment.Record, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("payment %s: bad amount %q: %w", d.OrderID, d.Amount, err)
	}

	return &payment.Record{
		OrderID:         d.OrderID,
		ProviderOrderID: d.ProviderOrderID,
		Amount:          amount,
		Currency:        d.Currency,
		Method:          payment.Method(d.Method),
		Status:          payment.Status(d.Status),
		CaptureID:       d.CaptureID,
		PayerID:         d.PayerID,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}, nil
}
