package payment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// Provider capture statuses the lifecycle cares about.
const (
	CaptureCompleted = "COMPLETED"
	CaptureDeclined  = "DECLINED"
	CaptureFailed    = "FAILED"
)

type CreateOrderRequest struct {
	OrderID   string
	Amount    decimal.Decimal
	Currency  string
	ReturnURL string
	CancelURL string
}

type ProviderOrder struct {
	ID         string
	Status     string
	ApproveURL string
}

type Capture struct {
	OrderID   string
	Status    string
	CaptureID string
	PayerID   string
	Raw       json.RawMessage
}

func (c *Capture) Completed() bool {
	return c.Status == CaptureCompleted
}

func (c *Capture) Rejected() bool {
	return c.Status == CaptureDeclined || c.Status == CaptureFailed
}

var (
	ErrMissingCaptureID = errors.New("capture response has no capture id")
	ErrMissingPayerID   = errors.New("capture response has no payer id")
)

// CheckIdentifiers reports whether an accepted capture carries the ids a
// CAPTURED or COMPLETED record must store. payerID overrides c.PayerID when set.
func (c *Capture) CheckIdentifiers(payerID string) error {
	if payerID == "" {
		payerID = c.PayerID
	}
	switch {
	case c.CaptureID == "":
		return ErrMissingCaptureID
	case payerID == "":
		return ErrMissingPayerID
	}
	return nil
}

// Provider is the external payment-authorization service.
type Provider interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProviderOrder, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (*Capture, error)
}
