package event

import "github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"

// PaymentPayload is the snapshot carried by every payment lifecycle event.
type PaymentPayload struct {
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id,omitempty"`
	Method          string `json:"method"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	CaptureID       string `json:"capture_id,omitempty"`
	PayerID         string `json:"payer_id,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

func PayloadFrom(r *payment.Record) PaymentPayload {
	return PaymentPayload{
		OrderID:         r.OrderID,
		ProviderOrderID: r.ProviderOrderID,
		Method:          string(r.Method),
		Status:          string(r.Status),
		Amount:          r.Amount.StringFixed(2),
		Currency:        r.Currency,
		CaptureID:       r.CaptureID,
		PayerID:         r.PayerID,
	}
}
