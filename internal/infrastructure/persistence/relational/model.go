package relational

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

type paymentModel struct {
	OrderID         string          `gorm:"primaryKey;size:64"`
	ProviderOrderID *string         `gorm:"size:64;uniqueIndex:ux_payments_provider_order_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"size:8;not null"`
	Method          string          `gorm:"size:16;not null"`
	Status          string          `gorm:"size:16;not null;index:ix_payments_status"`
	CaptureID       string          `gorm:"size:64;not null;default:''"`
	PayerID         string          `gorm:"size:64;not null;default:''"`
	CreatedAt       time.Time       `gorm:"not null;index:ix_payments_created_at"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

func (paymentModel) TableName() string { return "payments" }

func toModel(r *payment.Record) *paymentModel {
	m := &paymentModel{
		OrderID:   r.OrderID,
		Amount:    r.Amount,
		Currency:  r.Currency,
		Method:    string(r.Method),
		Status:    string(r.Status),
		CaptureID: r.CaptureID,
		PayerID:   r.PayerID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.ProviderOrderID != "" {
		id := r.ProviderOrderID
		m.ProviderOrderID = &id
	}
	return m
}

func (m *paymentModel) toRecord() *payment.Record {
	r := &payment.Record{
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Method:    payment.Method(m.Method),
		Status:    payment.Status(m.Status),
		CaptureID: m.CaptureID,
		PayerID:   m.PayerID,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.ProviderOrderID != nil {
		r.ProviderOrderID = *m.ProviderOrderID
	}
	return r
}
