package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusCaptured  Status = "CAPTURED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
	StatusError     Status = "ERROR"
)

type Method string

const (
	MethodPayPal         Method = "paypal"
	MethodCashOnDelivery Method = "cod"
)

// transitions lists the statuses reachable from each status. Anything missing
// is terminal.
var transitions = map[Status][]Status{
	StatusCreated: {
		StatusCaptured,
		StatusCompleted,
		StatusCancelled,
		StatusFailed,
		StatusError,
	},
	StatusCaptured: {
		StatusCompleted,
	},
}

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusCaptured, StatusCompleted,
		StatusCancelled, StatusFailed, StatusError:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Captured reports whether funds were taken for a payment in this status.
func (s Status) Captured() bool {
	return s == StatusCaptured || s == StatusCompleted
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Record struct {
	OrderID         string
	ProviderOrderID string
	Amount          decimal.Decimal
	Currency        string
	Method          Method
	Status          Status
	CaptureID       string
	PayerID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Changes is a partial update of a Record. Nil fields are left untouched.
type Changes struct {
	Status    *Status
	CaptureID *string
	PayerID   *string

	// ExpectStatus makes the update conditional on the stored status.
	ExpectStatus *Status
}

func (c Changes) Empty() bool {
	return c.Status == nil && c.CaptureID == nil && c.PayerID == nil
}

// Apply copies the supplied fields onto r and stamps UpdatedAt.
func (c Changes) Apply(r *Record, now time.Time) {
	if c.Status != nil {
		r.Status = *c.Status
	}
	if c.CaptureID != nil {
		r.CaptureID = *c.CaptureID
	}
	if c.PayerID != nil {
		r.PayerID = *c.PayerID
	}
	r.UpdatedAt = now
}

func StatusChange(s Status) Changes {
	return Changes{Status: &s}
}

func CaptureChange(s Status, captureID, payerID string) Changes {
	return Changes{Status: &s, CaptureID: &captureID, PayerID: &payerID}
}

// When sets the expected prior status of the change.
func (c Changes) When(expected Status) Changes {
	c.ExpectStatus = &expected
	return c
}

func NewRecord(orderID string, amount decimal.Decimal, currency string, method Method) (*Record, error) {
	if err := ValidateOrder(orderID, amount); err != nil {
		return nil, err
	}

	return &Record{
		OrderID:  strings.TrimSpace(orderID),
		Amount:   amount,
		Currency: strings.ToUpper(currency),
		Method:   method,
		Status:   StatusCreated,
	}, nil
}

func ValidateOrder(orderID string, amount decimal.Decimal) error {
	if strings.TrimSpace(orderID) == "" {
		return &ValidationError{Field: "orderId", Reason: "is required"}
	}
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !amount.Equal(amount.Round(2)) {
		return &ValidationError{Field: "amount", Reason: "must have at most 2 decimal places"}
	}
	return nil
}
