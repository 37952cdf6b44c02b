package event

import "time"

type Type string

const (
	PaymentCreated   Type = "PAYMENT_CREATED"
	PaymentCaptured  Type = "PAYMENT_CAPTURED"
	PaymentCompleted Type = "PAYMENT_COMPLETED"
	PaymentCancelled Type = "PAYMENT_CANCELLED"
	PaymentFailed    Type = "PAYMENT_FAILED"
)

type Event struct {
	ID         string
	Type       Type
	OccurredAt time.Time
	Payload    any
}
