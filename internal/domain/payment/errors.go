package payment

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateOrder = errors.New("order already exists")
	ErrNotFound       = errors.New("payment not found")
	ErrStatusConflict = errors.New("payment status changed concurrently")
	ErrNotCapturable  = errors.New("payment method has no provider capture")
	ErrValidation     = errors.New("invalid payment request")
	ErrProvider       = errors.New("payment provider failure")
	ErrNotCompleted   = errors.New("payment not completed")
)

// Kind classifies errors returned by the lifecycle so transports can map them
// without looking at messages.
type Kind string

const (
	KindDuplicateOrder Kind = "duplicate_order"
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation"
	KindProvider       Kind = "provider"
	KindStatusConflict Kind = "status_conflict"
	KindNotCapturable  Kind = "not_capturable"
	KindNotCompleted   Kind = "not_completed"
	KindInternal       Kind = "internal"
)

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateOrder):
		return KindDuplicateOrder
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrProvider):
		return KindProvider
	case errors.Is(err, ErrStatusConflict):
		return KindStatusConflict
	case errors.Is(err, ErrNotCapturable):
		return KindNotCapturable
	case errors.Is(err, ErrNotCompleted):
		return KindNotCompleted
	}
	return KindInternal
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ProviderError wraps a failed call to the payment provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() []error { return []error{ErrProvider, e.Err} }

// PendingError is returned when a completed payment was asked for but the
// record is still in another status.
type PendingError struct {
	Status Status
}

func (e *PendingError) Error() string {
	return fmt.Sprintf("payment not completed: status %s", e.Status)
}

func (e *PendingError) Unwrap() error { return ErrNotCompleted }
