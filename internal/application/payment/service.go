package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/event"
	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/logging"
)

const DefaultCurrency = "USD"

// Service drives the payment lifecycle: it opens provider orders, records
// cash-on-delivery orders and reconciles captures and redirects with the
// stored records.
type Service struct {
	Repo     payment.Repository
	Provider payment.Provider
	EventBus EventPublisher
	Logger   logging.Logger

	Currency  string
	ReturnURL string
	CancelURL string

	locks orderLocks
}

type EventPublisher interface {
	Publish(event.Event) error
}

type ProviderOrderResult struct {
	Record     *payment.Record
	ApproveURL string
}

type CaptureResult struct {
	Record  *payment.Record
	Capture *payment.Capture

	// Persisted is false when the provider captured but the record could not
	// be updated. The record is stale in that case.
	Persisted bool
}

func (s *Service) currency() string {
	if s.Currency == "" {
		return DefaultCurrency
	}
	return s.Currency
}

// CreateProviderOrder opens an order at the provider and stores it as CREATED.
// Nothing is stored when the provider call fails.
func (s *Service) CreateProviderOrder(ctx context.Context, amount decimal.Decimal, orderID string) (*ProviderOrderResult, error) {
	rec, err := payment.NewRecord(orderID, amount, s.currency(), payment.MethodPayPal)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnused(ctx, rec.OrderID); err != nil {
		return nil, err
	}

	order, err := s.Provider.CreateOrder(ctx, payment.CreateOrderRequest{
		OrderID:   rec.OrderID,
		Amount:    rec.Amount,
		Currency:  rec.Currency,
		ReturnURL: s.ReturnURL,
		CancelURL: s.CancelURL,
	})
	if err != nil {
		s.Logger.Error("provider order creation failed", map[string]any{
			"order-id": rec.OrderID,
			"error":    err.Error(),
		})
		return nil, &payment.ProviderError{Op: "create order", Err: err}
	}

	rec.ProviderOrderID = order.ID

	if err := s.Repo.Create(ctx, rec); err != nil {
		s.Logger.Error("provider order opened but record not saved", map[string]any{
			"order-id":          rec.OrderID,
			"provider-order-id": order.ID,
			"error":             err.Error(),
		})
		return nil, fmt.Errorf("save payment %s: %w", rec.OrderID, err)
	}

	s.Logger.Info("provider order created", map[string]any{
		"order-id":          rec.OrderID,
		"provider-order-id": rec.ProviderOrderID,
		"amount":            rec.Amount.String(),
	})
	s.publish(event.PaymentCreated, rec, "")

	return &ProviderOrderResult{Record: rec, ApproveURL: order.ApproveURL}, nil
}

// CreateCashOnDeliveryOrder stores a CREATED cash-on-delivery record. There is
// no provider interaction for this method.
func (s *Service) CreateCashOnDeliveryOrder(ctx context.Context, amount decimal.Decimal, orderID string) (*payment.Record, error) {
	rec, err := payment.NewRecord(orderID, amount, s.currency(), payment.MethodCashOnDelivery)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnused(ctx, rec.OrderID); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save payment %s: %w", rec.OrderID, err)
	}

	s.Logger.Info("cash on delivery order created", map[string]any{
		"order-id": rec.OrderID,
		"amount":   rec.Amount.String(),
	})
	s.publish(event.PaymentCreated, rec, "")

	return rec, nil
}

// CaptureByOrderID captures a provider-mediated payment on the server's
// initiative. Once the provider call succeeds its result is returned even if
// the record update fails.
func (s *Service) CaptureByOrderID(ctx context.Context, orderID string) (*CaptureResult, error) {
	unlock := s.locks.lock(orderID)
	defer unlock()

	rec, err := s.Repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if rec.Method != payment.MethodPayPal {
		return nil, fmt.Errorf("capture %s: %w", orderID, payment.ErrNotCapturable)
	}
	if rec.Status != payment.StatusCreated {
		return nil, fmt.Errorf("capture %s in status %s: %w", orderID, rec.Status, payment.ErrStatusConflict)
	}

	capture, err := s.Provider.CaptureOrder(ctx, rec.ProviderOrderID)
	if err != nil {
		s.Logger.Error("provider capture failed", map[string]any{
			"order-id":          orderID,
			"provider-order-id": rec.ProviderOrderID,
			"error":             err.Error(),
		})
		return nil, &payment.ProviderError{Op: "capture order", Err: err}
	}

	changes := payment.CaptureChange(payment.StatusCaptured, capture.CaptureID, capture.PayerID)
	evtType := event.PaymentCaptured
	if capture.Rejected() {
		changes = payment.StatusChange(payment.StatusFailed)
		evtType = event.PaymentFailed
	} else if err := capture.CheckIdentifiers(""); err != nil {
		s.Logger.Error("provider capture incomplete", map[string]any{
			"order-id":          orderID,
			"provider-order-id": rec.ProviderOrderID,
			"capture-status":    capture.Status,
			"error":             err.Error(),
		})
		return nil, &payment.ProviderError{Op: "capture order", Err: err}
	}

	result := &CaptureResult{Record: rec, Capture: capture}

	updated, err := s.Repo.Update(ctx, orderID, changes.When(payment.StatusCreated))
	if err != nil {
		s.Logger.Error("capture not persisted", map[string]any{
			"order-id":          orderID,
			"provider-order-id": rec.ProviderOrderID,
			"capture-id":        capture.CaptureID,
			"error":             err.Error(),
		})
		return result, nil
	}

	result.Record = updated
	result.Persisted = true

	s.Logger.Info("payment captured", map[string]any{
		"order-id":       orderID,
		"status":         string(updated.Status),
		"capture-status": capture.Status,
	})
	s.publish(evtType, updated, capture.Status)

	return result, nil
}

// HandleProviderRedirectSuccess finishes a payment after the provider sent the
// buyer back. It never returns an error: every failure becomes an error outcome.
func (s *Service) HandleProviderRedirectSuccess(ctx context.Context, providerOrderID, payerHint string) Outcome {
	rec, err := s.Repo.FindByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		if !errors.Is(err, payment.ErrNotFound) {
			s.Logger.Error("redirect lookup failed", map[string]any{
				"provider-order-id": providerOrderID,
				"error":             err.Error(),
			})
		}
		return ErrorOutcome(MsgPaymentNotFound)
	}

	unlock := s.locks.lock(rec.OrderID)
	defer unlock()

	// Re-read under the lock; a concurrent redirect may have completed it.
	rec, err = s.Repo.FindByOrderID(ctx, rec.OrderID)
	if err != nil {
		return ErrorOutcome(MsgPaymentNotFound)
	}

	if rec.Status.Captured() {
		return SuccessOutcome(rec.ProviderOrderID, rec.PayerID)
	}
	if rec.Status != payment.StatusCreated {
		return ErrorOutcome(fmt.Sprintf("Payment is %s", rec.Status))
	}

	capture, err := s.Provider.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		s.Logger.Error("redirect capture failed", map[string]any{
			"order-id":          rec.OrderID,
			"provider-order-id": providerOrderID,
			"error":             err.Error(),
		})
		return ErrorOutcome(err.Error())
	}

	if !capture.Completed() {
		s.Logger.Error("redirect capture not completed", map[string]any{
			"order-id":       rec.OrderID,
			"capture-status": capture.Status,
		})
		return ErrorOutcome(MsgCaptureNotCompleted)
	}

	if err := capture.CheckIdentifiers(payerHint); err != nil {
		s.Logger.Error("redirect capture incomplete", map[string]any{
			"order-id": rec.OrderID,
			"error":    err.Error(),
		})
		return ErrorOutcome(err.Error())
	}

	payerID := payerHint
	if payerID == "" {
		payerID = capture.PayerID
	}

	updated, err := s.Repo.Update(ctx, rec.OrderID,
		payment.CaptureChange(payment.StatusCompleted, capture.CaptureID, payerID).When(payment.StatusCreated))
	if err != nil {
		// Funds are captured at the provider; the record stays CREATED.
		s.Logger.Error("completed capture not persisted", map[string]any{
			"order-id":          rec.OrderID,
			"provider-order-id": providerOrderID,
			"capture-id":        capture.CaptureID,
			"error":             err.Error(),
		})
		return ErrorOutcome(err.Error())
	}

	s.Logger.Info("payment completed", map[string]any{
		"order-id":          updated.OrderID,
		"provider-order-id": updated.ProviderOrderID,
		"capture-id":        updated.CaptureID,
	})
	s.publish(event.PaymentCompleted, updated, "")

	return SuccessOutcome(updated.ProviderOrderID, updated.PayerID)
}

// HandleProviderRedirectCancel marks a CREATED payment as CANCELLED. Unknown
// provider orders and payments already past CREATED are left alone.
func (s *Service) HandleProviderRedirectCancel(ctx context.Context, providerOrderID string) Outcome {
	rec, err := s.Repo.FindByProviderOrderID(ctx, providerOrderID)
	if errors.Is(err, payment.ErrNotFound) {
		return CancelOutcome()
	}
	if err != nil {
		s.Logger.Error("cancel lookup failed", map[string]any{
			"provider-order-id": providerOrderID,
			"error":             err.Error(),
		})
		return ErrorOutcome(err.Error())
	}

	if !rec.Status.CanTransitionTo(payment.StatusCancelled) {
		s.Logger.Info("cancel ignored", map[string]any{
			"order-id": rec.OrderID,
			"status":   string(rec.Status),
		})
		return CancelOutcome()
	}

	updated, err := s.Repo.Update(ctx, rec.OrderID,
		payment.StatusChange(payment.StatusCancelled).When(rec.Status))
	if err != nil {
		if errors.Is(err, payment.ErrStatusConflict) {
			return CancelOutcome()
		}
		s.Logger.Error("cancel not persisted", map[string]any{
			"order-id": rec.OrderID,
			"error":    err.Error(),
		})
		return ErrorOutcome(err.Error())
	}

	s.publish(event.PaymentCancelled, updated, "")

	return CancelOutcome()
}

// GetStatusByProviderOrderID returns the record only once it is COMPLETED.
// For any other status it returns a *payment.PendingError.
func (s *Service) GetStatusByProviderOrderID(ctx context.Context, providerOrderID string) (*payment.Record, error) {
	rec, err := s.Repo.FindByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}

	if rec.Status != payment.StatusCompleted {
		return nil, &payment.PendingError{Status: rec.Status}
	}

	return rec, nil
}

func (s *Service) History(ctx context.Context) ([]*payment.Record, error) {
	return s.Repo.List(ctx)
}

func (s *Service) ensureUnused(ctx context.Context, orderID string) error {
	_, err := s.Repo.FindByOrderID(ctx, orderID)
	switch {
	case err == nil:
		return fmt.Errorf("order %s: %w", orderID, payment.ErrDuplicateOrder)
	case errors.Is(err, payment.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) publish(typ event.Type, rec *payment.Record, reason string) {
	if s.EventBus == nil {
		return
	}

	payload := event.PayloadFrom(rec)
	payload.Reason = reason

	if err := s.EventBus.Publish(event.Event{Type: typ, Payload: payload}); err != nil {
		s.Logger.Error("event publish failed", map[string]any{
			"type":     string(typ),
			"order-id": rec.OrderID,
			"error":    err.Error(),
		})
	}
}
