package payment_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

func TestStatus_TransitionsAreMonotonic(t *testing.T) {
	require.True(t, payment.StatusCreated.CanTransitionTo(payment.StatusCaptured))
	require.True(t, payment.StatusCreated.CanTransitionTo(payment.StatusCompleted))
	require.True(t, payment.StatusCreated.CanTransitionTo(payment.StatusCancelled))
	require.True(t, payment.StatusCaptured.CanTransitionTo(payment.StatusCompleted))

	require.False(t, payment.StatusCaptured.CanTransitionTo(payment.StatusCreated))
	require.False(t, payment.StatusCaptured.CanTransitionTo(payment.StatusCancelled))

	for _, s := range []payment.Status{
		payment.StatusCompleted,
		payment.StatusCancelled,
		payment.StatusFailed,
		payment.StatusError,
	} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
		if s.CanTransitionTo(payment.StatusCreated) {
			t.Errorf("expected %s not to revert to CREATED", s)
		}
	}
}

func TestNewRecord_ShouldRejectInvalidInput(t *testing.T) {
	_, err := payment.NewRecord("", decimal.NewFromInt(10), "usd", payment.MethodPayPal)
	require.ErrorIs(t, err, payment.ErrValidation)

	_, err = payment.NewRecord("O1", decimal.Zero, "usd", payment.MethodPayPal)
	require.ErrorIs(t, err, payment.ErrValidation)

	_, err = payment.NewRecord("O1", decimal.NewFromInt(-5), "usd", payment.MethodPayPal)
	var verr *payment.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "amount", verr.Field)
}

func TestNewRecord_ShouldRejectSubCentAmounts(t *testing.T) {
	for _, raw := range []string{"0.004", "10.005"} {
		_, err := payment.NewRecord("O1", decimal.RequireFromString(raw), "usd", payment.MethodCashOnDelivery)
		var verr *payment.ValidationError
		require.ErrorAs(t, err, &verr, raw)
		require.Equal(t, "amount", verr.Field)
	}

	_, err := payment.NewRecord("O1", decimal.RequireFromString("10.50"), "usd", payment.MethodCashOnDelivery)
	require.NoError(t, err)
}

func TestNewRecord_ShouldStartCreated(t *testing.T) {
	r, err := payment.NewRecord(" O1 ", decimal.RequireFromString("49.99"), "usd", payment.MethodCashOnDelivery)
	require.NoError(t, err)

	require.Equal(t, "O1", r.OrderID)
	require.Equal(t, "USD", r.Currency)
	require.Equal(t, payment.StatusCreated, r.Status)
	require.Empty(t, r.CaptureID)
	require.Empty(t, r.PayerID)
}

func TestChanges_ApplyOnlySuppliedFields(t *testing.T) {
	r := &payment.Record{OrderID: "O1", Status: payment.StatusCreated, PayerID: "keep"}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	payment.StatusChange(payment.StatusCancelled).Apply(r, now)

	require.Equal(t, payment.StatusCancelled, r.Status)
	require.Equal(t, "keep", r.PayerID)
	require.Equal(t, now, r.UpdatedAt)
}

func TestKindOf(t *testing.T) {
	require.Equal(t, payment.KindDuplicateOrder, payment.KindOf(fmt.Errorf("save: %w", payment.ErrDuplicateOrder)))
	require.Equal(t, payment.KindNotFound, payment.KindOf(payment.ErrNotFound))
	require.Equal(t, payment.KindValidation, payment.KindOf(&payment.ValidationError{Field: "amount"}))
	require.Equal(t, payment.KindNotCompleted, payment.KindOf(&payment.PendingError{Status: payment.StatusCreated}))
	require.Equal(t, payment.KindInternal, payment.KindOf(errors.New("boom")))

	cause := errors.New("connection reset")
	perr := &payment.ProviderError{Op: "capture", Err: cause}
	require.Equal(t, payment.KindProvider, payment.KindOf(perr))
	require.ErrorIs(t, perr, cause)
}

func TestCapture_CheckIdentifiers(t *testing.T) {
	c := &payment.Capture{Status: payment.CaptureCompleted, CaptureID: "CAP1"}
	require.ErrorIs(t, c.CheckIdentifiers(""), payment.ErrMissingPayerID)
	require.NoError(t, c.CheckIdentifiers("PAYER-HINT"))

	c.PayerID = "PAYER"
	require.NoError(t, c.CheckIdentifiers(""))

	c.CaptureID = ""
	require.ErrorIs(t, c.CheckIdentifiers("PAYER-HINT"), payment.ErrMissingCaptureID)
}
