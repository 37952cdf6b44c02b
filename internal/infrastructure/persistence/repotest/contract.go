// Package repotest holds the behaviour every payment.Repository must share.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

type Factory func(t *testing.T) payment.Repository

func newRecord(orderID, providerOrderID string, createdAt time.Time) *payment.Record {
	method := payment.MethodCashOnDelivery
	if providerOrderID != "" {
		method = payment.MethodPayPal
	}
	return &payment.Record{
		OrderID:         orderID,
		ProviderOrderID: providerOrderID,
		Amount:          decimal.RequireFromString("49.99"),
		Currency:        "USD",
		Method:          method,
		Status:          payment.StatusCreated,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// Run exercises the repository contract against fresh repositories from newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("CreateThenFind", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Create(ctx, newRecord("O1", "PP1", base)))

		got, err := repo.FindByOrderID(ctx, "O1")
		require.NoError(t, err)
		require.Equal(t, "O1", got.OrderID)
		require.Equal(t, "PP1", got.ProviderOrderID)
		require.True(t, got.Amount.Equal(decimal.RequireFromString("49.99")), "amount %s", got.Amount)
		require.Equal(t, "USD", got.Currency)
		require.Equal(t, payment.MethodPayPal, got.Method)
		require.Equal(t, payment.StatusCreated, got.Status)
		require.Empty(t, got.CaptureID)
		require.Empty(t, got.PayerID)
		require.WithinDuration(t, base, got.CreatedAt, time.Millisecond)

		byProvider, err := repo.FindByProviderOrderID(ctx, "PP1")
		require.NoError(t, err)
		require.Equal(t, "O1", byProvider.OrderID)
	})

	t.Run("CreateSetsTimestamps", func(t *testing.T) {
		repo := newRepo(t)

		r := newRecord("O1", "", time.Time{})
		require.NoError(t, repo.Create(ctx, r))

		got, err := repo.FindByOrderID(ctx, "O1")
		require.NoError(t, err)
		require.False(t, got.CreatedAt.IsZero())
		require.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("DuplicateOrderID", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Create(ctx, newRecord("O1", "", base)))
		err := repo.Create(ctx, newRecord("O1", "", base.Add(time.Second)))
		require.ErrorIs(t, err, payment.ErrDuplicateOrder)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("DuplicateProviderOrderID", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Create(ctx, newRecord("O1", "PP1", base)))
		err := repo.Create(ctx, newRecord("O2", "PP1", base))
		require.ErrorIs(t, err, payment.ErrDuplicateOrder)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindByOrderID(ctx, "missing")
		require.ErrorIs(t, err, payment.ErrNotFound)

		_, err = repo.FindByProviderOrderID(ctx, "missing")
		require.ErrorIs(t, err, payment.ErrNotFound)

		_, err = repo.Update(ctx, "missing", payment.StatusChange(payment.StatusCancelled))
		require.ErrorIs(t, err, payment.ErrNotFound)
	})

	t.Run("UpdateAppliesOnlySuppliedFields", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newRecord("O1", "PP1", base)))

		updated, err := repo.Update(ctx, "O1",
			payment.CaptureChange(payment.StatusCompleted, "CAP1", "PAYER1"))
		require.NoError(t, err)
		require.Equal(t, payment.StatusCompleted, updated.Status)
		require.Equal(t, "CAP1", updated.CaptureID)
		require.Equal(t, "PAYER1", updated.PayerID)
		require.Equal(t, "PP1", updated.ProviderOrderID)
		require.True(t, updated.UpdatedAt.After(base), "updated_at %s not refreshed", updated.UpdatedAt)

		got, err := repo.FindByOrderID(ctx, "O1")
		require.NoError(t, err)
		require.Equal(t, payment.StatusCompleted, got.Status)
		require.Equal(t, "CAP1", got.CaptureID)
		require.WithinDuration(t, base, got.CreatedAt, time.Millisecond)
	})

	t.Run("UpdateWithExpectedStatus", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newRecord("O1", "PP1", base)))

		_, err := repo.Update(ctx, "O1",
			payment.StatusChange(payment.StatusCancelled).When(payment.StatusCaptured))
		require.ErrorIs(t, err, payment.ErrStatusConflict)

		got, err := repo.FindByOrderID(ctx, "O1")
		require.NoError(t, err)
		require.Equal(t, payment.StatusCreated, got.Status)

		updated, err := repo.Update(ctx, "O1",
			payment.StatusChange(payment.StatusCancelled).When(payment.StatusCreated))
		require.NoError(t, err)
		require.Equal(t, payment.StatusCancelled, updated.Status)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Create(ctx, newRecord("old", "", base)))
		require.NoError(t, repo.Create(ctx, newRecord("new", "", base.Add(2*time.Hour))))
		require.NoError(t, repo.Create(ctx, newRecord("mid", "PP-mid", base.Add(time.Hour))))

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, "new", all[0].OrderID)
		require.Equal(t, "mid", all[1].OrderID)
		require.Equal(t, "old", all[2].OrderID)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		repo := newRepo(t)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newRecord("O1", "", base)))

		got, err := repo.FindByOrderID(ctx, "O1")
		require.NoError(t, err)
		got.Status = payment.StatusError

		again, err := repo.FindByOrderID(ctx, "O1")
		require.NoError(t, err)
		require.Equal(t, payment.StatusCreated, again.Status)
	})
}
