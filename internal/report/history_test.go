package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/report"
)

func TestWriteHistoryXLSX(t *testing.T) {
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	records := []*payment.Record{
		{
			OrderID:         "O2",
			ProviderOrderID: "PP2",
			Amount:          decimal.RequireFromString("49.9"),
			Currency:        "USD",
			Method:          payment.MethodPayPal,
			Status:          payment.StatusCompleted,
			CaptureID:       "CAP2",
			PayerID:         "PAYER2",
			CreatedAt:       at,
			UpdatedAt:       at,
		},
		{
			OrderID:   "O1",
			Amount:    decimal.NewFromInt(10),
			Currency:  "USD",
			Method:    payment.MethodCashOnDelivery,
			Status:    payment.StatusCreated,
			CreatedAt: at.Add(-time.Hour),
			UpdatedAt: at.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteHistoryXLSX(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.HistorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "Order ID", rows[0][0])
	require.Equal(t, "O2", rows[1][0])
	require.Equal(t, "PP2", rows[1][1])
	require.Equal(t, "COMPLETED", rows[1][3])
	require.Equal(t, "49.90", rows[1][4])
	require.Equal(t, "2026-04-02T09:30:00Z", rows[1][8])

	require.Equal(t, "O1", rows[2][0])
	require.Equal(t, "cod", rows[2][2])
	require.Equal(t, "10.00", rows[2][4])
}

func TestWriteHistoryXLSX_EmptyHistoryHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteHistoryXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.HistorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
