// Package report renders payment history for offline reconciliation.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

const HistorySheet = "Payments"

var historyHeader = []any{
	"Order ID", "Provider Order ID", "Method", "Status", "Amount", "Currency",
	"Capture ID", "Payer ID", "Created At", "Updated At",
}

// numFmtTwoDecimals is the built-in "0.00" format.
const numFmtTwoDecimals = 2

// WriteHistoryXLSX writes records, in the given order, as a single-sheet
// workbook.
func WriteHistoryXLSX(w io.Writer, records []*payment.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", HistorySheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(HistorySheet, "A1", &historyHeader); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(HistorySheet, "A1", "J1", bold); err != nil {
		return err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return err
	}

	for i, r := range records {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}

		values := []any{
			r.OrderID,
			r.ProviderOrderID,
			string(r.Method),
			string(r.Status),
			r.Amount.InexactFloat64(),
			r.Currency,
			r.CaptureID,
			r.PayerID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(HistorySheet, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}

		amountCell := fmt.Sprintf("E%d", row)
		if err := f.SetCellStyle(HistorySheet, amountCell, amountCell, money); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(HistorySheet, "A", "J", 22); err != nil {
		return err
	}
	if err := f.SetPanes(HistorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}
