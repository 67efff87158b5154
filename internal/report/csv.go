// Package report renders cashier reports for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/nordex-trade/mercury-api/internal/service"
)

var csvHeader = []string{
	"transaction_id", "quotation_code", "cashier_email", "account_name",
	"assigned_amount_bs", "expected_usdt", "delivered_usdt", "status",
	"created_at", "completed_at",
}

// WriteCSV streams the report rows as CSV, header first.
func WriteCSV(w io.Writer, rows []service.ReportRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}

	for _, row := range rows {
		delivered := ""
		if row.DeliveredUsdt != nil {
			delivered = row.DeliveredUsdt.StringFixed(2)
		}
		completedAt := ""
		if row.CompletedAt != nil {
			completedAt = row.CompletedAt.Format(time.RFC3339)
		}

		record := []string{
			row.TransactionID.String(),
			row.QuotationCode,
			row.CashierEmail,
			row.AccountName,
			row.AssignedAmountBs.StringFixed(2),
			row.ExpectedUsdt.StringFixed(2),
			delivered,
			string(row.Status),
			row.CreatedAt.Format(time.RFC3339),
			completedAt,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}
