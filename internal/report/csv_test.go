package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/service"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	completed := created.Add(2 * time.Hour)
	delivered := decimal.RequireFromString("164.38")

	rows := []service.ReportRow{
		{
			TransactionID:    uuid.MustParse("5f3d0a54-1111-4a2b-9c3d-000000000001"),
			QuotationCode:    "AI032601",
			CashierEmail:     "cashier@nordex.example",
			AccountName:      "Banesco Principal",
			AssignedAmountBs: decimal.RequireFromString("6000"),
			ExpectedUsdt:     decimal.RequireFromString("164.38"),
			DeliveredUsdt:    &delivered,
			Status:           domain.CashierTransactionStatusCompleted,
			CreatedAt:        created,
			CompletedAt:      &completed,
		},
		{
			TransactionID:    uuid.MustParse("5f3d0a54-1111-4a2b-9c3d-000000000002"),
			QuotationCode:    "AI032601",
			CashierEmail:     "other@nordex.example",
			AccountName:      "Banesco Principal",
			AssignedAmountBs: decimal.RequireFromString("4000"),
			ExpectedUsdt:     decimal.RequireFromString("109.59"),
			Status:           domain.CashierTransactionStatusPending,
			CreatedAt:        created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])

	assert.Equal(t, "AI032601", records[1][1])
	assert.Equal(t, "6000.00", records[1][4])
	assert.Equal(t, "164.38", records[1][6])
	assert.Equal(t, "completed", records[1][7])
	assert.Equal(t, "2026-03-10T16:30:00Z", records[1][9])

	// Pending rows leave delivered and completed_at empty.
	assert.Equal(t, "", records[2][6])
	assert.Equal(t, "", records[2][9])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvHeader, records[0])
}
