package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		serviceFee   string
		handlingFee  string
		exchangeRate string
		wantTotal    string
		wantTotalBs  string
	}{
		{
			name:         "amount plus both fees",
			amount:       "1000",
			serviceFee:   "50",
			handlingFee:  "25",
			exchangeRate: "36.50",
			wantTotal:    "1075",
			wantTotalBs:  "39237.50",
		},
		{
			name:         "zero fees",
			amount:       "200",
			serviceFee:   "0",
			handlingFee:  "0",
			exchangeRate: "36.50",
			wantTotal:    "200",
			wantTotalBs:  "7300",
		},
		{
			name:         "bolivar total rounds to cents",
			amount:       "10.01",
			serviceFee:   "0",
			handlingFee:  "0",
			exchangeRate: "36.333",
			wantTotal:    "10.01",
			wantTotalBs:  "363.69",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(dec(tc.amount), dec(tc.serviceFee), dec(tc.handlingFee), dec(tc.exchangeRate))

			require.True(t, dec(tc.wantTotal).Equal(got.Total), "total: want %s, got %s", tc.wantTotal, got.Total)
			require.True(t, dec(tc.wantTotalBs).Equal(got.TotalInBs), "total_bs: want %s, got %s", tc.wantTotalBs, got.TotalInBs)
		})
	}
}
