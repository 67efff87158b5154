package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCheckParticipation(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		totalBs       string
		assignedBs    string
		dailyLimit    string
		assignedToday string
		wantErr       error
	}{
		{
			name:       "fits remaining balance and limit",
			amount:     "6000",
			totalBs:    "10000",
			assignedBs: "4000",
			dailyLimit: "50000",
		},
		{
			name:       "exceeds remaining balance",
			amount:     "7000",
			totalBs:    "10000",
			assignedBs: "4000",
			dailyLimit: "50000",
			wantErr:    domain.ErrExceedsRemaining,
		},
		{
			name:       "exactly consumes remaining balance",
			amount:     "10000",
			totalBs:    "10000",
			assignedBs: "0",
			dailyLimit: "50000",
		},
		{
			name:    "amount zero",
			amount:  "0",
			totalBs: "10000",
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount negative",
			amount:  "-500",
			totalBs: "10000",
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:          "exceeds daily limit",
			amount:        "3000",
			totalBs:       "100000",
			assignedBs:    "0",
			dailyLimit:    "5000",
			assignedToday: "2500",
			wantErr:       domain.ErrDailyLimitExceeded,
		},
		{
			name:          "at daily limit is allowed",
			amount:        "2500",
			totalBs:       "100000",
			assignedBs:    "0",
			dailyLimit:    "5000",
			assignedToday: "2500",
		},
		{
			// Remaining balance is checked before the daily limit.
			name:          "over balance and over limit reports balance",
			amount:        "20000",
			totalBs:       "10000",
			assignedBs:    "4000",
			dailyLimit:    "5000",
			assignedToday: "0",
			wantErr:       domain.ErrExceedsRemaining,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.assignedBs == "" {
				tc.assignedBs = "0"
			}
			if tc.dailyLimit == "" {
				tc.dailyLimit = "0"
			}
			if tc.assignedToday == "" {
				tc.assignedToday = "0"
			}

			err := CheckParticipation(
				dec(tc.amount),
				dec(tc.totalBs),
				dec(tc.assignedBs),
				dec(tc.dailyLimit),
				dec(tc.assignedToday),
			)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestExpectedUsdt(t *testing.T) {
	tests := []struct {
		name     string
		amountBs string
		rate     string
		want     string
	}{
		{name: "even division", amountBs: "7300", rate: "36.50", want: "200"},
		{name: "rounds half up", amountBs: "1000", rate: "37", want: "27.03"},
		{name: "small assignment", amountBs: "500", rate: "36.25", want: "13.79"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpectedUsdt(dec(tc.amountBs), dec(tc.rate))
			require.True(t, dec(tc.want).Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}
