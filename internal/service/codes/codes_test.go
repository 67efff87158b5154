package codes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		name    string
		company string
		want    string
	}{
		{"two words takes initials", "Acme Import", "AI"},
		{"single word takes first two letters", "Nordex", "NO"},
		{"three words", "Global Trade Partners", "GTP"},
		{"lowercase input is uppercased", "acme import", "AI"},
		{"single letter word is padded", "A", "AX"},
		{"empty name falls back", "", "XX"},
		{"extra whitespace ignored", "  Acme   Import  ", "AI"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Prefix(tc.company))
		})
	}
}

func TestMonthPrefix(t *testing.T) {
	march2026 := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "AI0326", MonthPrefix("Acme Import", march2026))

	dec2025 := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "NO1225", MonthPrefix("Nordex", dec2025))
}

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		last    string
		want    string
		wantErr bool
	}{
		{"first code of the month", "AI0326", "", "AI032601", false},
		{"increments existing sequence", "AI0326", "AI032605", "AI032606", false},
		{"two digit rollover keeps counting", "AI0326", "AI032699", "AI0326100", false},
		{"three digit sequence keeps counting", "AI0326", "AI0326100", "AI0326101", false},
		{"mismatched prefix", "AI0326", "ZZ032601", "", true},
		{"garbage sequence", "AI0326", "AI0326xx", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Next(tc.prefix, tc.last)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
