package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

func offer(price, minTrans, maxTrans string) Offer {
	return Offer{
		Price:    decimal.RequireFromString(price),
		MinTrans: decimal.RequireFromString(minTrans),
		MaxTrans: decimal.RequireFromString(maxTrans),
	}
}

func TestFilter(t *testing.T) {
	offers := []Offer{
		offer("36.50", "100", "50000"),
		offer("36.80", "5000", "20000"),
		offer("37.10", "100", "900"),
	}

	tests := []struct {
		name      string
		minAmount string
		maxAmount string
		wantLen   int
	}{
		{name: "window inside all bounds", minAmount: "5000", maxAmount: "20000", wantLen: 2},
		{name: "small amount excludes high minimums", minAmount: "500", maxAmount: "500", wantLen: 2},
		{name: "large amount excludes low maximums", minAmount: "30000", maxAmount: "30000", wantLen: 1},
		{name: "nothing covers the window", minAmount: "100", maxAmount: "100000", wantLen: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kept := Filter(offers,
				decimal.RequireFromString(tc.minAmount),
				decimal.RequireFromString(tc.maxAmount))
			assert.Len(t, kept, tc.wantLen)
		})
	}
}

func TestSummarize(t *testing.T) {
	offers := []Offer{
		offer("36.00", "0", "100000"),
		offer("36.50", "0", "100000"),
		offer("37.00", "0", "100000"),
		offer("40.00", "0", "100000"),
	}

	agg, err := Summarize(offers, 3)
	require.NoError(t, err)

	assert.True(t, agg.Average.Equal(decimal.RequireFromString("36.50")),
		"average: got %s", agg.Average)
	assert.True(t, agg.Best.Equal(decimal.RequireFromString("36.00")))
	assert.True(t, agg.Worst.Equal(decimal.RequireFromString("37.00")))
	assert.Equal(t, 3, agg.OfferCount)
}

func TestSummarize_FewerOffersThanWindow(t *testing.T) {
	offers := []Offer{offer("36.00", "0", "100000")}

	agg, err := Summarize(offers, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.OfferCount)
	assert.True(t, agg.Average.Equal(decimal.RequireFromString("36.00")))
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil, 5)
	require.ErrorIs(t, err, domain.ErrNoValidOffers)
}

func sourceResponse(adverts ...[3]string) map[string]any {
	data := make([]map[string]any, 0, len(adverts))
	for _, a := range adverts {
		data = append(data, map[string]any{
			"adv": map[string]any{
				"price":                       a[0],
				"minSingleTransAmount":        a[1],
				"dynamicMaxSingleTransAmount": a[2],
			},
		})
	}
	return map[string]any{"data": data}
}

func TestSuggestedRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, searchPath, r.URL.Path)

		var payload searchPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "USDT", payload.Asset)
		assert.Equal(t, "VES", payload.Fiat)
		assert.Equal(t, "SELL", payload.TradeType)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sourceResponse(
			[3]string{"36.00", "100", "100000"},
			[3]string{"36.50", "100", "100000"},
			[3]string{"37.00", "50000", "100000"},
			[3]string{"not-a-number", "100", "100000"},
		))
	}))
	defer srv.Close()

	agg := NewAggregator(NewClient(srv.URL, 20), 10)

	got, err := agg.SuggestedRate(context.Background(),
		decimal.RequireFromString("1000"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	// The 50000-minimum advert and the malformed one are dropped.
	assert.Equal(t, 2, got.OfferCount)
	assert.True(t, got.Average.Equal(decimal.RequireFromString("36.25")),
		"average: got %s", got.Average)
	assert.True(t, got.Best.Equal(decimal.RequireFromString("36.00")))
	assert.True(t, got.Worst.Equal(decimal.RequireFromString("36.50")))
}

func TestSuggestedRate_NoValidOffers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sourceResponse())
	}))
	defer srv.Close()

	agg := NewAggregator(NewClient(srv.URL, 20), 10)

	_, err := agg.SuggestedRate(context.Background(),
		decimal.RequireFromString("1000"), decimal.Zero, decimal.Zero)
	require.ErrorIs(t, err, domain.ErrNoValidOffers)
}

func TestSuggestedRate_InvalidWindow(t *testing.T) {
	agg := NewAggregator(NewClient("http://unused", 20), 10)

	_, err := agg.SuggestedRate(context.Background(),
		decimal.RequireFromString("1000"),
		decimal.RequireFromString("2000"),
		decimal.RequireFromString("500"))
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}
