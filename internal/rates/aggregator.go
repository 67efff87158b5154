package rates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

// Aggregate is the suggested exchange rate derived from a page of offers.
type Aggregate struct {
	Average    decimal.Decimal
	Best       decimal.Decimal
	Worst      decimal.Decimal
	OfferCount int
}

type offerFetcher interface {
	FetchSellOffers(ctx context.Context, tradeAmount decimal.Decimal) ([]Offer, error)
}

type Aggregator struct {
	client    offerFetcher
	topOffers int
}

func NewAggregator(client offerFetcher, topOffers int) *Aggregator {
	return &Aggregator{client: client, topOffers: topOffers}
}

// Filter keeps the offers whose advertised transaction bounds cover the
// whole [minAmount, maxAmount] window.
func Filter(offers []Offer, minAmount, maxAmount decimal.Decimal) []Offer {
	kept := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if o.MinTrans.GreaterThan(minAmount) {
			continue
		}
		if o.MaxTrans.LessThan(maxAmount) {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

// Summarize computes the arithmetic mean over the first n offers plus the
// best and worst price in that window. Offers arrive already price-sorted
// from the source.
func Summarize(offers []Offer, n int) (Aggregate, error) {
	if len(offers) == 0 {
		return Aggregate{}, domain.ErrNoValidOffers
	}
	if n > len(offers) {
		n = len(offers)
	}

	top := offers[:n]
	sum := decimal.Zero
	best := top[0].Price
	worst := top[0].Price
	for _, o := range top {
		sum = sum.Add(o.Price)
		if o.Price.LessThan(best) {
			best = o.Price
		}
		if o.Price.GreaterThan(worst) {
			worst = o.Price
		}
	}

	return Aggregate{
		Average:    sum.DivRound(decimal.NewFromInt(int64(n)), 2),
		Best:       best,
		Worst:      worst,
		OfferCount: n,
	}, nil
}

// SuggestedRate fetches one page of sell offers for the trade amount,
// discards those that cannot serve the requested window and averages the
// top of what remains. The window defaults to [amount, amount] when no
// explicit bounds are given.
func (a *Aggregator) SuggestedRate(ctx context.Context, amount, minAmount, maxAmount decimal.Decimal) (*Aggregate, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("SuggestedRate: %w", domain.ErrInvalidAmount)
	}
	if minAmount.IsZero() {
		minAmount = amount
	}
	if maxAmount.IsZero() {
		maxAmount = amount
	}
	if minAmount.GreaterThan(maxAmount) {
		return nil, fmt.Errorf("SuggestedRate: %w", domain.ErrInvalidRequest)
	}

	offers, err := a.client.FetchSellOffers(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("SuggestedRate: %w", err)
	}

	agg, err := Summarize(Filter(offers, minAmount, maxAmount), a.topOffers)
	if err != nil {
		return nil, fmt.Errorf("SuggestedRate: %w", err)
	}
	return &agg, nil
}
