package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/rates"
)

type rateAggregator interface {
	SuggestedRate(ctx context.Context, amount, minAmount, maxAmount decimal.Decimal) (*rates.Aggregate, error)
}

type RateHandler struct {
	aggregator rateAggregator
}

func NewRateHandler(aggregator rateAggregator) *RateHandler {
	return &RateHandler{aggregator: aggregator}
}

type rateResponse struct {
	Average    string `json:"average"`
	Best       string `json:"best"`
	Worst      string `json:"worst"`
	OfferCount int    `json:"offer_count"`
}

func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil || !amount.IsPositive() {
		RespondValidationError(w, []FieldError{{Field: "amount", Message: "must be a positive number"}})
		return
	}

	minAmount := decimal.Zero
	if v := q.Get("minAmount"); v != "" {
		minAmount, err = decimal.NewFromString(v)
		if err != nil || minAmount.IsNegative() {
			RespondValidationError(w, []FieldError{{Field: "minAmount", Message: "must be a non-negative number"}})
			return
		}
	}

	maxAmount := decimal.Zero
	if v := q.Get("maxAmount"); v != "" {
		maxAmount, err = decimal.NewFromString(v)
		if err != nil || maxAmount.IsNegative() {
			RespondValidationError(w, []FieldError{{Field: "maxAmount", Message: "must be a non-negative number"}})
			return
		}
	}

	agg, err := h.aggregator.SuggestedRate(r.Context(), amount, minAmount, maxAmount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, rateResponse{
		Average:    agg.Average.String(),
		Best:       agg.Best.String(),
		Worst:      agg.Worst.String(),
		OfferCount: agg.OfferCount,
	})
}
