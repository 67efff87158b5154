package rates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/logging"
)

const searchPath = "/bapi/c2c/v2/friendly/c2c/adv/search"

// Offer is one peer-to-peer sell advert: a price in bolivars per USDT and
// the advertised single-transaction bounds.
type Offer struct {
	Price    decimal.Decimal
	MinTrans decimal.Decimal
	MaxTrans decimal.Decimal
}

type Client struct {
	baseURL    string
	rows       int
	httpClient *http.Client
}

func NewClient(baseURL string, rows int) *Client {
	return &Client{
		baseURL: baseURL,
		rows:    rows,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type searchPayload struct {
	Asset       string `json:"asset"`
	Fiat        string `json:"fiat"`
	TradeType   string `json:"tradeType"`
	Page        int    `json:"page"`
	Rows        int    `json:"rows"`
	TransAmount string `json:"transAmount,omitempty"`
}

type searchResponse struct {
	Data []struct {
		Adv struct {
			Price                 string `json:"price"`
			MinSingleTransAmount  string `json:"minSingleTransAmount"`
			DynamicMaxSingleTrans string `json:"dynamicMaxSingleTransAmount"`
		} `json:"adv"`
	} `json:"data"`
}

// FetchSellOffers requests one page of USDT/VES sell adverts around the
// given trade amount.
func (c *Client) FetchSellOffers(ctx context.Context, tradeAmount decimal.Decimal) ([]Offer, error) {
	log := logging.FromContext(ctx)

	payload := searchPayload{
		Asset:     "USDT",
		Fiat:      "VES",
		TradeType: "SELL",
		Page:      1,
		Rows:      c.rows,
	}
	if tradeAmount.IsPositive() {
		payload.TransAmount = tradeAmount.String()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("FetchSellOffers: marshal: %w", err)
	}

	url := c.baseURL + searchPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("FetchSellOffers: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("FetchSellOffers: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("rate source response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("FetchSellOffers: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("FetchSellOffers: decode: %w", err)
	}

	offers := make([]Offer, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		price, err := decimal.NewFromString(item.Adv.Price)
		if err != nil {
			// Malformed adverts are skipped, not fatal.
			continue
		}
		minTrans, err := decimal.NewFromString(item.Adv.MinSingleTransAmount)
		if err != nil {
			continue
		}
		maxTrans, err := decimal.NewFromString(item.Adv.DynamicMaxSingleTrans)
		if err != nil {
			continue
		}
		offers = append(offers, Offer{Price: price, MinTrans: minTrans, MaxTrans: maxTrans})
	}
	return offers, nil
}
