package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/nordex-trade/mercury-api/internal/logging"
)

// Serves canned USDT/VES sell adverts in the upstream P2P wire format so the
// exchange-rate endpoint can be exercised without hitting the real source.
func main() {
	logging.Init("mock-quotes", "info", os.Getenv("APP_ENV"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})
	mux.HandleFunc("POST /bapi/c2c/v2/friendly/c2c/adv/search", handleSearch)

	slog.Info("mock quote source started", "addr", ":8081")
	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type advert struct {
	Price    string `json:"price"`
	MinTrans string `json:"minSingleTransAmount"`
	MaxTrans string `json:"dynamicMaxSingleTransAmount"`
}

var basePrices = []string{"36.10", "36.25", "36.40", "36.55", "36.70", "36.85", "37.00", "37.20"}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Asset     string `json:"asset"`
		Fiat      string `json:"fiat"`
		TradeType string `json:"tradeType"`
		Rows      int    `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	slog.Info("search request",
		"asset", payload.Asset,
		"fiat", payload.Fiat,
		"trade_type", payload.TradeType,
		"rows", payload.Rows)

	rows := payload.Rows
	if rows <= 0 || rows > len(basePrices) {
		rows = len(basePrices)
	}

	// The real source returns adverts sorted by price ascending.
	adverts := make([]map[string]advert, 0, rows)
	for i := 0; i < rows; i++ {
		adverts = append(adverts, map[string]advert{
			"adv": {
				Price:    basePrices[i],
				MinTrans: "500.00",
				MaxTrans: "200000.00",
			},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": adverts}); err != nil {
		slog.Error("failed to write search response", "error", err)
	}
}
