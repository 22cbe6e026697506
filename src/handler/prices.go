package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/services"
)

var (
	marketDataService *services.MarketDataService
	chainService      *services.ChainService
)

// SetupHandler registers the HTTP surface on the given router.
func SetupHandler(router *mux.Router, marketData *services.MarketDataService, chains *services.ChainService) {
	marketDataService = marketData
	chainService = chains

	router.HandleFunc("/health", handleHealth).Methods("GET")
	router.HandleFunc("/prices/{symbol}", handlePrices).Methods("GET")
	router.HandleFunc("/chain/{symbol}", handleChain).Methods("GET")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := setResponse(map[string]string{"status": "ok"}, w); err != nil {
		log.Errorf("handleHealth: %v", err)
	}
}

type GetPricesResponse struct {
	Symbol  models.StockSymbol `json:"symbol"`
	Candles []models.Candle    `json:"candles"`
}

func handlePrices(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := models.StockSymbol(vars["symbol"])

	series, err := marketDataService.GetPriceSeries(r.Context(), symbol)
	if err != nil {
		writeError(w, err)
		return
	}

	response := GetPricesResponse{
		Symbol:  symbol,
		Candles: series,
	}

	if err := setResponse(response, w); err != nil {
		log.Errorf("handlePrices: %v", err)
	}
}
