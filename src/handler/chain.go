package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"github.com/optionsmith/chainview/src/models"
)

var queryDecoder = schema.NewDecoder()

type GetChainQuery struct {
	Expiry string `schema:"expiry"`
}

func handleChain(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := models.StockSymbol(vars["symbol"])

	var query GetChainQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		writeError(w, models.NewWebError(400, "invalid query parameters", err))
		return
	}

	var customExpiry *time.Time
	if query.Expiry != "" {
		parsed, err := time.Parse("2006-01-02", query.Expiry)
		if err != nil {
			writeError(w, models.NewWebError(400, "expiry must be formatted YYYY-MM-DD", err))
			return
		}

		customExpiry = &parsed
	}

	snapshot, err := chainService.GetOptionChain(r.Context(), symbol, customExpiry)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := setResponse(snapshot, w); err != nil {
		log.Errorf("handleChain: %v", err)
	}
}
