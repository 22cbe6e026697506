package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/optionsmith/chainview/src/models"
)

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := errorResponse{Type: errType, Msg: err.Error()}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		log.Errorf("setErrorResponse: encode: %v", encodeErr)
	}
}

// writeError maps service errors onto the fixed set of user-facing categories.
func writeError(w http.ResponseWriter, err error) {
	var webErr *models.WebError
	if errors.As(err, &webErr) {
		setErrorResponse("bad_request", webErr.StatusCode, webErr, w)
		return
	}

	switch {
	case errors.Is(err, models.NoDataErr):
		setErrorResponse("not_found", http.StatusNotFound, fmt.Errorf("symbol not found"), w)
	case errors.Is(err, models.RateLimitedErr), errors.Is(err, models.ProviderUnavailableErr):
		setErrorResponse("provider_unavailable", http.StatusServiceUnavailable, fmt.Errorf("market data provider unavailable, try again later"), w)
	default:
		log.Errorf("writeError: internal error: %v", err)
		setErrorResponse("internal_error", http.StatusInternalServerError, fmt.Errorf("internal error"), w)
	}
}
