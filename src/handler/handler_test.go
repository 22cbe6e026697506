package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/services"
	"github.com/optionsmith/chainview/src/store"
)

type stubFetcher struct {
	candles []models.Candle
	err     error
}

func (f *stubFetcher) FetchDailySeries(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.candles, nil
}

func stubSeries(symbol models.StockSymbol, end time.Time, days int) []models.Candle {
	candles := make([]models.Candle, 0, days)
	for i := days - 1; i >= 0; i-- {
		price := 100.0 + float64(days-1-i)*0.1
		candles = append(candles, models.Candle{
			Symbol: symbol,
			Date:   models.NormalizeDate(end.AddDate(0, 0, -i)),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		})
	}

	return candles
}

func newTestRouter(fetcher *stubFetcher) *mux.Router {
	candleStore := store.NewInMemoryCandleStore()
	marketData := services.NewMarketDataService(candleStore, fetcher, 7)
	chains := services.NewChainService(marketData, models.DefaultChainConfig())

	router := mux.NewRouter()
	SetupHandler(router, marketData, chains)

	return router
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(&stubFetcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestHandlePrices(t *testing.T) {
	now := time.Now().UTC()

	t.Run("returns the candle series", func(t *testing.T) {
		router := newTestRouter(&stubFetcher{candles: stubSeries("AAPL", now, 5)})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prices/AAPL", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var response GetPricesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, models.StockSymbol("AAPL"), response.Symbol)
		assert.Len(t, response.Candles, 5)
	})

	t.Run("returns 404 for an unknown symbol", func(t *testing.T) {
		router := newTestRouter(&stubFetcher{err: models.NoDataErr})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prices/NOSUCH", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var response errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "not_found", response.Type)
	})

	t.Run("returns 503 when the provider is down", func(t *testing.T) {
		router := newTestRouter(&stubFetcher{err: models.ProviderUnavailableErr})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prices/AAPL", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var response errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "provider_unavailable", response.Type)
	})
}

func TestHandleChain(t *testing.T) {
	now := time.Now().UTC()

	t.Run("returns a chain snapshot", func(t *testing.T) {
		router := newTestRouter(&stubFetcher{candles: stubSeries("AAPL", now, 90)})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chain/AAPL", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot models.OptionChainSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, models.StockSymbol("AAPL"), snapshot.Symbol)
		assert.Len(t, snapshot.Expiries, 5)
	})

	t.Run("accepts an expiry query parameter", func(t *testing.T) {
		router := newTestRouter(&stubFetcher{candles: stubSeries("AAPL", now, 90)})

		expiry := now.AddDate(0, 0, 45).Format("2006-01-02")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chain/AAPL?expiry="+expiry, nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot models.OptionChainSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		require.NotNil(t, snapshot.CustomExpiry)
	})

	t.Run("rejects a malformed expiry", func(t *testing.T) {
		router := newTestRouter(&stubFetcher{candles: stubSeries("AAPL", now, 90)})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chain/AAPL?expiry=next-friday", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var response errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "bad_request", response.Type)
	})
}
