package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsmith/chainview/src/models"
)

func noSleepPolicy() *RetryPolicy {
	policy := NewRetryPolicy(3, time.Millisecond)
	policy.Sleep = func(ctx context.Context, d time.Duration) error {
		return nil
	}

	return policy
}

const validSeriesBody = `{
	"Meta Data": {
		"1. Information": "Daily Prices (open, high, low, close) and Volumes",
		"2. Symbol": "AAPL"
	},
	"Time Series (Daily)": {
		"2026-08-03": {
			"1. open": "102.00",
			"2. high": "104.00",
			"3. low": "101.00",
			"4. close": "103.50",
			"5. volume": "1200"
		},
		"2026-08-01": {
			"1. open": "100.00",
			"2. high": "101.50",
			"3. low": "99.00",
			"4. close": "101.00",
			"5. volume": "1000"
		}
	}
}`

func TestFetchDailySeries(t *testing.T) {
	t.Run("parses the series and sorts ascending by date", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
			assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
			assert.Equal(t, "full", r.URL.Query().Get("outputsize"))

			fmt.Fprint(w, validSeriesBody)
		}))
		defer server.Close()

		client := NewAlphaVantageClient(server.URL, "testkey", noSleepPolicy())

		candles, err := client.FetchDailySeries(context.Background(), "AAPL")
		require.NoError(t, err)
		require.Len(t, candles, 2)

		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), candles[0].Date)
		assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), candles[1].Date)
		assert.Equal(t, 101.0, candles[0].Close)
		assert.Equal(t, int64(1200), candles[1].Volume)
		assert.Equal(t, models.StockSymbol("AAPL"), candles[0].Symbol)
	})

	t.Run("treats an in-band note as rate limiting", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient(server.URL, "testkey", noSleepPolicy())

		_, err := client.FetchDailySeries(context.Background(), "AAPL")
		require.ErrorIs(t, err, models.RateLimitedErr)
	})

	t.Run("treats an in-band error message as no data", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, `{"Error Message": "Invalid API call. Please retry or visit the documentation."}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient(server.URL, "testkey", noSleepPolicy())

		_, err := client.FetchDailySeries(context.Background(), "NOSUCH")
		require.ErrorIs(t, err, models.NoDataErr)
		assert.Equal(t, int64(1), calls.Load(), "unknown symbols must not be retried")
	})

	t.Run("rejects a payload with no time series", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Meta Data": {"2. Symbol": "AAPL"}}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient(server.URL, "testkey", noSleepPolicy())

		_, err := client.FetchDailySeries(context.Background(), "AAPL")
		require.ErrorIs(t, err, models.MalformedProviderResponseErr)
	})

	t.Run("rejects a bar with a non-numeric field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Time Series (Daily)": {"2026-08-01": {"1. open": "oops", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"}}}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient(server.URL, "testkey", noSleepPolicy())

		_, err := client.FetchDailySeries(context.Background(), "AAPL")
		require.ErrorIs(t, err, models.MalformedProviderResponseErr)
	})

	t.Run("retries http 429 with backoff", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}

			fmt.Fprint(w, validSeriesBody)
		}))
		defer server.Close()

		client := NewAlphaVantageClient(server.URL, "testkey", noSleepPolicy())

		candles, err := client.FetchDailySeries(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Len(t, candles, 2)
		assert.Equal(t, int64(3), calls.Load())
	})

	t.Run("fails before any request on a placeholder credential", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		for _, key := range []string{"", "demo", "changeme"} {
			client := NewAlphaVantageClient(server.URL, key, noSleepPolicy())

			_, err := client.FetchDailySeries(context.Background(), "AAPL")
			require.ErrorIs(t, err, models.ProviderUnavailableErr, "key %q", key)
		}

		assert.Equal(t, int64(0), calls.Load())
	})

	t.Run("maps a non-200 status to provider unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewAlphaVantageClient(server.URL, "testkey", noSleepPolicy())

		_, err := client.FetchDailySeries(context.Background(), "AAPL")
		require.ErrorIs(t, err, models.ProviderUnavailableErr)
	})
}
