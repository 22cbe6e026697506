package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optionsmith/chainview/src/models"
)

const DefaultBaseURL = "https://www.alphavantage.co"

// AlphaVantageClient fetches the full daily OHLCV history for a symbol. The
// provider signals rate limiting and unknown symbols in-band, inside an otherwise
// 200 response, so the client inspects the decoded payload rather than relying on
// transport status codes alone.
type AlphaVantageClient struct {
	baseURL string
	apiKey  string
	client  http.Client
	retry   *RetryPolicy
}

func NewAlphaVantageClient(baseURL, apiKey string, retry *RetryPolicy) *AlphaVantageClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if retry == nil {
		retry = NewRetryPolicy(3, 1000*time.Millisecond)
	}

	return &AlphaVantageClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: http.Client{
			Timeout: 10 * time.Second,
		},
		retry: retry,
	}
}

// dailySeriesDTO is the provider's loosely-typed wire shape. Every numeric field
// arrives as a string under a numbered key.
type dailySeriesDTO struct {
	ErrorMessage string                 `json:"Error Message"`
	Note         string                 `json:"Note"`
	Information  string                 `json:"Information"`
	TimeSeries   map[string]dailyBarDTO `json:"Time Series (Daily)"`
	MetaData     map[string]string      `json:"Meta Data"`
}

type dailyBarDTO struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// FetchDailySeries returns the symbol's complete daily history sorted ascending by
// date. The credential is checked before any network round trip.
func (c *AlphaVantageClient) FetchDailySeries(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error) {
	if c.apiKey == "" || c.apiKey == "demo" || c.apiKey == "changeme" {
		return nil, fmt.Errorf("FetchDailySeries: missing or placeholder api key: %w", models.ProviderUnavailableErr)
	}

	var candles []models.Candle
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		fetched, fetchErr := c.fetchOnce(ctx, symbol)
		if fetchErr != nil {
			return fetchErr
		}

		candles = fetched

		return nil
	})

	if err != nil {
		return nil, err
	}

	return candles, nil
}

func (c *AlphaVantageClient) fetchOnce(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error) {
	requestURL := fmt.Sprintf("%s/query", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetchOnce: failed to create request: %w", err)
	}

	q := url.Values{}
	q.Add("function", "TIME_SERIES_DAILY")
	q.Add("symbol", string(symbol))
	q.Add("outputsize", "full")
	q.Add("apikey", c.apiKey)

	req.URL.RawQuery = q.Encode()
	req.Header.Add("Accept", "application/json")

	log.Debugf("fetchOnce: fetching daily series for %v", symbol)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetchOnce: request failed: %v: %w", err, models.ProviderUnavailableErr)
	}

	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fetchOnce: http %v: %w", res.Status, models.RateLimitedErr)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetchOnce: http %v: %w", res.Status, models.ProviderUnavailableErr)
	}

	var dto dailySeriesDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("fetchOnce: failed to decode json: %v: %w", err, models.MalformedProviderResponseErr)
	}

	return parseDailySeries(symbol, &dto)
}

// parseDailySeries maps the loosely-typed payload into typed candles, failing fast
// on any shape mismatch.
func parseDailySeries(symbol models.StockSymbol, dto *dailySeriesDTO) ([]models.Candle, error) {
	// In-band signals take precedence over shape checks: a throttled response also
	// has an empty time series.
	if dto.Note != "" || dto.Information != "" {
		return nil, fmt.Errorf("parseDailySeries: provider throttled request: %w", models.RateLimitedErr)
	}

	if dto.ErrorMessage != "" {
		return nil, fmt.Errorf("parseDailySeries: %v: %w", dto.ErrorMessage, models.NoDataErr)
	}

	if len(dto.TimeSeries) == 0 {
		return nil, fmt.Errorf("parseDailySeries: missing time series for %v: %w", symbol, models.MalformedProviderResponseErr)
	}

	candles := make([]models.Candle, 0, len(dto.TimeSeries))
	for dateStr, bar := range dto.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parseDailySeries: bad date %q: %w", dateStr, models.MalformedProviderResponseErr)
		}

		candle := models.Candle{
			Symbol: symbol,
			Date:   models.NormalizeDate(date),
		}

		fields := []struct {
			name  string
			raw   string
			value *float64
		}{
			{"1. open", bar.Open, &candle.Open},
			{"2. high", bar.High, &candle.High},
			{"3. low", bar.Low, &candle.Low},
			{"4. close", bar.Close, &candle.Close},
		}

		for _, f := range fields {
			v, parseErr := strconv.ParseFloat(f.raw, 64)
			if parseErr != nil {
				return nil, fmt.Errorf("parseDailySeries: bad %q on %v: %w", f.name, dateStr, models.MalformedProviderResponseErr)
			}

			*f.value = v
		}

		volume, err := strconv.ParseInt(bar.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parseDailySeries: bad \"5. volume\" on %v: %w", dateStr, models.MalformedProviderResponseErr)
		}

		candle.Volume = volume

		if err := candle.Validate(); err != nil {
			return nil, fmt.Errorf("parseDailySeries: %v: %w", err, models.MalformedProviderResponseErr)
		}

		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	return candles, nil
}
