package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/store"
)

func newChainFixture(t *testing.T, fetcher *fakeFetcher) *ChainService {
	t.Helper()

	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	candleStore := store.NewInMemoryCandleStore()
	marketData := NewMarketDataService(candleStore, fetcher, 7)
	marketData.now = func() time.Time { return today }

	svc := NewChainService(marketData, models.DefaultChainConfig())
	svc.now = func() time.Time { return today }

	return svc
}

func TestGetOptionChain(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	series := dailySeries("AAPL", today, 90)
	series[len(series)-1].Close = 101

	t.Run("builds the full ladder from the latest close", func(t *testing.T) {
		svc := newChainFixture(t, &fakeFetcher{candles: series})

		snapshot, err := svc.GetOptionChain(ctx, "AAPL", nil)
		require.NoError(t, err)

		assert.Equal(t, models.StockSymbol("AAPL"), snapshot.Symbol)
		assert.Equal(t, 101.0, snapshot.Spot)

		require.Len(t, snapshot.Expiries, 5)
		for _, days := range []int{0, 30, 60, 90, 180} {
			require.Contains(t, snapshot.Expiries, days)
		}

		quotes := snapshot.Expiries[30]
		require.Len(t, quotes.Calls, 10)
		assert.Equal(t, 125.0, quotes.Calls[0].Strike)
		assert.Equal(t, 80.0, quotes.Calls[9].Strike)

		atm := quotes.Calls[5]
		assert.Equal(t, 100.0, atm.Strike)
		assert.True(t, atm.InTheMoney)
		assert.False(t, quotes.Puts[5].InTheMoney)
	})

	t.Run("clamps the volatility estimate into the configured band", func(t *testing.T) {
		svc := newChainFixture(t, &fakeFetcher{candles: series})

		snapshot, err := svc.GetOptionChain(ctx, "AAPL", nil)
		require.NoError(t, err)

		config := models.DefaultChainConfig()
		assert.GreaterOrEqual(t, snapshot.Volatility, config.MinVolatility)
		assert.LessOrEqual(t, snapshot.Volatility, config.MaxVolatility)
	})

	t.Run("quotes a requested expiry date in place of the zero rung", func(t *testing.T) {
		svc := newChainFixture(t, &fakeFetcher{candles: series})

		target := today.AddDate(0, 0, 45)
		snapshot, err := svc.GetOptionChain(ctx, "AAPL", &target)
		require.NoError(t, err)

		require.Contains(t, snapshot.Expiries, 45)
		require.NotContains(t, snapshot.Expiries, 0)
		require.NotNil(t, snapshot.CustomExpiry)
		assert.Equal(t, target, *snapshot.CustomExpiry)
	})

	t.Run("falls back to the default volatility on a short series", func(t *testing.T) {
		short := dailySeries("AAPL", today, 1)
		svc := newChainFixture(t, &fakeFetcher{candles: short})

		snapshot, err := svc.GetOptionChain(ctx, "AAPL", nil)
		require.NoError(t, err)

		config := models.DefaultChainConfig()
		assert.Equal(t, config.DefaultVolatility, snapshot.Volatility)
	})

	t.Run("propagates a missing symbol", func(t *testing.T) {
		svc := newChainFixture(t, &fakeFetcher{err: models.NoDataErr})

		_, err := svc.GetOptionChain(ctx, "NOSUCH", nil)
		require.ErrorIs(t, err, models.NoDataErr)
	})
}
