package services

import (
	"context"
	"time"

	"github.com/optionsmith/chainview/src/models"
)

// CandleStore is the persistence boundary. Implementations must make UpsertBatch
// atomic: a failure leaves prior rows intact.
type CandleStore interface {
	LatestDate(ctx context.Context, symbol models.StockSymbol) (*time.Time, error)
	ReadAll(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error)
	UpsertBatch(ctx context.Context, symbol models.StockSymbol, candles []models.Candle) (int, error)
}

// SeriesFetcher is the remote provider boundary. The returned candles are sorted
// ascending by date.
type SeriesFetcher interface {
	FetchDailySeries(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error)
}
