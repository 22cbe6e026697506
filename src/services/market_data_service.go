package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/singleflight"

	"github.com/optionsmith/chainview/src/eventpubsub"
	"github.com/optionsmith/chainview/src/models"
)

// MarketDataService serves candle series from the store, backfilling from the
// remote provider when a symbol is absent or stale. Concurrent requests for the
// same stale symbol share a single in-flight refresh.
type MarketDataService struct {
	store         CandleStore
	fetcher       SeriesFetcher
	stalenessDays int
	group         singleflight.Group
	now           func() time.Time
}

func NewMarketDataService(store CandleStore, fetcher SeriesFetcher, stalenessDays int) *MarketDataService {
	if stalenessDays <= 0 {
		stalenessDays = 7
	}

	return &MarketDataService{
		store:         store,
		fetcher:       fetcher,
		stalenessDays: stalenessDays,
		now:           time.Now,
	}
}

// GetPriceSeries returns the symbol's full daily history, ascending by date. Stale
// or missing data triggers a backfill first. If the refresh fails but cached rows
// exist, the stale series is served rather than surfacing the provider error.
func (s *MarketDataService) GetPriceSeries(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error) {
	result, err, _ := s.group.Do(string(symbol), func() (interface{}, error) {
		return s.getOrRefresh(ctx, symbol)
	})

	if err != nil {
		return nil, err
	}

	return result.([]models.Candle), nil
}

func (s *MarketDataService) getOrRefresh(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error) {
	tracer := otel.Tracer("MarketDataService")
	ctx, span := tracer.Start(ctx, "GetPriceSeries")
	defer span.End()

	latest, err := s.store.LatestDate(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("getOrRefresh: failed to query latest date for %v: %w", symbol, err)
	}

	if s.isStale(latest) {
		if _, refreshErr := s.refresh(ctx, symbol, latest); refreshErr != nil {
			if errors.Is(refreshErr, models.NoDataErr) {
				return nil, refreshErr
			}

			cached, readErr := s.store.ReadAll(ctx, symbol)
			if readErr == nil && len(cached) > 0 {
				log.WithField("symbol", symbol).Warnf("getOrRefresh: refresh failed, serving stale data: %v", refreshErr)
				return cached, nil
			}

			return nil, refreshErr
		}
	}

	series, err := s.store.ReadAll(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("getOrRefresh: failed to read candles for %v: %w", symbol, err)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("getOrRefresh: no candles stored for %v: %w", symbol, models.NoDataErr)
	}

	return series, nil
}

// Refresh forces a backfill regardless of staleness and returns the number of rows
// written. Used by the backfill CLI.
func (s *MarketDataService) Refresh(ctx context.Context, symbol models.StockSymbol) (int, error) {
	latest, err := s.store.LatestDate(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("Refresh: failed to query latest date for %v: %w", symbol, err)
	}

	return s.refresh(ctx, symbol, latest)
}

func (s *MarketDataService) refresh(ctx context.Context, symbol models.StockSymbol, since *time.Time) (int, error) {
	start := s.now()

	eventpubsub.Publish(eventpubsub.CandlesRefreshStarted, eventpubsub.RefreshEvent{Symbol: symbol})

	candles, err := s.fetcher.FetchDailySeries(ctx, symbol)
	if err != nil {
		eventpubsub.Publish(eventpubsub.CandlesRefreshFailed, eventpubsub.RefreshEvent{Symbol: symbol, Err: err})
		return 0, fmt.Errorf("refresh: fetch failed for %v: %w", symbol, err)
	}

	// A first fetch stores the whole history; subsequent refreshes only write the
	// dates past what is already stored.
	if since != nil {
		incremental := make([]models.Candle, 0, len(candles))
		for _, c := range candles {
			if c.Date.After(*since) {
				incremental = append(incremental, c)
			}
		}

		candles = incremental
	}

	inserted, err := s.store.UpsertBatch(ctx, symbol, candles)
	if err != nil {
		eventpubsub.Publish(eventpubsub.CandlesRefreshFailed, eventpubsub.RefreshEvent{Symbol: symbol, Err: err})
		return 0, fmt.Errorf("refresh: storage failure for %v: %w", symbol, err)
	}

	eventpubsub.Publish(eventpubsub.CandlesRefreshCompleted, eventpubsub.RefreshEvent{Symbol: symbol, Inserted: inserted})

	log.WithFields(log.Fields{
		"symbol":   symbol,
		"inserted": inserted,
		"elapsed":  s.now().Sub(start),
	}).Info("refreshed candle series")

	return inserted, nil
}

func (s *MarketDataService) isStale(latest *time.Time) bool {
	if latest == nil {
		return true
	}

	return s.now().Sub(*latest) > time.Duration(s.stalenessDays)*24*time.Hour
}
