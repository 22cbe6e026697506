package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/optionsmith/chainview/src/models"
)

// InMemoryCandleStore mirrors the postgres store's semantics for tests and local
// runs without a database.
type InMemoryCandleStore struct {
	mu      sync.Mutex
	candles map[models.StockSymbol]map[time.Time]models.Candle
}

func NewInMemoryCandleStore() *InMemoryCandleStore {
	return &InMemoryCandleStore{
		candles: make(map[models.StockSymbol]map[time.Time]models.Candle),
	}
}

func (s *InMemoryCandleStore) Exists(_ context.Context, symbol models.StockSymbol) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.candles[symbol]) > 0, nil
}

func (s *InMemoryCandleStore) LatestDate(_ context.Context, symbol models.StockSymbol) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate, found := s.candles[symbol]
	if !found || len(byDate) == 0 {
		return nil, nil
	}

	var latest time.Time
	for date := range byDate {
		if date.After(latest) {
			latest = date
		}
	}

	return &latest, nil
}

func (s *InMemoryCandleStore) ReadAll(_ context.Context, symbol models.StockSymbol) ([]models.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate := s.candles[symbol]

	candles := make([]models.Candle, 0, len(byDate))
	for _, c := range byDate {
		candles = append(candles, c)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	return candles, nil
}

func (s *InMemoryCandleStore) UpsertBatch(_ context.Context, symbol models.StockSymbol, candles []models.Candle) (int, error) {
	// Validate the whole batch up front so a bad row rejects the batch atomically,
	// matching the postgres store's transaction semantics.
	for _, c := range candles {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("UpsertBatch: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byDate, found := s.candles[symbol]
	if !found {
		byDate = make(map[time.Time]models.Candle)
		s.candles[symbol] = byDate
	}

	for _, c := range candles {
		c.Symbol = symbol
		c.Date = models.NormalizeDate(c.Date)
		byDate[c.Date] = c
	}

	return len(candles), nil
}
