package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/optionsmith/chainview/src/chain"
	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/pricing"
)

// ChainService derives an option chain snapshot for a symbol: price history feeds
// the volatility estimate, the last close is the spot, and the ladders plus the
// pricer produce the chain.
type ChainService struct {
	marketData *MarketDataService
	config     models.ChainConfigYAML
	now        func() time.Time
}

func NewChainService(marketData *MarketDataService, config models.ChainConfigYAML) *ChainService {
	return &ChainService{
		marketData: marketData,
		config:     config,
		now:        time.Now,
	}
}

// GetOptionChain builds a chain snapshot for the symbol. A customExpiry date in
// the future replaces the 0-day rung of the expiry ladder.
func (s *ChainService) GetOptionChain(ctx context.Context, symbol models.StockSymbol, customExpiry *time.Time) (*models.OptionChainSnapshot, error) {
	tracer := otel.Tracer("ChainService")
	ctx, span := tracer.Start(ctx, "GetOptionChain")
	defer span.End()

	series, err := s.marketData.GetPriceSeries(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("GetOptionChain: failed to get price series for %v: %w", symbol, err)
	}

	spot := series[len(series)-1].Close
	if spot <= 0 {
		return nil, fmt.Errorf("GetOptionChain: last close for %v is not positive: %v", symbol, spot)
	}

	volatility := s.estimateVolatility(symbol, series)

	now := s.now()
	strikes := chain.BuildStrikeLadder(spot, s.config.StrikeStep, s.config.StrikeCount)
	expiries := chain.BuildExpiryLadder(s.config.ExpiryDays, now, customExpiry)

	return chain.Generate(symbol, spot, volatility, s.config.RiskFreeRate, strikes, expiries, customExpiry, now), nil
}

func (s *ChainService) estimateVolatility(symbol models.StockSymbol, series []models.Candle) float64 {
	closes := make([]float64, 0, len(series))
	for _, c := range series {
		closes = append(closes, c.Close)
	}

	volatility, err := pricing.HistoricalVolatility(closes, s.config.VolatilityWindow)
	if err != nil {
		if !errors.Is(err, models.InsufficientDataErr) {
			log.Errorf("estimateVolatility: %v: %v", symbol, err)
		} else {
			log.Warnf("estimateVolatility: %v: %v, using default %v", symbol, err, s.config.DefaultVolatility)
		}

		volatility = s.config.DefaultVolatility
	}

	// Clamp into the configured band so a flat or wild series cannot produce a
	// degenerate chain.
	if volatility < s.config.MinVolatility {
		volatility = s.config.MinVolatility
	}

	if volatility > s.config.MaxVolatility {
		volatility = s.config.MaxVolatility
	}

	return volatility
}
