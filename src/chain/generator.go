package chain

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/pricing"
)

// MinTick is the floor applied to every displayed premium so a chain never quotes a
// zero or negative price.
const MinTick = 0.01

// Generate builds a full chain snapshot from the strike and expiry ladders. A
// failure to price a single (strike, expiry) pair yields a placeholder contract at
// that slot; it never aborts the chain.
func Generate(symbol models.StockSymbol, spot, volatility, riskFreeRate float64, strikes []float64, expiryDays []int, customExpiry *time.Time, now time.Time) *models.OptionChainSnapshot {
	snapshot := &models.OptionChainSnapshot{
		Symbol:       symbol,
		Spot:         spot,
		Volatility:   volatility,
		RiskFreeRate: riskFreeRate,
		CustomExpiry: customExpiry,
		Expiries:     make(map[int]*models.ExpiryQuotes, len(expiryDays)),
		GeneratedAt:  now,
	}

	for _, days := range expiryDays {
		effectiveDays := days
		if effectiveDays < 1 {
			effectiveDays = 1
		}

		timeToExpiry := float64(effectiveDays) / 365.0

		quotes := &models.ExpiryQuotes{
			Calls: make([]models.OptionContractSnapshot, 0, len(strikes)),
			Puts:  make([]models.OptionContractSnapshot, 0, len(strikes)),
		}

		for _, strike := range strikes {
			quotes.Calls = append(quotes.Calls, priceContract(models.OptionTypeCall, symbol, spot, strike, timeToExpiry, riskFreeRate, volatility))
			quotes.Puts = append(quotes.Puts, priceContract(models.OptionTypePut, symbol, spot, strike, timeToExpiry, riskFreeRate, volatility))
		}

		snapshot.Expiries[days] = quotes
	}

	return snapshot
}

func priceContract(kind models.OptionType, symbol models.StockSymbol, spot, strike, timeToExpiry, riskFreeRate, volatility float64) models.OptionContractSnapshot {
	greeks, err := pricing.BlackScholes(kind, spot, strike, timeToExpiry, riskFreeRate, volatility)
	if err != nil {
		log.Warnf("priceContract: %v %v strike %v: substituting placeholder: %v", symbol, kind, strike, err)
		return placeholderContract(strike)
	}

	if math.IsNaN(greeks.Price) || math.IsInf(greeks.Price, 0) {
		log.Warnf("priceContract: %v %v strike %v: non-finite price, substituting placeholder", symbol, kind, strike)
		return placeholderContract(strike)
	}

	return models.OptionContractSnapshot{
		Strike:     strike,
		Price:      math.Max(greeks.Price, MinTick),
		Delta:      greeks.Delta,
		Gamma:      greeks.Gamma,
		Theta:      greeks.Theta,
		Vega:       greeks.Vega,
		Rho:        greeks.Rho,
		InTheMoney: inTheMoney(kind, spot, strike),
	}
}

func placeholderContract(strike float64) models.OptionContractSnapshot {
	return models.OptionContractSnapshot{
		Strike: strike,
		Price:  MinTick,
	}
}

func inTheMoney(kind models.OptionType, spot, strike float64) bool {
	if kind == models.OptionTypeCall {
		return spot > strike
	}

	return spot < strike
}
