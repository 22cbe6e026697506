package pricing

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/optionsmith/chainview/src/models"
)

const (
	impliedVolMaxIterations = 100
	impliedVolTolerance     = 1e-5
	impliedVolFloor         = 0.001
	impliedVolInitialGuess  = 0.3
)

// HistoricalVolatility annualizes the population standard deviation of daily log
// returns over the most recent min(window, n-1) points. Non-positive closes are
// discarded before the calculation. Returns InsufficientDataErr when fewer than two
// usable closes remain; callers are expected to substitute a default instead of
// propagating it.
func HistoricalVolatility(closes []float64, window int) (float64, error) {
	usable := make([]float64, 0, len(closes))
	for _, c := range closes {
		if c > 0 {
			usable = append(usable, c)
		}
	}

	if len(usable) < 2 {
		return 0, fmt.Errorf("HistoricalVolatility: %d usable closes: %w", len(usable), models.InsufficientDataErr)
	}

	numReturns := len(usable) - 1
	if window > 0 && window < numReturns {
		numReturns = window
	}

	returns := make([]float64, 0, numReturns)
	for i := len(usable) - numReturns; i < len(usable); i++ {
		returns = append(returns, math.Log(usable[i]/usable[i-1]))
	}

	stdDev, err := stats.StdDevP(stats.Float64Data(returns))
	if err != nil {
		return 0, fmt.Errorf("HistoricalVolatility: failed to compute std dev: %w", err)
	}

	return stdDev * math.Sqrt(365), nil
}

// ImpliedVolatility inverts the pricing model via Newton-Raphson on vega. It is
// best-effort: the last iterate is returned even when the loop fails to converge.
func ImpliedVolatility(kind models.OptionType, marketPrice, s, k, t, r float64) float64 {
	v := impliedVolInitialGuess

	for i := 0; i < impliedVolMaxIterations; i++ {
		greeks, err := BlackScholes(kind, s, k, t, r, v)
		if err != nil {
			return v
		}

		diff := marketPrice - greeks.Price
		if math.Abs(diff) < impliedVolTolerance {
			return v
		}

		// Vega is stored per 1% move; the Newton step needs the raw derivative.
		vega := greeks.Vega * 100.0
		if vega == 0 {
			return v
		}

		v += diff / vega
		if v <= 0 {
			v = impliedVolFloor
		}
	}

	return v
}
