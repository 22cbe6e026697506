package pricing

import (
	"math"

	"github.com/optionsmith/chainview/src/models"
)

// Below this time-to-expiry (in years) the formula degenerates in v*sqrt(T), so the
// pricer returns intrinsic value instead.
const minTimeToExpiry = 1e-5

// Greeks is a full Black-Scholes valuation of a single vanilla European option.
// Theta is per calendar day, Vega per 1% volatility move, Rho per 1% rate move.
type Greeks struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// BlackScholes prices a European option and its Greeks from spot s, strike k,
// time-to-expiry t (years), risk-free rate r and volatility v. Pure function.
func BlackScholes(kind models.OptionType, s, k, t, r, v float64) (*Greeks, error) {
	if s <= 0 {
		return nil, models.NewInvalidInputError("spot", s)
	}

	if k <= 0 {
		return nil, models.NewInvalidInputError("strike", k)
	}

	if t <= 0 {
		return nil, models.NewInvalidInputError("timeToExpiry", t)
	}

	if v <= 0 {
		return nil, models.NewInvalidInputError("volatility", v)
	}

	if t < minTimeToExpiry {
		return &Greeks{Price: intrinsicValue(kind, s, k)}, nil
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*v*v)*t) / (v * sqrtT)
	d2 := d1 - v*sqrtT

	discount := math.Exp(-r * t)
	pdfD1 := NormPDF(d1)

	gamma := pdfD1 / (s * v * sqrtT)
	vega := s * sqrtT * pdfD1 / 100.0

	var price, delta, theta, rho float64
	if kind == models.OptionTypeCall {
		price = s*NormCDF(d1) - k*discount*NormCDF(d2)
		delta = NormCDF(d1)
		theta = -s*pdfD1*v/(2*sqrtT) - r*k*discount*NormCDF(d2)
		rho = k * t * discount * NormCDF(d2) / 100.0
	} else {
		price = k*discount*NormCDF(-d2) - s*NormCDF(-d1)
		delta = NormCDF(d1) - 1
		theta = -s*pdfD1*v/(2*sqrtT) + r*k*discount*NormCDF(-d2)
		rho = -k * t * discount * NormCDF(-d2) / 100.0
	}

	return &Greeks{
		Price: price,
		Delta: delta,
		Gamma: gamma,
		Theta: theta / 365.0,
		Vega:  vega,
		Rho:   rho,
	}, nil
}

func intrinsicValue(kind models.OptionType, s, k float64) float64 {
	if kind == models.OptionTypeCall {
		return math.Max(0, s-k)
	}

	return math.Max(0, k-s)
}
