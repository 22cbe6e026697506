package pricing

import "math"

// standard normal density at zero, 1/sqrt(2*pi)
const invSqrt2Pi = 0.3989423

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}

// NormCDF is the standard normal cumulative distribution function, computed with
// the Zelen & Severo rational-polynomial approximation (accurate to ~7.5e-8).
// Properties: NormCDF(0) == 0.5 and NormCDF(-x) == 1 - NormCDF(x).
func NormCDF(x float64) float64 {
	t := 1.0 / (1.0 + 0.2316419*math.Abs(x))

	poly := t * (0.319381530 + t*(-0.356563782+t*(1.781477937+t*(-1.821255978+t*1.330274429))))
	p := 1.0 - NormPDF(x)*poly

	if x >= 0 {
		return p
	}

	return 1.0 - p
}
