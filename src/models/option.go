package models

import "time"

type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// OptionContractSnapshot is one priced contract. Theta is per calendar day, vega is
// per 1% volatility move and rho per 1% rate move.
type OptionContractSnapshot struct {
	Strike     float64 `json:"strike"`
	Price      float64 `json:"price"`
	Delta      float64 `json:"delta"`
	Gamma      float64 `json:"gamma"`
	Theta      float64 `json:"theta"`
	Vega       float64 `json:"vega"`
	Rho        float64 `json:"rho"`
	InTheMoney bool    `json:"in_the_money"`
}

// ExpiryQuotes holds both sides of the chain for a single expiration, each ordered
// by strike descending to match the strike ladder.
type ExpiryQuotes struct {
	Calls []OptionContractSnapshot `json:"calls"`
	Puts  []OptionContractSnapshot `json:"puts"`
}

// OptionChainSnapshot is rebuilt per request and never persisted. The Expiries keys
// are exactly the days-to-expiry ladder the chain was generated from.
type OptionChainSnapshot struct {
	Symbol       StockSymbol           `json:"symbol"`
	Spot         float64               `json:"spot"`
	Volatility   float64               `json:"volatility"`
	RiskFreeRate float64               `json:"risk_free_rate"`
	CustomExpiry *time.Time            `json:"custom_expiry,omitempty"`
	Expiries     map[int]*ExpiryQuotes `json:"expiries"`
	GeneratedAt  time.Time             `json:"generated_at"`
}
