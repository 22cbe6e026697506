package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChainConfigYAML holds the ladder and pricing tunables loaded from chain_config.yaml.
type ChainConfigYAML struct {
	RiskFreeRate      float64 `yaml:"risk_free_rate"`
	StrikeStep        float64 `yaml:"strike_step"`
	StrikeCount       int     `yaml:"strike_count"`
	ExpiryDays        []int   `yaml:"expiry_days"`
	VolatilityWindow  int     `yaml:"volatility_window"`
	DefaultVolatility float64 `yaml:"default_volatility"`
	MinVolatility     float64 `yaml:"min_volatility"`
	MaxVolatility     float64 `yaml:"max_volatility"`
	StalenessDays     int     `yaml:"staleness_days"`
}

func DefaultChainConfig() ChainConfigYAML {
	return ChainConfigYAML{
		RiskFreeRate:      0.035,
		StrikeStep:        5,
		StrikeCount:       10,
		ExpiryDays:        []int{0, 30, 60, 90, 180},
		VolatilityWindow:  90,
		DefaultVolatility: 0.30,
		MinVolatility:     0.10,
		MaxVolatility:     0.80,
		StalenessDays:     7,
	}
}

func LoadChainConfig(filename string) (ChainConfigYAML, error) {
	config := DefaultChainConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("LoadChainConfig: failed to read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("LoadChainConfig: failed to unmarshal %s: %w", filename, err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("LoadChainConfig: %w", err)
	}

	return config, nil
}

func (c ChainConfigYAML) Validate() error {
	if c.StrikeStep <= 0 {
		return fmt.Errorf("strike_step must be positive")
	}

	if c.StrikeCount <= 0 {
		return fmt.Errorf("strike_count must be positive")
	}

	if len(c.ExpiryDays) == 0 {
		return fmt.Errorf("expiry_days must not be empty")
	}

	if c.MinVolatility <= 0 || c.MaxVolatility <= c.MinVolatility {
		return fmt.Errorf("volatility band [%v, %v] is invalid", c.MinVolatility, c.MaxVolatility)
	}

	if c.StalenessDays <= 0 {
		return fmt.Errorf("staleness_days must be positive")
	}

	return nil
}
