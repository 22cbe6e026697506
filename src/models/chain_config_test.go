package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadChainConfig(t *testing.T) {
	t.Run("overrides defaults from the yaml file", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "chain_config.yaml")
		data := []byte("risk_free_rate: 0.05\nstrike_step: 2.5\nexpiry_days: [0, 7, 14]\n")
		require.NoError(t, os.WriteFile(filename, data, 0644))

		config, err := LoadChainConfig(filename)
		require.NoError(t, err)

		assert.Equal(t, 0.05, config.RiskFreeRate)
		assert.Equal(t, 2.5, config.StrikeStep)
		assert.Equal(t, []int{0, 7, 14}, config.ExpiryDays)

		assert.Equal(t, 10, config.StrikeCount)
		assert.Equal(t, 0.30, config.DefaultVolatility)
	})

	t.Run("returns the defaults when the file is missing", func(t *testing.T) {
		config, err := LoadChainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)

		assert.Equal(t, DefaultChainConfig(), config)
	})

	t.Run("rejects an invalid volatility band", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "chain_config.yaml")
		data := []byte("min_volatility: 0.5\nmax_volatility: 0.2\n")
		require.NoError(t, os.WriteFile(filename, data, 0644))

		_, err := LoadChainConfig(filename)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "volatility band")
	})
}

func TestChainConfigValidate(t *testing.T) {
	t.Run("accepts the defaults", func(t *testing.T) {
		assert.NoError(t, DefaultChainConfig().Validate())
	})

	t.Run("rejects a non-positive strike step", func(t *testing.T) {
		config := DefaultChainConfig()
		config.StrikeStep = 0

		assert.Error(t, config.Validate())
	})
}
