package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sma-cross", cfg.Strategy.Name)
	assert.Equal(t, "1min", cfg.Data.Freq)
	assert.Equal(t, 0.0003, cfg.Execution.CommissionRate)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	mutate := func(fn func(*Config)) *Config {
		cfg := Default()
		fn(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		config *Config
		errMsg string
	}{
		{
			name:   "valid config",
			config: Default(),
		},
		{
			name:   "missing data path",
			config: mutate(func(c *Config) { c.Data.Path = "" }),
			errMsg: "data.path is required",
		},
		{
			name:   "missing symbol",
			config: mutate(func(c *Config) { c.Data.Symbol = "" }),
			errMsg: "data.symbol is required",
		},
		{
			name:   "unknown strategy",
			config: mutate(func(c *Config) { c.Strategy.Name = "does-not-exist" }),
			errMsg: "unknown strategy",
		},
		{
			name:   "zero quantity",
			config: mutate(func(c *Config) { c.Strategy.Quantity = 0 }),
			errMsg: "strategy.quantity must be positive",
		},
		{
			name:   "fast not below slow",
			config: mutate(func(c *Config) { c.Strategy.Fast, c.Strategy.Slow = 20, 20 }),
			errMsg: "strategy.fast must be less than strategy.slow",
		},
		{
			name:   "negative commission",
			config: mutate(func(c *Config) { c.Execution.CommissionRate = -0.01 }),
			errMsg: "execution.commission_rate must be non-negative",
		},
		{
			name:   "csv journal without paths",
			config: mutate(func(c *Config) { c.Journal.FillsFile = "" }),
			errMsg: "fills_file and snapshots_file required",
		},
		{
			name:   "sqlite journal without db path",
			config: mutate(func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }),
			errMsg: "db_path required",
		},
		{
			name:   "bad journal type",
			config: mutate(func(c *Config) { c.Journal.Type = "parquet" }),
			errMsg: "journal.type must be",
		},
		{
			name:   "empty journal type means none",
			config: mutate(func(c *Config) { c.Journal = JournalConfig{} }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, ext := range []string{"yaml", "json"} {
		path := filepath.Join(dir, "config."+ext)
		cfg := Default()
		cfg.Data.Symbol = "IC2306"
		require.NoError(t, cfg.SaveToFile(path))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)

	// parses but fails validation
	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  path: bars.csv\n"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
