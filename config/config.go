package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/futures/strategy"
)

// Config represents the complete backtest configuration
type Config struct {
	Data      DataConfig      `json:"data" yaml:"data"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// DataConfig locates the bar series to replay
type DataConfig struct {
	Path   string `json:"path" yaml:"path"`
	Symbol string `json:"symbol" yaml:"symbol"`
	Freq   string `json:"freq" yaml:"freq"`
}

// StrategyConfig selects and parameterizes the strategy
type StrategyConfig struct {
	Name     string  `json:"name" yaml:"name"`
	Fast     int     `json:"fast" yaml:"fast"`
	Slow     int     `json:"slow" yaml:"slow"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
}

// ExecutionConfig contains fill simulation parameters
type ExecutionConfig struct {
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	Slippage       float64 `json:"slippage" yaml:"slippage"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	FillsFile     string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	SnapshotsFile string `json:"snapshots_file,omitempty" yaml:"snapshots_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"` // zerolog level name, default "info"
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	if c.Data.Freq == "" {
		return fmt.Errorf("data.freq is required")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if !strategy.Registered(c.Strategy.Name) {
		return fmt.Errorf("unknown strategy: %s", c.Strategy.Name)
	}
	if c.Strategy.Quantity <= 0 {
		return fmt.Errorf("strategy.quantity must be positive")
	}
	if c.Strategy.Fast < 0 || c.Strategy.Slow < 0 {
		return fmt.Errorf("strategy periods must be non-negative")
	}
	if c.Strategy.Fast > 0 && c.Strategy.Slow > 0 && c.Strategy.Fast >= c.Strategy.Slow {
		return fmt.Errorf("strategy.fast must be less than strategy.slow")
	}
	if c.Execution.CommissionRate < 0 {
		return fmt.Errorf("execution.commission_rate must be non-negative")
	}
	if c.Execution.Slippage < 0 {
		return fmt.Errorf("execution.slippage must be non-negative")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.SnapshotsFile == "" {
			return fmt.Errorf("journal fills_file and snapshots_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Path:   "./bars.csv",
			Symbol: "IF2306",
			Freq:   "1min",
		},
		Strategy: StrategyConfig{
			Name:     "sma-cross",
			Fast:     5,
			Slow:     20,
			Quantity: 1,
		},
		Execution: ExecutionConfig{
			CommissionRate: 0.0003,
			Slippage:       0.2,
		},
		Journal: JournalConfig{
			Type:          "csv",
			FillsFile:     "./fills.csv",
			SnapshotsFile: "./snapshots.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
