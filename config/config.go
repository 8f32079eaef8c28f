package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/resheikhi/samdash/predictor"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string        `yaml:"addr"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Prediction struct {
		HorizonDays    int    `yaml:"horizon_days"`
		MaxHorizonDays int    `yaml:"max_horizon_days"`
		TableRows      int    `yaml:"table_rows"`
		ChartRows      int    `yaml:"chart_rows"`
		FileName       string `yaml:"file_name"`
	} `yaml:"prediction"`
	Rabbit struct {
		URL          string        `yaml:"url"`
		RequestQueue string        `yaml:"request_queue"`
		ReplyQueue   string        `yaml:"reply_queue"`
		ReplyTimeout time.Duration `yaml:"reply_timeout"`
	} `yaml:"rabbit"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SAMDASH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RABBIT_URL"); v != "" {
		cfg.Rabbit.URL = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Prediction.HorizonDays == 0 {
		cfg.Prediction.HorizonDays = predictor.DefaultHorizonDays
	}
	if cfg.Prediction.MaxHorizonDays == 0 {
		cfg.Prediction.MaxHorizonDays = 3650
	}
	if cfg.Prediction.TableRows == 0 {
		cfg.Prediction.TableRows = 10
	}
	if cfg.Prediction.ChartRows == 0 {
		cfg.Prediction.ChartRows = 60
	}
	if cfg.Prediction.FileName == "" {
		cfg.Prediction.FileName = "predicted_prices"
	}
	if cfg.Rabbit.RequestQueue == "" {
		cfg.Rabbit.RequestQueue = "prediction_req"
	}
	if cfg.Rabbit.ReplyQueue == "" {
		cfg.Rabbit.ReplyQueue = "prediction_resp"
	}
	if cfg.Rabbit.ReplyTimeout == 0 {
		cfg.Rabbit.ReplyTimeout = 30 * time.Second
	}

	return cfg, nil
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.Prediction.HorizonDays < 0 {
		return fmt.Errorf("prediction.horizon_days must not be negative")
	}
	if c.Prediction.MaxHorizonDays < c.Prediction.HorizonDays {
		return fmt.Errorf("prediction.max_horizon_days must be at least prediction.horizon_days")
	}
	if c.Prediction.TableRows < 0 || c.Prediction.ChartRows < 0 {
		return fmt.Errorf("prediction.table_rows and prediction.chart_rows must not be negative")
	}
	if c.Server.RequestTimeout < 0 || c.Rabbit.ReplyTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// AsyncEnabled reports whether predictions can be sent to a worker.
func (c *Config) AsyncEnabled() bool {
	return c.Rabbit.URL != ""
}
