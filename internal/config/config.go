package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"DualHalfTrend/internal/collector"
	"DualHalfTrend/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Strategy   strategy.Params `yaml:"strategy"`
	DataSource struct {
		Kind       string  `yaml:"kind"` // yahoo, vstrader, csv or mock
		Symbol     string  `yaml:"symbol"`
		Interval   string  `yaml:"interval"`
		Limit      int     `yaml:"limit"`
		BaseURL    string  `yaml:"base_url"`
		APIKey     string  `yaml:"api_key"`
		CSVPath    string  `yaml:"csv_path"`
		RatePerSec float64 `yaml:"rate_per_sec"`
		Burst      int     `yaml:"burst"`
	} `yaml:"data_source"`
	Schedule struct {
		EvaluateCron string `yaml:"evaluate_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	StateFile   string `yaml:"state_file"`
	MetricsAddr string `yaml:"metrics_addr"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A .env file in the working directory is loaded first if present.
// A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Strategy: strategy.DefaultParams()}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HALFTREND_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("HALFTREND_INTERVAL"); v != "" {
		cfg.DataSource.Interval = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_EVALUATE"); v != "" {
		cfg.Schedule.EvaluateCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ATR_PERIOD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Strategy.ATRPeriod = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Kind == "" {
		c.DataSource.Kind = "yahoo"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "BTC-USD"
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "1h"
	}
	if c.DataSource.Limit == 0 {
		c.DataSource.Limit = 500
	}
	if c.Schedule.EvaluateCron == "" {
		// just after the top of every hour, once the hourly bar has closed
		c.Schedule.EvaluateCron = "30 0 * * * *"
	}
	if c.StateFile == "" {
		c.StateFile = "data/watch_state.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/halftrend.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks that the configuration can drive a watch loop.
func (c *Config) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if _, err := collector.ParseInterval(c.DataSource.Interval); err != nil {
		return fmt.Errorf("data_source.interval: %w", err)
	}
	if c.DataSource.Limit <= c.Strategy.Warmup() {
		return fmt.Errorf("data_source.limit %d must exceed the strategy warm-up of %d bars",
			c.DataSource.Limit, c.Strategy.Warmup())
	}
	switch c.DataSource.Kind {
	case "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
	case "csv":
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for csv")
		}
	default:
		return fmt.Errorf("data_source.kind %q is not one of yahoo, vstrader, csv, mock", c.DataSource.Kind)
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required")
		}
	}
	return nil
}
