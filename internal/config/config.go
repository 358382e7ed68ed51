package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DESK_DATABASE_SQLITE_PATH.
const EnvPrefix = "DESK"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"sqlite_path"`
		Spot       string `yaml:"spot" envconfig:"spot"` // spot index symbol for basis
	} `yaml:"data_source" envconfig:"data_source"`
	Symbols   []string `yaml:"symbols" envconfig:"symbols"`
	Analytics struct {
		MAWindows    []int `yaml:"ma_windows" envconfig:"ma_windows"`
		RSIPeriod    int   `yaml:"rsi_period" envconfig:"rsi_period"`
		LookbackDays int   `yaml:"lookback_days" envconfig:"lookback_days"`
		TopN         *int  `yaml:"top_n" envconfig:"top_n"` // 0 ranks every broker
		// near symbol -> far symbol for annualized contango
		ContangoPairs map[string]string `yaml:"contango_pairs" envconfig:"contango_pairs"`
	} `yaml:"analytics" envconfig:"analytics"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron" envconfig:"daily_cron"`
	} `yaml:"schedule" envconfig:"schedule"`
	Cache struct {
		ContractTTL time.Duration `yaml:"contract_ttl" envconfig:"contract_ttl"`
	} `yaml:"cache" envconfig:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"sqlite_path"`
	} `yaml:"database" envconfig:"database"`
	Metrics struct {
		Addr string `yaml:"addr" envconfig:"addr"`
	} `yaml:"metrics" envconfig:"metrics"`
}

// Load reads an optional .env file and the YAML config, then applies environment
// overrides and defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Only variables that are set override the file.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.SQLitePath == "" {
		c.DataSource.SQLitePath = "data/market.db"
	}
	if len(c.Analytics.MAWindows) == 0 {
		c.Analytics.MAWindows = []int{5, 10, 20, 60}
	}
	if c.Analytics.RSIPeriod == 0 {
		c.Analytics.RSIPeriod = 14
	}
	if c.Analytics.LookbackDays == 0 {
		c.Analytics.LookbackDays = 120
	}
	if c.Analytics.TopN == nil {
		n := 20
		c.Analytics.TopN = &n
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 17 * * 1-5"
	}
	if c.Cache.ContractTTL == 0 {
		c.Cache.ContractTTL = 12 * time.Hour
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/futures_desk.db"
	}
}

// Same field layout as cron.New(cron.WithSeconds()).
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// LeaderboardSize is the configured top N, 0 meaning every broker.
func (c *Config) LeaderboardSize() int {
	if c.Analytics.TopN == nil {
		return 0
	}
	return *c.Analytics.TopN
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols is required")
	}
	for _, w := range c.Analytics.MAWindows {
		if w <= 0 {
			return fmt.Errorf("analytics.ma_windows must be positive, got %d", w)
		}
	}
	if c.Analytics.RSIPeriod <= 0 {
		return fmt.Errorf("analytics.rsi_period must be positive")
	}
	if c.Analytics.LookbackDays <= c.Analytics.RSIPeriod {
		return fmt.Errorf("analytics.lookback_days must exceed rsi_period")
	}
	if c.Analytics.TopN != nil && *c.Analytics.TopN < 0 {
		return fmt.Errorf("analytics.top_n must not be negative")
	}
	if _, err := cronParser.Parse(c.Schedule.DailyCron); err != nil {
		return fmt.Errorf("schedule.daily_cron: %w", err)
	}
	if c.Cache.ContractTTL < 0 {
		return fmt.Errorf("cache.contract_ttl must not be negative")
	}
	return nil
}
