package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"TrendLens/internal/analysis"
	"TrendLens/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Symbol     string `yaml:"symbol"`
	DataSource struct {
		Type        string `yaml:"type"` // "csv" or "yahoo"
		DailyCSV    string `yaml:"daily_csv"`
		IntradayCSV string `yaml:"intraday_csv"`
		Timezone    string `yaml:"timezone"`
	} `yaml:"data_source"`
	Analysis struct {
		FastEMA      int      `yaml:"fast_ema"`
		SlowEMA      int      `yaml:"slow_ema"`
		LowTrends    []string `yaml:"low_trends"`
		SessionStart string   `yaml:"session_start"`
		SessionEnd   string   `yaml:"session_end"`
	} `yaml:"analysis"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Type = v
	}
	if v := os.Getenv("DAILY_CSV"); v != "" {
		cfg.DataSource.DailyCSV = v
	}
	if v := os.Getenv("INTRADAY_CSV"); v != "" {
		cfg.DataSource.IntradayCSV = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Symbol == "" {
		cfg.Symbol = "SPX"
	}
	if cfg.DataSource.Type == "" {
		cfg.DataSource.Type = "csv"
	}
	if cfg.DataSource.Type == "csv" && cfg.DataSource.DailyCSV == "" {
		cfg.DataSource.DailyCSV = "data/SP_Daily_1997-2020.csv"
	}
	if cfg.Analysis.FastEMA == 0 {
		cfg.Analysis.FastEMA = 10
	}
	if cfg.Analysis.SlowEMA == 0 {
		cfg.Analysis.SlowEMA = 40
	}
	if len(cfg.Analysis.LowTrends) == 0 {
		cfg.Analysis.LowTrends = []string{string(model.TrendRising)}
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Type {
	case "csv":
		if c.DataSource.DailyCSV == "" {
			return fmt.Errorf("data_source.daily_csv is required for csv source")
		}
	case "yahoo":
	default:
		return fmt.Errorf("data_source.type must be csv or yahoo, got %q", c.DataSource.Type)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Analysis.FastEMA <= 0 || c.Analysis.SlowEMA <= 0 {
		return fmt.Errorf("analysis ema periods must be positive")
	}
	if c.Analysis.FastEMA >= c.Analysis.SlowEMA {
		return fmt.Errorf("analysis.fast_ema (%d) must be shorter than analysis.slow_ema (%d)",
			c.Analysis.FastEMA, c.Analysis.SlowEMA)
	}
	if _, err := c.LowTrends(); err != nil {
		return err
	}
	if _, err := analysis.ParseSession(c.Analysis.SessionStart, c.Analysis.SessionEnd); err != nil {
		return fmt.Errorf("analysis session: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// Location resolves data_source.timezone, UTC when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.DataSource.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.DataSource.Timezone)
	if err != nil {
		return nil, fmt.Errorf("data_source.timezone: %w", err)
	}
	return loc, nil
}

// LowTrends parses analysis.low_trends.
func (c *Config) LowTrends() ([]model.Trend, error) {
	trends := make([]model.Trend, 0, len(c.Analysis.LowTrends))
	for _, s := range c.Analysis.LowTrends {
		t, err := model.ParseTrend(s)
		if err != nil {
			return nil, fmt.Errorf("analysis.low_trends: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, nil
}

// AnalysisOptions converts the analysis section. Call Validate first.
func (c *Config) AnalysisOptions() (analysis.Options, error) {
	trends, err := c.LowTrends()
	if err != nil {
		return analysis.Options{}, err
	}
	session, err := analysis.ParseSession(c.Analysis.SessionStart, c.Analysis.SessionEnd)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{
		FastPeriod: c.Analysis.FastEMA,
		SlowPeriod: c.Analysis.SlowEMA,
		LowTrends:  trends,
		Session:    session,
	}, nil
}

// TelegramEnabled reports whether reports should be pushed to Telegram.
func (c *Config) TelegramEnabled() bool {
	return strings.TrimSpace(c.Telegram.BotToken) != ""
}
