package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendLens/internal/analysis"
	"TrendLens/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "SPX", cfg.Symbol)
	assert.Equal(t, "csv", cfg.DataSource.Type)
	assert.NotEmpty(t, cfg.DataSource.DailyCSV)
	assert.Equal(t, 10, cfg.Analysis.FastEMA)
	assert.Equal(t, 40, cfg.Analysis.SlowEMA)
	assert.Equal(t, []string{"RISING"}, cfg.Analysis.LowTrends)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
symbol: NDX
data_source:
  type: csv
  daily_csv: daily.csv
  intraday_csv: intraday.csv
analysis:
  fast_ema: 5
  slow_ema: 20
  low_trends: [rising, falling]
  session_start: "09:30"
  session_end: "16:00"
schedule:
  cron: "0 0 6 * * 2-6"
`)
	t.Setenv("DAILY_CSV", "override.csv")
	t.Setenv("SQLITE_PATH", "runs.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "NDX", cfg.Symbol)
	assert.Equal(t, "override.csv", cfg.DataSource.DailyCSV)
	assert.Equal(t, "intraday.csv", cfg.DataSource.IntradayCSV)
	assert.Equal(t, "runs.db", cfg.Database.SQLitePath)
	assert.Equal(t, "0 0 6 * * 2-6", cfg.Schedule.Cron)

	opts, err := cfg.AnalysisOptions()
	require.NoError(t, err)
	assert.Equal(t, 5, opts.FastPeriod)
	assert.Equal(t, 20, opts.SlowPeriod)
	assert.Equal(t, []model.Trend{model.TrendRising, model.TrendFalling}, opts.LowTrends)
	assert.Equal(t, analysis.Session{Start: 570, End: 960}, opts.Session)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "symbol: [unterminated"))
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown source", func(c *Config) { c.DataSource.Type = "ftp" }},
		{"missing daily csv", func(c *Config) { c.DataSource.DailyCSV = "" }},
		{"fast not shorter", func(c *Config) { c.Analysis.FastEMA = 40 }},
		{"negative period", func(c *Config) { c.Analysis.SlowEMA = -1 }},
		{"unknown trend", func(c *Config) { c.Analysis.LowTrends = []string{"SIDEWAYS"} }},
		{"half session", func(c *Config) { c.Analysis.SessionStart = "09:30" }},
		{"unknown timezone", func(c *Config) { c.DataSource.Timezone = "Mars/Olympus" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "123:abc" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_YahooNeedsNoFiles(t *testing.T) {
	t.Setenv("DATA_SOURCE", "yahoo")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.DataSource.DailyCSV)
	assert.NoError(t, cfg.Validate())
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.DataSource.Timezone = "America/New_York"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}
