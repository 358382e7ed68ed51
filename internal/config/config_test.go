package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileDefaultsAndValidate(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `
symbols: [IF2406, IC2406]
data_source:
  sqlite_path: /tmp/in.db
  spot: "000300.SH"
analytics:
  ma_windows: [5, 20]
  top_n: 10
cache:
  contract_ttl: 30m
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"IF2406", "IC2406"}, cfg.Symbols)
	assert.Equal(t, "/tmp/in.db", cfg.DataSource.SQLitePath)
	assert.Equal(t, "000300.SH", cfg.DataSource.Spot)
	assert.Equal(t, []int{5, 20}, cfg.Analytics.MAWindows)
	assert.Equal(t, 14, cfg.Analytics.RSIPeriod)
	assert.Equal(t, 120, cfg.Analytics.LookbackDays)
	assert.Equal(t, 10, cfg.LeaderboardSize())
	assert.Equal(t, 30*time.Minute, cfg.Cache.ContractTTL)
	assert.Equal(t, "0 30 17 * * 1-5", cfg.Schedule.DailyCron)
	assert.Equal(t, "data/futures_desk.db", cfg.Database.SQLitePath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, "symbols: [IF2406]\ndatabase:\n  sqlite_path: file.db\n")
	t.Setenv("DESK_DATABASE_SQLITE_PATH", "env.db")
	t.Setenv("DESK_SYMBOLS", "RB2410,HC2410")
	t.Setenv("DESK_ANALYTICS_RSI_PERIOD", "6")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Database.SQLitePath)
	assert.Equal(t, []string{"RB2410", "HC2410"}, cfg.Symbols)
	assert.Equal(t, 6, cfg.Analytics.RSIPeriod)
}

func TestLoad_TopNZeroMeansAll(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(writeConfig(t, "symbols: [IF2406]\nanalytics:\n  top_n: 0\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.LeaderboardSize())

	cfg, err = Load(writeConfig(t, "symbols: [IF2406]\n"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.LeaderboardSize())

	t.Setenv("DESK_ANALYTICS_TOP_N", "0")
	cfg, err = Load(writeConfig(t, "symbols: [IF2406]\nanalytics:\n  top_n: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.LeaderboardSize())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DESK_METRICS_ADDR=:9464\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DESK_METRICS_ADDR") })

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"bad window", func(c *Config) { c.Analytics.MAWindows = []int{5, 0} }},
		{"short lookback", func(c *Config) { c.Analytics.LookbackDays = 10 }},
		{"negative top", func(c *Config) { n := -1; c.Analytics.TopN = &n }},
		{"bad cron", func(c *Config) { c.Schedule.DailyCron = "30 17 * * *" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Symbols: []string{"IF2406"}}
			cfg.applyDefaults()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdir stands in for testing.T.Chdir (Go 1.24+): it changes the working
// directory for the rest of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
