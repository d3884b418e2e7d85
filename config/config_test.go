package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10000.0, cfg.Account.Balance)
	assert.Equal(t, 0.10, cfg.Risk.MaxExposurePct)
	assert.Equal(t, 48235.50, cfg.Feed.SeedPrice)
	assert.Equal(t, "none", cfg.Journal.Type)

	sc, err := cfg.Session()
	require.NoError(t, err)
	assert.Equal(t, time.Second, sc.ActiveInterval)
	assert.Equal(t, 2*time.Second, sc.IdleInterval)
	assert.Equal(t, 3*time.Second, sc.NoticeTTL)
	assert.Equal(t, time.Minute, sc.Feed.CandleInterval)
	assert.Equal(t, 100, sc.Feed.WindowSize)
	assert.Equal(t, 5, sc.RecentTrades)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		errMsg  string
		invalid bool // wraps market.ErrInvalidConfiguration
	}{
		{"valid", func(*Config) {}, "", false},
		{"bad duration", func(c *Config) { c.Ticks.Active = "fast" }, "ticks.active", false},
		{"bad candle interval", func(c *Config) { c.Feed.CandleInterval = "" }, "feed.candle_interval", false},
		{"negative balance", func(c *Config) { c.Account.Balance = -1 }, "starting balance", true},
		{"exposure above one", func(c *Config) { c.Risk.MaxExposurePct = 1.5 }, "max exposure", true},
		{"zero seed price", func(c *Config) { c.Feed.SeedPrice = 0 }, "seed price", true},
		{"unknown journal", func(c *Config) { c.Journal.Type = "kafka" }, "journal.type", false},
		{"csv without files", func(c *Config) {
			c.Journal = JournalConfig{Type: "csv"}
		}, "trades_file and equity_file", false},
		{"sqlite without path", func(c *Config) {
			c.Journal = JournalConfig{Type: "sqlite"}
		}, "db_path", false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level", false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, tt.invalid, errors.Is(err, market.ErrInvalidConfiguration))
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := Default()
			cfg.Account.Balance = 2500
			cfg.Feed.Seed = 99
			cfg.Ticks.Active = "250ms"
			cfg.Journal.Type = "sqlite"
			cfg.Journal.DBPath = "x.db"
			path := filepath.Join(tmpDir, "test"+ext)

			require.NoError(t, cfg.SaveToFile(path))
			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[account]\nbalance = 500\n\n[ticks]\nidle = \"5s\"\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.Account.Balance)
	assert.Equal(t, "5s", cfg.Ticks.Idle)
	assert.Equal(t, Default().Ticks.Active, cfg.Ticks.Active)
	assert.Equal(t, Default().Feed, cfg.Feed)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  balance: -5\n"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorIs(t, err, market.ErrInvalidConfiguration)
}

func TestLoadAppliesEnv(t *testing.T) {
	t.Setenv("PAPERTRADE_ACCOUNT_BALANCE", "2000")
	t.Setenv("PAPERTRADE_TICKS_IDLE", "3s")
	t.Setenv("PAPERTRADE_FEED_SEED", "42")
	t.Setenv("PAPERTRADE_LOG_FORMAT", "json")
	t.Setenv("PAPERTRADE_LEDGER_RECENT_TRADES", "not-a-number")

	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  balance: 500\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, cfg.Account.Balance)
	assert.Equal(t, "3s", cfg.Ticks.Idle)
	assert.Equal(t, int64(42), cfg.Feed.Seed)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Ledger.RecentTrades)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, cfg.Account.Balance)
}

func TestLoadAppliesFeedAndServerEnv(t *testing.T) {
	t.Setenv("PAPERTRADE_FEED_NOISE_PCT", "0.0002")
	t.Setenv("PAPERTRADE_FEED_MIN_VOLATILITY", "0.00005")
	t.Setenv("PAPERTRADE_FEED_PROJECTION_TREND", "-0.001")
	t.Setenv("PAPERTRADE_SERVER_CORS_ORIGINS", "http://localhost:3000, ,https://app.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.0002, cfg.Feed.NoisePct)
	assert.Equal(t, 0.00005, cfg.Feed.MinVolatility)
	assert.Equal(t, -0.001, cfg.Feed.ProjectionTrend)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example"}, cfg.Server.CORSOrigins)
}

func TestLoadEnvMakesConfigInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PAPERTRADE_RISK_MAX_EXPOSURE_PCT", "0"},
		{"PAPERTRADE_RISK_MAX_EXPOSURE_PCT", "NaN"},
		{"PAPERTRADE_FEED_NOISE_PCT", "+Inf"},
		{"PAPERTRADE_FEED_IDLE_STEP_PCT", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.ErrorIs(t, err, market.ErrInvalidConfiguration)
		})
	}
}

func TestJournalOpen(t *testing.T) {
	dir := t.TempDir()

	j, err := JournalConfig{Type: "none"}.Open()
	require.NoError(t, err)
	assert.Equal(t, journal.Discard, j)

	cases := []JournalConfig{
		{Type: "csv", TradesFile: filepath.Join(dir, "t.csv"), EquityFile: filepath.Join(dir, "e.csv")},
		{Type: "sqlite", DBPath: filepath.Join(dir, "j.db")},
		{Type: "both", TradesFile: filepath.Join(dir, "t2.csv"), EquityFile: filepath.Join(dir, "e2.csv"), DBPath: filepath.Join(dir, "j2.db")},
	}
	for _, jc := range cases {
		j, err := jc.Open()
		require.NoError(t, err, jc.Type)
		require.NoError(t, j.RecordEquity(journal.EquitySnapshot{Time: time.Now()}))
		require.NoError(t, j.Close())
	}

	_, err = JournalConfig{Type: "csv", TradesFile: filepath.Join(dir, "missing", "t.csv"), EquityFile: "e.csv"}.Open()
	assert.Error(t, err)

	_, err = JournalConfig{Type: "kafka"}.Open()
	assert.Error(t, err)
}
