package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAPERTRADE_"

// ApplyEnv loads .env from the working directory when present and applies
// PAPERTRADE_* overrides. Unset, empty or unparsable variables leave the
// field alone.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	setFloat64(&c.Account.Balance, "ACCOUNT_BALANCE")
	setFloat64(&c.Risk.MaxExposurePct, "RISK_MAX_EXPOSURE_PCT")

	setFloat64(&c.Feed.SeedPrice, "FEED_SEED_PRICE")
	setInt(&c.Feed.Lookback, "FEED_LOOKBACK")
	setInt(&c.Feed.WindowSize, "FEED_WINDOW_SIZE")
	setStr(&c.Feed.CandleInterval, "FEED_CANDLE_INTERVAL")
	setFloat64(&c.Feed.NoisePct, "FEED_NOISE_PCT")
	setFloat64(&c.Feed.MinVolatility, "FEED_MIN_VOLATILITY")
	setFloat64(&c.Feed.IdleStepPct, "FEED_IDLE_STEP_PCT")
	setFloat64(&c.Feed.ActiveStepPct, "FEED_ACTIVE_STEP_PCT")
	setFloat64(&c.Feed.PositionBias, "FEED_POSITION_BIAS")
	setFloat64(&c.Feed.ProjectionTrend, "FEED_PROJECTION_TREND")
	setInt64(&c.Feed.Seed, "FEED_SEED")

	setStr(&c.Ticks.Active, "TICKS_ACTIVE")
	setStr(&c.Ticks.Idle, "TICKS_IDLE")

	setInt(&c.Ledger.RecentTrades, "LEDGER_RECENT_TRADES")
	setStr(&c.Ledger.NoticeTTL, "LEDGER_NOTICE_TTL")

	setStr(&c.Journal.Type, "JOURNAL_TYPE")
	setStr(&c.Journal.TradesFile, "JOURNAL_TRADES_FILE")
	setStr(&c.Journal.EquityFile, "JOURNAL_EQUITY_FILE")
	setStr(&c.Journal.DBPath, "JOURNAL_DB_PATH")

	setStr(&c.Log.Level, "LOG_LEVEL")
	setStr(&c.Log.Format, "LOG_FORMAT")

	setStr(&c.Server.Addr, "SERVER_ADDR")
	setStrings(&c.Server.CORSOrigins, "SERVER_CORS_ORIGINS")
}

// setStrings splits a comma separated list, dropping blank entries.
func setStrings(dst *[]string, key string) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func setStr(dst *string, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
