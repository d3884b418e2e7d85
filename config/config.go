package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rustyeddy/papertrade/feed"
	"github.com/rustyeddy/papertrade/risk"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the complete papertrade configuration. Durations are strings
// parsed with time.ParseDuration ("1s", "500ms").
type Config struct {
	Account AccountConfig `json:"account" yaml:"account" toml:"account"`
	Risk    RiskConfig    `json:"risk" yaml:"risk" toml:"risk"`
	Feed    FeedConfig    `json:"feed" yaml:"feed" toml:"feed"`
	Ticks   TickConfig    `json:"ticks" yaml:"ticks" toml:"ticks"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger" toml:"ledger"`
	Journal JournalConfig `json:"journal" yaml:"journal" toml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log" toml:"log"`
	Server  ServerConfig  `json:"server" yaml:"server" toml:"server"`
}

type AccountConfig struct {
	Balance float64 `json:"balance" yaml:"balance" toml:"balance"`
}

type RiskConfig struct {
	MaxExposurePct float64 `json:"max_exposure_pct" yaml:"max_exposure_pct" toml:"max_exposure_pct"`
}

// FeedConfig mirrors feed.Config.
type FeedConfig struct {
	SeedPrice       float64 `json:"seed_price" yaml:"seed_price" toml:"seed_price"`
	Lookback        int     `json:"lookback" yaml:"lookback" toml:"lookback"`
	WindowSize      int     `json:"window_size" yaml:"window_size" toml:"window_size"`
	CandleInterval  string  `json:"candle_interval" yaml:"candle_interval" toml:"candle_interval"`
	NoisePct        float64 `json:"noise_pct" yaml:"noise_pct" toml:"noise_pct"`
	MinVolatility   float64 `json:"min_volatility" yaml:"min_volatility" toml:"min_volatility"`
	IdleStepPct     float64 `json:"idle_step_pct" yaml:"idle_step_pct" toml:"idle_step_pct"`
	ActiveStepPct   float64 `json:"active_step_pct" yaml:"active_step_pct" toml:"active_step_pct"`
	PositionBias    float64 `json:"position_bias" yaml:"position_bias" toml:"position_bias"`
	ProjectionTrend float64 `json:"projection_trend" yaml:"projection_trend" toml:"projection_trend"`
	Seed            int64   `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"` // 0 = time based
}

type TickConfig struct {
	Active string `json:"active" yaml:"active" toml:"active"`
	Idle   string `json:"idle" yaml:"idle" toml:"idle"`
}

type LedgerConfig struct {
	RecentTrades int    `json:"recent_trades" yaml:"recent_trades" toml:"recent_trades"`
	NoticeTTL    string `json:"notice_ttl" yaml:"notice_ttl" toml:"notice_ttl"`
}

// JournalConfig selects where closed trades and equity snapshots are copied.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type" toml:"type"` // "none", "csv", "sqlite" or "both"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty" toml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty" toml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty" toml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"` // "text" or "json"
}

type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr" toml:"addr"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty" toml:"cors_origins,omitempty"` // empty allows any origin
}

// Default returns a configuration with the stock simulator settings.
func Default() *Config {
	fc := feed.DefaultConfig()
	sc := sim.DefaultConfig()

	return &Config{
		Account: AccountConfig{Balance: sc.StartingBalance},
		Risk:    RiskConfig{MaxExposurePct: sc.Risk.MaxExposurePct},
		Feed: FeedConfig{
			SeedPrice:       fc.SeedPrice,
			Lookback:        fc.Lookback,
			WindowSize:      fc.WindowSize,
			CandleInterval:  fc.CandleInterval.String(),
			NoisePct:        fc.NoisePct,
			MinVolatility:   fc.MinVolatility,
			IdleStepPct:     fc.IdleStepPct,
			ActiveStepPct:   fc.ActiveStepPct,
			PositionBias:    fc.PositionBias,
			ProjectionTrend: fc.ProjectionTrend,
		},
		Ticks: TickConfig{
			Active: sc.ActiveInterval.String(),
			Idle:   sc.IdleInterval.String(),
		},
		Ledger: LedgerConfig{
			RecentTrades: sc.RecentTrades,
			NoticeTTL:    sc.NoticeTTL.String(),
		},
		Journal: JournalConfig{
			Type:       "none",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
			DBPath:     "./papertrade.sqlite",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Session builds the engine configuration, parsing every duration.
func (c *Config) Session() (sim.Config, error) {
	candle, err := parseDuration("feed.candle_interval", c.Feed.CandleInterval)
	if err != nil {
		return sim.Config{}, err
	}
	active, err := parseDuration("ticks.active", c.Ticks.Active)
	if err != nil {
		return sim.Config{}, err
	}
	idle, err := parseDuration("ticks.idle", c.Ticks.Idle)
	if err != nil {
		return sim.Config{}, err
	}
	ttl, err := parseDuration("ledger.notice_ttl", c.Ledger.NoticeTTL)
	if err != nil {
		return sim.Config{}, err
	}

	return sim.Config{
		StartingBalance: c.Account.Balance,
		Risk:            risk.Policy{MaxExposurePct: c.Risk.MaxExposurePct},
		ActiveInterval:  active,
		IdleInterval:    idle,
		RecentTrades:    c.Ledger.RecentTrades,
		NoticeTTL:       ttl,
		Feed: feed.Config{
			SeedPrice:       c.Feed.SeedPrice,
			Lookback:        c.Feed.Lookback,
			WindowSize:      c.Feed.WindowSize,
			CandleInterval:  candle,
			NoisePct:        c.Feed.NoisePct,
			MinVolatility:   c.Feed.MinVolatility,
			IdleStepPct:     c.Feed.IdleStepPct,
			ActiveStepPct:   c.Feed.ActiveStepPct,
			PositionBias:    c.Feed.PositionBias,
			ProjectionTrend: c.Feed.ProjectionTrend,
			Seed:            c.Feed.Seed,
		},
	}, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// Validate checks the whole configuration, including the engine settings.
func (c *Config) Validate() error {
	sc, err := c.Session()
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "none", "":
	case "csv", "sqlite", "both":
		if c.Journal.Type != "sqlite" && (c.Journal.TradesFile == "" || c.Journal.EquityFile == "") {
			return fmt.Errorf("journal trades_file and equity_file required for %s type", c.Journal.Type)
		}
		if c.Journal.Type != "csv" && c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for %s type", c.Journal.Type)
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv', 'sqlite' or 'both'")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// Load builds the effective configuration: defaults, then the file at path
// when one is given, then .env and PAPERTRADE_* overrides. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML, JSON or TOML file, chosen by
// extension, on top of the defaults. Environment overrides are not applied.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.decodeFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch ext(path) {
	case ".toml":
		_, err = toml.Decode(string(data), c)
	case ".json":
		err = json.Unmarshal(data, c)
	default:
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// SaveToFile writes the configuration in the format implied by the extension
// (.yaml/.yml, .toml, anything else JSON).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	switch ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	default:
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

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
