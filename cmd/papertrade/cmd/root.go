package cmd

import (
	"fmt"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/internal/logger"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A paper-trading simulator over a synthetic price feed",
	Long: `Papertrade runs a single simulated trading session against a generated
price series. Positions are opened and closed with virtual money, every order
is checked against the account balance and exposure cap, and closed trades
are kept in a ledger that can be copied to CSV or SQLite.

It provides tools for:
  - Trading interactively from the terminal
  - Serving the session over HTTP with a live websocket feed
  - Replaying scripted price and order files
  - Querying the SQLite trade journal`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// loadConfig reads --config, applies environment overrides and --log-level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	return logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// openSession builds a session writing to the configured journal.
func openSession(cfg *config.Config, log *logrus.Logger) (*sim.Session, error) {
	sc, err := cfg.Session()
	if err != nil {
		return nil, err
	}

	j, err := cfg.Journal.Open()
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	s, err := sim.NewSession(sc, j, logrus.NewEntry(log))
	if err != nil {
		j.Close()
		return nil, fmt.Errorf("new session: %w", err)
	}
	return s, nil
}

// setup is the common prologue of the session commands.
func setup() (*config.Config, *logrus.Logger, *sim.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := openSession(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, s, nil
}
