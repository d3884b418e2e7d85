package config

import (
	"fmt"

	"github.com/rustyeddy/papertrade/journal"
)

// Open creates the configured journal sinks. "none" returns journal.Discard.
func (c JournalConfig) Open() (journal.Journal, error) {
	switch c.Type {
	case "", "none":
		return journal.Discard, nil

	case "csv":
		j, err := journal.NewCSV(c.TradesFile, c.EquityFile)
		if err != nil {
			return nil, err
		}
		return j, nil

	case "sqlite":
		j, err := journal.NewSQLite(c.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil

	case "both":
		cj, err := journal.NewCSV(c.TradesFile, c.EquityFile)
		if err != nil {
			return nil, err
		}
		sj, err := journal.NewSQLite(c.DBPath)
		if err != nil {
			cj.Close()
			return nil, err
		}
		return journal.Multi(cj, sj), nil
	}
	return nil, fmt.Errorf("unknown journal type %q", c.Type)
}
