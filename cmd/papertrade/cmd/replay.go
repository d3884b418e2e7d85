package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/papertrade/replay"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <csv>",
	Short: "Replay a scripted price and order file",
	Long: `Replay rows of time,price[,event,arg1] through a session. Events are
LONG <size>, SHORT <size> and CLOSE. Results go to the configured journal.

Examples:
  papertrade replay data/session.csv
  papertrade replay data/session.csv --event-first --report replay.org`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayEventFirst bool
	replayReportPath string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayEventFirst, "event-first", false, "fill each row's order before applying its price")
	replayCmd.Flags().StringVarP(&replayReportPath, "report", "r", "", "write an Org-mode session report to this file")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, _, sess, err := setup()
	if err != nil {
		return err
	}
	defer sess.Close()

	fmt.Printf("Replaying from: %s\n", args[0])
	sum, err := replay.CSV(context.Background(), args[0], sess, replay.Options{TickThenEvent: !replayEventFirst})
	if err != nil {
		return fmt.Errorf("replay error: %w", err)
	}

	st := sess.Snapshot()
	stats := sess.Stats()
	fmt.Printf("\nReplay complete!\n")
	fmt.Printf("  Rows:     %d\n", sum.Rows)
	fmt.Printf("  Orders:   %d (%d opened, %d closed, %d rejected)\n", sum.Orders, sum.Opened, sum.Closed, sum.Rejected)
	fmt.Printf("  Balance:  $%s\n", st.Balance.StringFixed(2))
	fmt.Printf("  Equity:   $%s\n", st.Equity.StringFixed(2))
	fmt.Printf("  Net P/L:  %s\n", signed(stats.NetPL))
	if st.Position != nil {
		fmt.Printf("  Open:     %s %s @ %s\n", st.Position.Direction, st.Position.Size.StringFixed(2), st.Position.EntryPrice.StringFixed(2))
	}

	switch cfg.Journal.Type {
	case "csv":
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n", cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		fmt.Printf("\nResults saved to: %s\n", cfg.Journal.DBPath)
	case "both":
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n  - %s\n", cfg.Journal.TradesFile, cfg.Journal.EquityFile, cfg.Journal.DBPath)
	}

	if replayReportPath != "" {
		if err := writeReport(replayReportPath, sess); err != nil {
			return err
		}
		fmt.Printf("✓ Report written: %s\n", replayReportPath)
	}
	return nil
}
