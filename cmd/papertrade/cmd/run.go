package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/papertrade/sim"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trade interactively from the terminal",
	Long: `Start a session and read orders from standard input while the price
feed ticks in the background.

Examples:
  papertrade run
  papertrade run --watch --report session.org
  papertrade run -c papertrade.yaml`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runReportPath string
	runWatch      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runReportPath, "report", "r", "", "write an Org-mode session report to this file on exit")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "print the price on every tick")
}

func runRun(cmd *cobra.Command, args []string) error {
	_, _, sess, err := setup()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := cmd.OutOrStdout()
	if runWatch {
		unsubscribe := sess.OnTick(func(st sim.State) {
			fmt.Fprintf(out, "\r%s  %s  equity $%s\n> ", st.Time.Local().Format("15:04:05"),
				st.CurrentPrice.StringFixed(2), st.Equity.StringFixed(2))
		})
		defer unsubscribe()
	}

	loop := sim.NewLoop(sess)
	con := &console{sess: sess, orders: loop, out: out}

	fmt.Fprintf(out, "Session %s started at %s\n", sess.ID(), sess.Snapshot().CurrentPrice.StringFixed(2))
	fmt.Fprintln(out, consoleHelp)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		return con.serve(gctx, cmd.InOrStdin())
	})
	if err := g.Wait(); err != nil {
		return err
	}

	rep := sess.Report()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Session complete!\n")
	fmt.Fprintf(out, "  Trades:  %d (%d wins, %d losses)\n", rep.Stats.Trades, rep.Stats.Wins, rep.Stats.Losses)
	fmt.Fprintf(out, "  Net P/L: %s\n", signed(rep.Stats.NetPL))
	fmt.Fprintf(out, "  Balance: $%s (%s%%)\n", rep.EndBalance.StringFixed(2), signed(rep.ReturnPct()))

	if runReportPath != "" {
		if err := writeReport(runReportPath, sess); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n✓ Report written: %s\n", runReportPath)
	}
	return nil
}

func writeReport(path string, sess *sim.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := sess.Report().WriteOrg(f); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
