package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rustyeddy/papertrade/indicators"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/risk"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
)

type submitter interface {
	Submit(ctx context.Context, dir market.Direction, size float64) (sim.OrderResult, error)
}

// console is the line-oriented front end of the run command.
type console struct {
	sess   *sim.Session
	orders submitter
	out    io.Writer
}

const consoleHelp = `Commands:
  long <size>    open a long position (alias: buy)
  short <size>   open a short position (alias: sell)
  close          close the open position
  status         show price, balance and position
  trades [n]     show the most recent closed trades
  help           show this help
  quit           end the session (alias: exit)`

// serve reads commands from in until quit, EOF or ctx is done.
func (c *console) serve(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprint(c.out, "> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			more, err := c.exec(ctx, line)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			fmt.Fprint(c.out, "> ")
		}
	}
}

// exec runs one command line. It reports false once the session should end.
func (c *console) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return true, nil
	}

	switch fields[0] {
	case "long", "buy", "short", "sell":
		dir, _ := market.ParseDirection(fields[0])
		if len(fields) < 2 {
			fmt.Fprintf(c.out, "usage: %s <size>\n", fields[0])
			return true, nil
		}
		return true, c.order(ctx, dir, parseSize(fields[1]))

	case "close":
		st := c.sess.Snapshot()
		if st.Position == nil {
			fmt.Fprintln(c.out, "No open position")
			return true, nil
		}
		return true, c.order(ctx, st.Position.Direction, st.Position.Size.InexactFloat64())

	case "status", "s":
		printState(c.out, c.sess.Snapshot())

	case "trades", "t":
		n := journal.DefaultRecentTrades
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		printTrades(c.out, c.sess.Trades(n))

	case "help", "h", "?":
		fmt.Fprintln(c.out, consoleHelp)

	case "quit", "exit", "q":
		return false, nil

	default:
		fmt.Fprintf(c.out, "unknown command %q (try help)\n", fields[0])
	}
	return true, nil
}

func (c *console) order(ctx context.Context, dir market.Direction, size float64) error {
	res, err := c.orders.Submit(ctx, dir, size)
	if err != nil {
		return err
	}
	printResult(c.out, res)
	return nil
}

// parseSize turns unparsable input into NaN so the order is rejected with
// the usual message.
func parseSize(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func printResult(w io.Writer, res sim.OrderResult) {
	switch res.Action {
	case sim.ActionOpened:
		p := res.Position
		fmt.Fprintf(w, "✓ Opened %s %s @ %s\n",
			strings.ToUpper(p.Direction.String()), p.Size.StringFixed(2), p.EntryPrice.StringFixed(2))
	case sim.ActionClosed:
		t := res.Trade
		fmt.Fprintf(w, "✓ Closed %s %s @ %s  P/L: %s  Balance: $%s\n",
			strings.ToUpper(t.Direction.String()), t.Size.StringFixed(2), t.ExitPrice.StringFixed(2),
			signed(t.RealizedPL), res.State.Balance.StringFixed(2))
	case sim.ActionRejected:
		fmt.Fprintf(w, "✗ Rejected: %s\n", res.Rejection.Msg)
	}
}

func printState(w io.Writer, st sim.State) {
	fmt.Fprintf(w, "Price:   %s\n", st.CurrentPrice.StringFixed(2))
	fmt.Fprintf(w, "Balance: $%s\n", st.Balance.StringFixed(2))
	fmt.Fprintf(w, "Equity:  $%s\n", st.Equity.StringFixed(2))
	if st.Position == nil {
		fmt.Fprintln(w, "Position: none")
	} else {
		p := st.Position
		fmt.Fprintf(w, "Position: %s %s @ %s  Unrealized: %s\n",
			strings.ToUpper(p.Direction.String()), p.Size.StringFixed(2), p.EntryPrice.StringFixed(2),
			signed(st.UnrealizedPL))
		fmt.Fprintf(w, "Exposure: %s%% of balance\n",
			risk.ExposurePct(p.Size, st.Balance).Mul(decimal.NewFromInt(100)).StringFixed(2))
	}
	if st.Notice != nil {
		fmt.Fprintf(w, "Notice:  %s\n", st.Notice.Message)
	}
	if sum, err := indicators.Compute(st.Candles, indicators.DefaultPeriods()); err == nil {
		fmt.Fprintf(w, "Trend:   SMA(%d) %s  EMA(%d) %s  ATR(%d) %s\n",
			sum.Periods.SMA, optional(sum.SMA), sum.Periods.EMA, optional(sum.EMA), sum.Periods.ATR, optional(sum.ATR))
	}
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func printTrades(w io.Writer, trades []journal.TradeRecord) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "No closed trades")
		return
	}
	fmt.Fprintf(w, "%-8s %-6s %10s %12s %12s %10s\n", "CLOSED", "SIDE", "SIZE", "ENTRY", "EXIT", "P/L")
	for _, t := range trades {
		fmt.Fprintf(w, "%-8s %-6s %10s %12s %12s %10s\n",
			t.CloseTime.Local().Format("15:04:05"),
			strings.ToUpper(t.Direction.String()),
			t.Size.StringFixed(2),
			t.EntryPrice.StringFixed(2),
			t.ExitPrice.StringFixed(2),
			signed(t.RealizedPL))
	}
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
