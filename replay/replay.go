package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
)

// Target is the part of a session replay drives.
type Target interface {
	ApplyPrice(price decimal.Decimal, now time.Time) (sim.State, error)
	SubmitOrder(ctx context.Context, dir market.Direction, size float64) (sim.OrderResult, error)
	Snapshot() sim.State
}

// clockSetter is implemented by *sim.Session.
type clockSetter interface {
	SetClock(func() time.Time)
}

// Options controls how replay behaves.
type Options struct {
	// If true the row's price is applied before its event, so orders fill at
	// that row's price. Otherwise the event runs at the previous price.
	TickThenEvent bool
}

// Summary counts what a replay did.
type Summary struct {
	Rows     int
	Orders   int
	Opened   int
	Closed   int
	Rejected int
}

// CSV replays prices from a CSV file and applies optional scripted orders.
//
// Row format, with an optional header row starting with "time":
//
//	time,price[,event,arg1]
//
// Events (case-insensitive):
//
//	LONG / BUY:    arg1=size
//	SHORT / SELL:  arg1=size
//	CLOSE:         closes the open position (an order of the position's size)
//
// When the target has a settable clock it is driven by the row times, so
// positions and trades carry the replayed timestamps.
func CSV(ctx context.Context, csvPath string, target Target, opts Options) (Summary, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	return Reader(ctx, f, target, opts)
}

// Reader is CSV over an io.Reader.
func Reader(ctx context.Context, in io.Reader, target Target, opts Options) (Summary, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.Comment = '#'

	var (
		sum     Summary
		now     time.Time
		clocked bool
	)
	for rec := 1; ; rec++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		cols, err := r.Read()
		if err == io.EOF {
			return sum, nil
		}
		if err != nil {
			return sum, err
		}
		if len(cols) == 0 || (rec == 1 && strings.EqualFold(strings.TrimSpace(cols[0]), "time")) {
			continue
		}

		rr, err := parseRow(cols)
		if err != nil {
			return sum, fmt.Errorf("record %d: %w", rec, err)
		}

		now = rr.time
		if cs, ok := target.(clockSetter); ok && !clocked {
			cs.SetClock(func() time.Time { return now })
			clocked = true
		}

		if err := handleRow(ctx, target, rr, opts, &sum); err != nil {
			return sum, fmt.Errorf("record %d: %w", rec, err)
		}
		sum.Rows++
	}
}

type row struct {
	time  time.Time
	price decimal.Decimal
	event string
	args  []string
}

func parseRow(cols []string) (row, error) {
	if len(cols) < 2 {
		return row{}, fmt.Errorf("bad row (need at least 2 cols time,price): %v", cols)
	}

	t, err := time.Parse(time.RFC3339, strings.TrimSpace(cols[0]))
	if err != nil {
		return row{}, fmt.Errorf("bad time %q: %w", cols[0], err)
	}
	p, err := decimal.NewFromString(strings.TrimSpace(cols[1]))
	if err != nil {
		return row{}, fmt.Errorf("bad price %q: %w", cols[1], err)
	}

	rr := row{time: t, price: p}
	if len(cols) >= 3 {
		rr.event = strings.TrimSpace(cols[2])
	}
	for _, a := range cols[min(3, len(cols)):] {
		rr.args = append(rr.args, strings.TrimSpace(a))
	}
	return rr, nil
}

func handleRow(ctx context.Context, target Target, rr row, opts Options, sum *Summary) error {
	if opts.TickThenEvent {
		if _, err := target.ApplyPrice(rr.price, rr.time); err != nil {
			return err
		}
		if rr.event != "" {
			return handleEvent(ctx, target, rr.event, rr.args, sum)
		}
		return nil
	}

	if rr.event != "" {
		if err := handleEvent(ctx, target, rr.event, rr.args, sum); err != nil {
			return err
		}
	}
	_, err := target.ApplyPrice(rr.price, rr.time)
	return err
}

func handleEvent(ctx context.Context, target Target, event string, args []string, sum *Summary) error {
	var (
		dir  market.Direction
		size float64
	)

	switch ev := strings.ToUpper(event); ev {
	case "LONG", "BUY", "SHORT", "SELL":
		d, err := market.ParseDirection(ev)
		if err != nil {
			return err
		}
		if len(args) < 1 || args[0] == "" {
			return fmt.Errorf("%s: need arg1=size", ev)
		}
		// Unparsable sizes still go through validation and come back rejected.
		s, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			s = math.NaN()
		}
		dir, size = d, s

	case "CLOSE":
		p := target.Snapshot().Position
		if p == nil {
			return fmt.Errorf("CLOSE: %w", sim.ErrNoOpenPosition)
		}
		dir = p.Direction
		size, _ = p.Size.Float64()

	default:
		return fmt.Errorf("unknown event %q", event)
	}

	res, err := target.SubmitOrder(ctx, dir, size)
	if err != nil {
		return err
	}

	sum.Orders++
	switch res.Action {
	case sim.ActionOpened:
		sum.Opened++
	case sim.ActionClosed:
		sum.Closed++
	case sim.ActionRejected:
		sum.Rejected++
	}
	return nil
}
