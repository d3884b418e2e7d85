package sim

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rustyeddy/papertrade/feed"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/pkg/id"
	"github.com/rustyeddy/papertrade/risk"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Session is one paper-trading account: a balance, at most one position, a
// synthetic price feed and the ledger of closed trades. All methods are safe
// for concurrent use.
type Session struct {
	mu sync.Mutex

	id        string
	cfg       Config
	feed      *feed.Generator
	positions *PositionManager
	ledger    *journal.Ledger
	journal   journal.Journal
	log       *logrus.Entry
	now       func() time.Time

	startBalance decimal.Decimal
	balance      decimal.Decimal
	price        decimal.Decimal
	updated      time.Time
	notice       *Notice
	rejected     map[risk.Reason]int

	listeners map[int]func(State)
	nextSub   int
}

// NewSession validates cfg, seeds the candle window and returns a flat
// session. A nil journal discards records; a nil logger uses the logrus
// standard logger.
func NewSession(cfg Config, j journal.Journal, log *logrus.Entry) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, err := feed.New(cfg.Feed)
	if err != nil {
		return nil, err
	}

	if j == nil {
		j = journal.Discard
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	bal := decimal.NewFromFloat(cfg.StartingBalance)
	s := &Session{
		cfg:          cfg,
		feed:         g,
		positions:    NewPositionManager(),
		ledger:       journal.NewLedger(cfg.RecentTrades),
		journal:      j,
		now:          time.Now,
		startBalance: bal,
		balance:      bal,
		rejected:     make(map[risk.Reason]int),
		listeners:    make(map[int]func(State)),
	}
	s.reset()
	s.log = log.WithFields(logrus.Fields{"component": "session", "session_id": s.id})

	return s, nil
}

// reset regenerates the history window at the clock's current time.
func (s *Session) reset() {
	now := s.now()
	s.id = id.NewAt(now)
	s.feed.Initialize(now)
	s.price = s.feed.Last()
	s.updated = now
}

// SetClock replaces the wall clock. While the session has no position and no
// trades the candle window is regenerated so it ends at the new clock's now.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
	if _, open := s.positions.Current(); !open && s.ledger.Len() == 0 {
		s.reset()
		s.log = s.log.WithField("session_id", s.id)
	}
}

// logger returns the session's log entry. SetClock replaces it when the
// session id changes.
func (s *Session) logger() *logrus.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) Config() Config { return s.cfg }

// Now reads the session clock.
func (s *Session) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// SubmitOrder validates size against the balance. When flat a valid order
// opens a position at the current price; when a position is open a valid
// order closes it and dir is not used. Rejections are reported in the result,
// not as errors.
func (s *Session) SubmitOrder(ctx context.Context, dir market.Direction, size float64) (OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return OrderResult{}, err
	}
	if !dir.Valid() {
		return OrderResult{}, fmt.Errorf("submit order: %w: %d", ErrInvalidDirection, dir)
	}

	s.mu.Lock()
	now := s.now()

	var res OrderResult
	decision := risk.Evaluate(s.cfg.Risk, size, s.balance)
	switch {
	case !decision.Allowed:
		s.notice = &Notice{
			Reason:  decision.Rejection.Reason,
			Message: decision.Rejection.Msg,
			Expires: now.Add(s.cfg.NoticeTTL),
		}
		s.rejected[decision.Rejection.Reason]++
		res = OrderResult{Action: ActionRejected, Rejection: decision.Rejection}
		s.log.WithFields(logrus.Fields{
			"direction": dir,
			"size":      size,
			"reason":    decision.Rejection.Reason,
		}).Info("order rejected")

	default:
		if _, open := s.positions.Current(); open {
			t, err := s.closeLocked(now, ReasonManualClose)
			if err != nil {
				s.mu.Unlock()
				return OrderResult{}, err
			}
			res = OrderResult{Action: ActionClosed, Trade: &t}
		} else {
			p, err := s.positions.Open(dir, s.price, decision.Size, now)
			if err != nil {
				s.mu.Unlock()
				return OrderResult{}, err
			}
			s.log.WithFields(logrus.Fields{
				"position_id": p.ID,
				"direction":   p.Direction,
				"size":        p.Size.String(),
				"entry":       p.EntryPrice.String(),
			}).Info("position opened")
			res = OrderResult{Action: ActionOpened, Position: &p}
		}
	}

	res.State = s.snapshotLocked(now)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, res.State)
	return res, nil
}

// closeLocked closes the open position at the current price, credits the
// balance and records the trade.
func (s *Session) closeLocked(now time.Time, reason string) (Trade, error) {
	t, err := s.positions.Close(s.price, now, reason)
	if err != nil {
		return Trade{}, err
	}

	s.balance = s.balance.Add(t.RealizedPL)
	rec := t.Record()
	s.ledger.Record(rec)
	if err := s.journal.RecordTrade(rec); err != nil {
		s.log.WithError(err).WithField("trade_id", t.ID).Warn("journal: record trade")
	}
	s.recordEquityLocked(now)

	s.log.WithFields(logrus.Fields{
		"trade_id":    t.ID,
		"direction":   t.Direction,
		"entry":       t.EntryPrice.String(),
		"exit":        t.ExitPrice.String(),
		"realized_pl": t.RealizedPL.StringFixed(2),
		"balance":     s.balance.StringFixed(2),
	}).Info("position closed")
	return t, nil
}

// Tick advances the synthetic price by one step and folds it into the
// candle window.
func (s *Session) Tick(now time.Time) State {
	s.mu.Lock()
	pos, open := s.positions.Current()
	next := s.feed.Tick(s.price, open, pos.Direction)
	s.applyLocked(next, now)

	st := s.snapshotLocked(now)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, st)
	return st
}

// ApplyPrice moves the session to an externally supplied price. It is the
// replay counterpart of Tick.
func (s *Session) ApplyPrice(price decimal.Decimal, now time.Time) (State, error) {
	if !price.IsPositive() {
		return State{}, fmt.Errorf("apply price: %w: %s", ErrInvalidPrice, price)
	}

	s.mu.Lock()
	s.applyLocked(market.FloorPrice(market.RoundPrice(price)), now)
	st := s.snapshotLocked(now)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, st)
	return st, nil
}

func (s *Session) applyLocked(price decimal.Decimal, now time.Time) {
	s.price = price
	s.updated = now
	s.feed.AppendOrUpdate(price, now)
	s.recordEquityLocked(now)
}

func (s *Session) recordEquityLocked(now time.Time) {
	u := s.positions.UnrealizedPL(s.price)
	err := s.journal.RecordEquity(journal.EquitySnapshot{
		Time:       now,
		Price:      s.price,
		Balance:    s.balance,
		Unrealized: u,
		Equity:     s.balance.Add(u),
	})
	if err != nil {
		s.log.WithError(err).Warn("journal: record equity")
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.now())
}

func (s *Session) snapshotLocked(now time.Time) State {
	st := State{
		SessionID:    s.id,
		Phase:        PhaseFlat,
		Balance:      s.balance,
		CurrentPrice: s.price,
		Candles:      s.feed.Candles(),
		RecentTrades: s.ledger.Recent(s.cfg.RecentTrades),
		Time:         now,
	}

	if p, open := s.positions.Current(); open {
		st.Phase = PhaseInPosition
		st.Position = &p
		st.UnrealizedPL = p.UnrealizedPL(s.price)
	}
	st.Equity = st.Balance.Add(st.UnrealizedPL)

	if s.notice != nil {
		if now.Before(s.notice.Expires) {
			n := *s.notice
			st.Notice = &n
		} else {
			s.notice = nil
		}
	}
	return st
}

// OnTick registers fn to receive every new state. fn runs on the goroutine
// that changed the state, after the session lock is released. The returned
// func unregisters it.
func (s *Session) OnTick(fn func(State)) (cancel func()) {
	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.listeners[key] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, key)
			s.mu.Unlock()
		})
	}
}

func (s *Session) listenersLocked() []func(State) {
	if len(s.listeners) == 0 {
		return nil
	}
	keys := make([]int, 0, len(s.listeners))
	for k := range s.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]func(State), len(keys))
	for i, k := range keys {
		out[i] = s.listeners[k]
	}
	return out
}

func notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st)
	}
}

// Interval is the tick cadence for the current phase.
func (s *Session) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.positions.Current(); open {
		return s.cfg.ActiveInterval
	}
	return s.cfg.IdleInterval
}

func (s *Session) InPosition() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, open := s.positions.Current()
	return open
}

// Trades returns up to n closed trades, most recent first. n <= 0 returns
// all of them.
func (s *Session) Trades(n int) []journal.TradeRecord {
	if n <= 0 {
		all := s.ledger.All()
		slices.Reverse(all)
		return all
	}
	return s.ledger.Recent(n)
}

func (s *Session) Stats() journal.Stats {
	return s.ledger.Stats()
}

// Report summarizes the session so far.
func (s *Session) Report() journal.SessionReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	trades := s.ledger.All()
	started, _ := id.Time(s.id)
	return journal.SessionReport{
		SessionID:    s.id,
		Started:      started,
		Ended:        s.now(),
		StartBalance: s.startBalance,
		EndBalance:   s.balance,
		Stats:        journal.Summarize(trades),
		Trades:       trades,
		Notes:        s.rejectionNotes(),
	}
}

// rejectionNotes summarises rejected orders per reason, sorted by reason.
// Caller holds s.mu.
func (s *Session) rejectionNotes() []string {
	reasons := make([]risk.Reason, 0, len(s.rejected))
	for r := range s.rejected {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)

	var notes []string
	for _, r := range reasons {
		n := s.rejected[r]
		noun := "orders"
		if n == 1 {
			noun = "order"
		}
		notes = append(notes, fmt.Sprintf("%d %s rejected: %s", n, noun, r))
	}
	return notes
}

// Close releases the journal. The session must not be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Close()
}
