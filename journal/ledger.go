package journal

import "sync"

// DefaultRecentTrades is how many trades Recent returns when asked for n <= 0.
const DefaultRecentTrades = 5

// Ledger is the in-memory, append-only list of closed trades for a session.
type Ledger struct {
	mu     sync.RWMutex
	trades []TradeRecord
	window int
}

// NewLedger returns an empty ledger. window is the default size of Recent;
// values <= 0 use DefaultRecentTrades.
func NewLedger(window int) *Ledger {
	if window <= 0 {
		window = DefaultRecentTrades
	}
	return &Ledger{window: window}
}

// Record appends t. Existing entries are never changed.
func (l *Ledger) Record(t TradeRecord) {
	l.mu.Lock()
	l.trades = append(l.trades, t)
	l.mu.Unlock()
}

// Recent returns up to n trades, most recent first.
func (l *Ledger) Recent(n int) []TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		n = l.window
	}
	if n > len(l.trades) {
		n = len(l.trades)
	}

	out := make([]TradeRecord, 0, n)
	for i := len(l.trades) - 1; i >= len(l.trades)-n; i-- {
		out = append(out, l.trades[i])
	}
	return out
}

// All returns every trade in the order it was recorded.
func (l *Ledger) All() []TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]TradeRecord, len(l.trades))
	copy(out, l.trades)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

func (l *Ledger) Stats() Stats {
	return Summarize(l.All())
}
