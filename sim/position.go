package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/pkg/id"
	"github.com/shopspring/decimal"
)

type Position struct {
	ID         string           `json:"id"`
	Direction  market.Direction `json:"direction"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	Size       decimal.Decimal  `json:"size"`
	OpenedAt   time.Time        `json:"opened_at"`
}

func (p Position) UnrealizedPL(current decimal.Decimal) decimal.Decimal {
	return PL(p.Direction, p.EntryPrice, current, p.Size)
}

// PositionManager holds at most one open position. It does no locking; the
// session serializes access.
type PositionManager struct {
	pos *Position
}

func NewPositionManager() *PositionManager {
	return &PositionManager{}
}

func (m *PositionManager) Open(dir market.Direction, entry, size decimal.Decimal, at time.Time) (Position, error) {
	if m.pos != nil {
		return Position{}, fmt.Errorf("open %s: %w (%s)", dir, ErrPositionAlreadyOpen, m.pos.ID)
	}
	if !dir.Valid() {
		return Position{}, fmt.Errorf("open: %w: %d", ErrInvalidDirection, dir)
	}
	if !size.IsPositive() {
		return Position{}, fmt.Errorf("open %s: %w: %s", dir, ErrInvalidSize, size)
	}
	if !entry.IsPositive() {
		return Position{}, fmt.Errorf("open %s: %w: %s", dir, ErrInvalidPrice, entry)
	}

	m.pos = &Position{
		ID:         id.NewAt(at),
		Direction:  dir,
		EntryPrice: entry,
		Size:       size,
		OpenedAt:   at,
	}
	return *m.pos, nil
}

// Close converts the open position into a Trade at exit and clears the slot.
func (m *PositionManager) Close(exit decimal.Decimal, at time.Time, reason string) (Trade, error) {
	if m.pos == nil {
		return Trade{}, fmt.Errorf("close: %w", ErrNoOpenPosition)
	}
	if !exit.IsPositive() {
		return Trade{}, fmt.Errorf("close %s: %w: %s", m.pos.ID, ErrInvalidPrice, exit)
	}
	if reason == "" {
		reason = ReasonManualClose
	}

	p := *m.pos
	m.pos = nil

	return Trade{
		ID:         p.ID,
		Direction:  p.Direction,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exit,
		Size:       p.Size,
		RealizedPL: p.UnrealizedPL(exit),
		OpenedAt:   p.OpenedAt,
		ClosedAt:   at,
		Reason:     reason,
	}, nil
}

func (m *PositionManager) Current() (Position, bool) {
	if m.pos == nil {
		return Position{}, false
	}
	return *m.pos, true
}

// UnrealizedPL marks the open position to current, or returns zero when flat.
func (m *PositionManager) UnrealizedPL(current decimal.Decimal) decimal.Decimal {
	if m.pos == nil {
		return decimal.Zero
	}
	return m.pos.UnrealizedPL(current)
}
