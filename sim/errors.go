package sim

import "errors"

var (
	ErrPositionAlreadyOpen = errors.New("position already open")
	ErrNoOpenPosition      = errors.New("no open position")
	ErrInvalidSize         = errors.New("invalid position size")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrLoopStopped         = errors.New("event loop stopped")
)
