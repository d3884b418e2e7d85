package sim

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/sirupsen/logrus"
)

type orderRequest struct {
	dir   market.Direction
	size  float64
	reply chan orderReply
}

type orderReply struct {
	res OrderResult
	err error
}

// Loop drives a session from a single goroutine: timer ticks and submitted
// orders are handled one at a time in arrival order.
type Loop struct {
	s       *Session
	orders  chan orderRequest
	done    chan struct{}
	started atomic.Bool
	log     *logrus.Entry
}

func NewLoop(s *Session) *Loop {
	return &Loop{
		s:      s,
		orders: make(chan orderRequest),
		done:   make(chan struct{}),
		log:    s.logger().WithField("component", "loop"),
	}
}

// Run processes ticks and orders until ctx is cancelled. The tick timer is
// re-armed with the phase's interval after every tick and whenever an order
// moves the session between flat and in-position. Run may be called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("sim: loop already started")
	}
	defer close(l.done)

	interval := l.s.Interval()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	l.log.WithField("interval", interval).Debug("loop started")
	defer l.log.Debug("loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timer.C:
			l.s.Tick(l.s.Now())
			timer.Reset(l.s.Interval())

		case req := <-l.orders:
			before := l.s.InPosition()
			res, err := l.s.SubmitOrder(ctx, req.dir, req.size)
			req.reply <- orderReply{res: res, err: err}

			if l.s.InPosition() != before {
				next := l.s.Interval()
				timer.Reset(next)
				l.log.WithField("interval", next).Debug("tick re-armed")
			}
		}
	}
}

// Submit hands an order to the running loop and waits for its result. It
// blocks until Run is started and returns ErrLoopStopped once Run has
// returned.
func (l *Loop) Submit(ctx context.Context, dir market.Direction, size float64) (OrderResult, error) {
	req := orderRequest{dir: dir, size: size, reply: make(chan orderReply, 1)}

	select {
	case l.orders <- req:
	case <-l.done:
		return OrderResult{}, ErrLoopStopped
	case <-ctx.Done():
		return OrderResult{}, ctx.Err()
	}

	r := <-req.reply
	return r.res, r.err
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }
