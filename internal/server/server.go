// Package server exposes a running session over HTTP: JSON endpoints for
// state, trades and orders plus a websocket that streams every tick.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/sirupsen/logrus"
)

// Config holds the HTTP server configuration.
type Config struct {
	Addr        string
	CORSOrigins []string // empty allows any origin
}

// Orders places orders against the session. *sim.Loop satisfies it.
type Orders interface {
	Submit(ctx context.Context, dir market.Direction, size float64) (sim.OrderResult, error)
}

type Server struct {
	httpServer *http.Server
	sess       *sim.Session
	orders     Orders
	log        *logrus.Entry
}

// New registers the routes and wraps them in the logging and CORS
// middleware. hub may be nil, in which case /ws is not served.
func New(cfg Config, sess *sim.Session, orders Orders, hub *Hub, log *logrus.Entry) *Server {
	s := &Server{
		sess:   sess,
		orders: orders,
		log:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/indicators", s.handleIndicators)
	mux.HandleFunc("POST /api/orders", s.handleOrder)
	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWS)
	}

	var h http.Handler = mux
	h = logging(log)(h)
	h = cors(cfg.CORSOrigins)(h)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start listens until the server fails or is shut down.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("server: starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
