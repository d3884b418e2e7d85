package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rustyeddy/papertrade/indicators"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
)

const (
	defaultTradesLimit = journal.DefaultRecentTrades
	maxTradesLimit     = 500
	maxOrderBody       = 1 << 10
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.sess.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"session_id": st.SessionID,
		"phase":      st.Phase,
		"time":       st.Time,
	})
}

// GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

type tradesResponse struct {
	Trades []journal.TradeRecord `json:"trades"`
	Stats  journal.Stats         `json:"stats"`
}

// GET /api/trades?limit=n
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := defaultTradesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxTradesLimit)
	}

	trades := s.sess.Trades(limit)
	if trades == nil {
		trades = []journal.TradeRecord{}
	}
	writeJSON(w, http.StatusOK, tradesResponse{Trades: trades, Stats: s.sess.Stats()})
}

// GET /api/report renders the session summary as Org text.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.sess.Report().WriteOrg(w); err != nil {
		s.log.WithError(err).Warn("report: render")
	}
}

// GET /api/indicators?sma=n&ema=n&atr=n
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	p := indicators.DefaultPeriods()
	q := r.URL.Query()
	for key, dst := range map[string]*int{"sma": &p.SMA, "ema": &p.EMA, "atr": &p.ATR} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, key+" must be a positive integer")
			return
		}
		*dst = n
	}

	sum, err := indicators.Compute(s.sess.Snapshot().Candles, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type orderRequest struct {
	Direction market.Direction `json:"direction"`
	Size      float64          `json:"size"`
}

// POST /api/orders
func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid order: "+err.Error())
		return
	}
	if !req.Direction.Valid() {
		writeError(w, http.StatusBadRequest, "invalid order: direction is required")
		return
	}

	res, err := s.orders.Submit(r.Context(), req.Direction, req.Size)
	if err != nil {
		s.log.WithError(err).Warn("order: submit failed")
		switch {
		case errors.Is(err, sim.ErrInvalidDirection):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, sim.ErrLoopStopped),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, orderStatus(res.Action), res)
}

func orderStatus(a sim.Action) int {
	switch a {
	case sim.ActionOpened:
		return http.StatusCreated
	case sim.ActionRejected:
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}
