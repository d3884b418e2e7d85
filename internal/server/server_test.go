package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sess *sim.Session
	hub  *Hub
	srv  *Server
	ts   *httptest.Server
	hook *logtest.Hook
}

// newFixture runs a session loop and hub behind an httptest server. Ticks
// are an hour apart so only orders move the session.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	log := logrus.NewEntry(logger)

	cfg := sim.DefaultConfig()
	cfg.Feed.Seed = 11
	cfg.ActiveInterval = time.Hour
	cfg.IdleInterval = time.Hour

	sess, err := sim.NewSession(cfg, nil, log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	loop := sim.NewLoop(sess)
	hub := NewHub(sess.Snapshot, log)
	go loop.Run(ctx)
	go hub.Run(ctx)
	unsubscribe := sess.OnTick(hub.Broadcast)

	srv := New(Config{Addr: ":0"}, sess, loop, hub, log)
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		unsubscribe()
		cancel()
		<-loop.Done()
		sess.Close()
	})
	return &fixture{sess: sess, hub: hub, srv: srv, ts: ts, hook: hook}
}

func (f *fixture) postOrder(t *testing.T, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(f.ts.URL+"/api/orders", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (f *fixture) getJSON(t *testing.T, path string, v any) *http.Response {
	t.Helper()

	resp, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	var body map[string]any
	resp := f.getJSON(t, "/api/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, f.sess.ID(), body["session_id"])
	assert.Equal(t, "flat", body["phase"])
}

func TestStateInitial(t *testing.T) {
	f := newFixture(t)

	var st struct {
		Phase        string `json:"phase"`
		Balance      string `json:"balance"`
		CurrentPrice string `json:"current_price"`
		Candles      []any  `json:"candles"`
		Position     any    `json:"position"`
	}
	resp := f.getJSON(t, "/api/state", &st)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "flat", st.Phase)
	assert.Equal(t, "10000", st.Balance)
	assert.Equal(t, "48235.5", st.CurrentPrice)
	assert.Len(t, st.Candles, 100)
	assert.Nil(t, st.Position)
}

func TestOrderOpenThenClose(t *testing.T) {
	f := newFixture(t)

	resp, out := f.postOrder(t, `{"direction":"long","size":1000}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "opened", out["action"])
	pos := out["position"].(map[string]any)
	assert.Equal(t, "long", pos["direction"])
	assert.Equal(t, "1000", pos["size"])
	assert.True(t, f.sess.InPosition())

	// direction is ignored while a position is open
	resp, out = f.postOrder(t, `{"direction":"short","size":1000}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "closed", out["action"])
	assert.NotNil(t, out["trade"])
	assert.False(t, f.sess.InPosition())

	var trades tradesResponse
	resp = f.getJSON(t, "/api/trades", &trades)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, trades.Trades, 1)
	assert.Equal(t, market.Long, trades.Trades[0].Direction)
	assert.Equal(t, 1, trades.Stats.Trades)
}

func TestOrderRejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"zero size", `{"direction":"long","size":0}`, "NOT_A_NUMBER"},
		{"negative size", `{"direction":"short","size":-5}`, "NOT_A_NUMBER"},
		{"above balance", `{"direction":"long","size":20000}`, "INSUFFICIENT_BALANCE"},
		{"above exposure cap", `{"direction":"long","size":1500}`, "EXCEEDS_MAX_EXPOSURE"},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := f.postOrder(t, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Equal(t, "rejected", out["action"])
			rej := out["rejection"].(map[string]any)
			assert.Equal(t, tt.reason, rej["reason"])
			assert.NotEmpty(t, rej["message"])
		})
	}
	assert.False(t, f.sess.InPosition())
}

func TestOrderBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `long 1000`},
		{"unknown direction", `{"direction":"sideways","size":1}`},
		{"missing direction", `{"size":1}`},
		{"unknown field", `{"direction":"long","size":1,"leverage":10}`},
		{"size as string", `{"direction":"long","size":"1000"}`},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := f.postOrder(t, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, out["error"], "invalid order")
		})
	}
}

func TestOrderLoopStopped(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	log := logrus.NewEntry(logger)

	sess, err := sim.NewSession(sim.DefaultConfig(), nil, log)
	require.NoError(t, err)
	loop := sim.NewLoop(sess)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, loop.Run(ctx))

	srv := New(Config{}, sess, loop, nil, log)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(`{"direction":"long","size":100}`))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "loop")
}

func TestTradesLimit(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 8; i++ {
		resp, _ := f.postOrder(t, `{"direction":"long","size":100}`)
		require.Less(t, resp.StatusCode, 300)
	}

	var trades tradesResponse
	f.getJSON(t, "/api/trades", &trades)
	assert.Len(t, trades.Trades, 4)

	f.getJSON(t, "/api/trades?limit=2", &trades)
	assert.Len(t, trades.Trades, 2)
	assert.Equal(t, 4, trades.Stats.Trades)

	var bad map[string]string
	resp := f.getJSON(t, "/api/trades?limit=x", &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTradesEmptyIsArray(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/api/trades")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["trades"]))
}

func TestReportOrg(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/api/report")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(buf.String(), "* PAPER SESSION: "+f.sess.ID()))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/api/orders")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	log := logrus.NewEntry(logger)
	sess, err := sim.NewSession(sim.DefaultConfig(), nil, log)
	require.NoError(t, err)

	srv := New(Config{CORSOrigins: []string{"http://localhost:3000"}}, sess, nil, nil, log)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestsAreLogged(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		for _, e := range f.hook.AllEntries() {
			if e.Message == "http request" && e.Data["path"] == "/api/health" {
				return e.Data["status"] == http.StatusOK && e.Data["method"] == http.MethodGet
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestIndicators(t *testing.T) {
	f := newFixture(t)

	var sum struct {
		Periods map[string]int `json:"periods"`
		SMA     *float64       `json:"sma"`
		EMA     *float64       `json:"ema"`
		ATR     *float64       `json:"atr"`
	}
	resp := f.getJSON(t, "/api/indicators?sma=10", &sum)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, sum.Periods["sma"])
	assert.Equal(t, 14, sum.Periods["atr"])
	require.NotNil(t, sum.SMA)
	require.NotNil(t, sum.EMA)
	require.NotNil(t, sum.ATR)
	assert.Greater(t, *sum.ATR, 0.0)

	var bad map[string]string
	resp = f.getJSON(t, "/api/indicators?ema=-1", &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, bad["error"], "ema")
}
