package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/papertrade/internal/logger"
	"github.com/rustyeddy/papertrade/internal/server"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over HTTP and websocket",
	Long: `Run a session in the background and expose it over HTTP.

Endpoints:
  GET  /api/health
  GET  /api/state
  GET  /api/trades?limit=n
  GET  /api/report
  GET  /api/indicators?sma=n&ema=n&atr=n
  POST /api/orders   {"direction":"long","size":1000}
  GET  /ws           state pushed on every tick

Examples:
  papertrade serve
  papertrade serve --addr :9090 --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr         string
	serveShutdownWait time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
	serveCmd.Flags().DurationVar(&serveShutdownWait, "shutdown-timeout", 5*time.Second, "grace period for in-flight requests")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, sess, err := setup()
	if err != nil {
		return err
	}
	defer sess.Close()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := sim.NewLoop(sess)
	hub := server.NewHub(sess.Snapshot, logger.Component(log, "ws"))
	unsubscribe := sess.OnTick(hub.Broadcast)
	defer unsubscribe()

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, sess, loop, hub, logger.Component(log, "http"))

	fmt.Printf("✓ Session %s serving on %s\n", sess.ID(), cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	st := sess.Snapshot()
	fmt.Printf("\nSession stopped. Balance: $%s  Trades: %d\n", st.Balance.StringFixed(2), sess.Stats().Trades)
	return nil
}
