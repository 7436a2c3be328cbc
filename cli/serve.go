package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/avelinec/docdex/config"
	"github.com/avelinec/docdex/mcp"
	"github.com/avelinec/docdex/metrics"
)

var (
	serveHost  string
	servePort  int
	serveStdio bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docdex MCP server",
	Long: `Start the docdex MCP server.

By default the server listens on HTTP and exposes:

  POST /mcp      JSON-RPC endpoint (single responses)
  POST /mcp/sse  JSON-RPC endpoint (SSE streamed responses)
  GET  /health   Health check
  GET  /metrics  Prometheus metrics

With --stdio the server speaks MCP over stdin/stdout instead, for
clients that spawn it as a subprocess:

  claude mcp add docdex -- docdex serve --stdio`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "Serve over stdio instead of HTTP")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if serveStdio {
		return mcp.NewStdioServer(svc, "docdex", Version).Serve()
	}

	srv := mcp.NewServer(svc, mcp.NewSessionStore(), mcp.Options{
		Name:       "docdex",
		Version:    Version,
		AuthToken:  cfg.Server.AuthToken,
		EnableCORS: cfg.Server.EnableCORS,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(metrics.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("docdex listening on %s (backend=%s provider=%s)", addr, cfg.Store.Backend, cfg.Embedder.Provider)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
