package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/defistate/simpleswap-go/assets"
	"github.com/defistate/simpleswap-go/cmd/ammd/config"
	"github.com/defistate/simpleswap-go/exchange"
	"github.com/defistate/simpleswap-go/httpapi"
	"github.com/defistate/simpleswap-go/streams/jsonrpc/server"
	"github.com/defistate/simpleswap-go/streams/jsonrpc/stateops"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func runNode(parent context.Context, cfg *config.NodeConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootLogger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(rootLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ledger := assets.New()
	if _, err := seedTokens(rootLogger.With("component", "seed"), ledger, cfg); err != nil {
		return err
	}

	ex, err := exchange.New(&exchange.Config{
		Logger:   rootLogger.With("component", "exchange"),
		Registry: registry,
		Assets:   ledger,
		Vault:    cfg.VaultAddress(),
	})
	if err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}
	defer ex.Close()

	ops, err := stateops.NewStateOps(rootLogger.With("component", "stateops"), registry)
	if err != nil {
		return fmt.Errorf("failed to create state ops: %w", err)
	}

	rpcServer, err := server.New(&server.Config{
		Logger:     rootLogger.With("component", "jsonrpc-server"),
		Exchange:   ex,
		Assets:     ledger,
		StateOps:   ops,
		BufferSize: cfg.StreamBufferSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create rpc server: %w", err)
	}
	defer rpcServer.Stop()

	rpcMux := http.NewServeMux()
	rpcMux.Handle("/ws", rpcServer.RPC().WebsocketHandler([]string{"*"}))
	rpcMux.Handle("/", rpcServer.RPC())

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	httpServers := []*http.Server{
		{Addr: cfg.RPCAddr, Handler: rpcMux, ReadHeaderTimeout: 5 * time.Second},
		{Addr: cfg.MetricsAddr, Handler: metricsMux, ReadHeaderTimeout: 5 * time.Second},
	}
	app := httpapi.NewApp(rootLogger.With("component", "httpapi"), ex)

	errCh := make(chan error, len(httpServers)+2)
	go func() {
		errCh <- rpcServer.Run(ctx)
	}()
	for _, srv := range httpServers {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
		}()
	}
	go func() {
		if err := app.Listen(cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			errCh <- fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
		}
	}()

	rootLogger.Info("Node started",
		"rpc_addr", cfg.RPCAddr,
		"http_addr", cfg.HTTPAddr,
		"metrics_addr", cfg.MetricsAddr,
		"vault", ex.Vault(),
	)

	var runErr error
	select {
	case <-ctx.Done():
		rootLogger.Info("Shutting down")
	case runErr = <-errCh:
		rootLogger.Error("Node stopped", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range httpServers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rootLogger.Warn("HTTP server shutdown failed", "addr", srv.Addr, "error", err)
		}
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		rootLogger.Warn("REST API shutdown failed", "error", err)
	}
	return runErr
}
