package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/defistate/simpleswap-go/cmd/client/config"
	"github.com/defistate/simpleswap-go/streams/jsonrpc/client"
	"github.com/defistate/simpleswap-go/streams/jsonrpc/stateops"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

func main() {
	// create the log handler
	rootLogHandler := slog.NewJSONHandler(os.Stdout, nil)
	close := func() {
		os.Exit(1)
	}

	rootLogger := slog.New(rootLogHandler)
	prometheusRegistry := prometheus.DefaultRegisterer
	cfg, err := loadConfig()
	if err != nil {
		rootLogger.Error("Failed to load configuration", "error", err)
		close()
	}

	// Create a context that cancels when the OS sends an interrupt (Ctrl+C) or termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateOps, err := stateops.NewStateOps(rootLogger.With("component", "stateops"), prometheusRegistry)
	if err != nil {
		rootLogger.Error("Failed to initialize State Ops", "error", err)
		close()
	}

	client, err := client.NewClient(
		ctx,
		client.Config{
			URL:              cfg.StateStreamURL,
			Logger:           rootLogger.With("component", "jsonrpc-client"),
			BufferSize:       cfg.BufferSize,
			StatePatcher:     stateOps.Patch,
			StateDecoder:     stateOps.DecodeStateJSON,
			StateDiffDecoder: stateOps.DecodeStateDiffJSON,
		},
	)
	if err != nil {
		rootLogger.Error("Failed to initialize Client", "url", cfg.StateStreamURL, "error", err)
		close()
	}

	stateLogger := rootLogger.With("component", "state")
	for {
		select {
		case state := <-client.State():
			summary, err := summarize(state)
			if err != nil {
				stateLogger.Warn("Failed to summarize state", "checkpoint", state.Checkpoint, "error", err)
				continue
			}
			stateLogger.Info("State updated", "checkpoint", summary.Checkpoint, "tokens", summary.Tokens, "pools", len(summary.Pools), "unpooled", summary.Unpooled)
			for _, p := range summary.Pools {
				stateLogger.Debug("Pool",
					"id", p.ID,
					"pair", p.Pair,
					"reserve0", p.Reserve0,
					"reserve1", p.Reserve1,
					"total_shares", p.TotalShares,
				)
			}
		case err := <-client.Err():
			rootLogger.Error("Fatal client error", "error", err)
			return
		case <-ctx.Done():
			return
		}
	}
}

func loadConfig() (*config.ClientConfig, error) {
	configPath := pflag.StringP("config", "c", "config.yaml", "Path to the configuration file.")
	pflag.Parse()
	log.Printf("Loading configuration from: %s", *configPath)
	return config.LoadConfig(*configPath)
}
