package main

import (
	"fmt"
	"os"

	"github.com/defistate/simpleswap-go/cmd/ammd/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ammd",
		Short: "SimpleSwap constant-product exchange node",
		Long: `ammd runs an in-memory constant-product exchange. It serves the amm and
token JSON-RPC namespaces over HTTP and WebSocket, a read-only REST API and
Prometheus metrics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; real environment variables win.
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath, os.LookupEnv)
			if err != nil {
				return err
			}
			return runNode(cmd.Context(), cfg)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath, os.LookupEnv)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	return rootCmd
}
