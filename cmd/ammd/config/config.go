// Package config loads the ammd node configuration from YAML, with AMMD_*
// environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "AMMD_"

type NodeConfig struct {
	LogLevel string `yaml:"log_level"`

	// RPCAddr serves JSON-RPC over HTTP on / and WebSocket on /ws.
	RPCAddr     string `yaml:"rpc_addr"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	// Vault holds every pool's reserves. Depositors approve it as spender.
	Vault string `yaml:"vault"`

	StreamBufferSize int `yaml:"stream_buffer_size"`

	Tokens []SeedToken `yaml:"tokens"`
}

// SeedToken is deployed into the asset ledger at startup.
type SeedToken struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals *uint8 `yaml:"decimals,omitempty"`
	Owner    string `yaml:"owner"`
	// InitialMint is in whole units, as a base-10 string.
	InitialMint string `yaml:"initial_mint"`
	// ApproveVault grants the vault an unlimited allowance from Owner.
	ApproveVault bool `yaml:"approve_vault"`
}

func Default() *NodeConfig {
	return &NodeConfig{
		LogLevel:         "info",
		RPCAddr:          ":8545",
		HTTPAddr:         ":8080",
		MetricsAddr:      ":9090",
		StreamBufferSize: 64,
	}
}

// LoadConfig reads the file at path over the defaults, then applies
// environment overrides found through lookup (os.LookupEnv in production).
func LoadConfig(path string, lookup func(string) (string, bool)) (*NodeConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *NodeConfig) applyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	strs := map[string]*string{
		"LOG_LEVEL":    &c.LogLevel,
		"RPC_ADDR":     &c.RPCAddr,
		"HTTP_ADDR":    &c.HTTPAddr,
		"METRICS_ADDR": &c.MetricsAddr,
		"VAULT":        &c.Vault,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPrefix + "STREAM_BUFFER_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sSTREAM_BUFFER_SIZE: %w", EnvPrefix, err)
		}
		c.StreamBufferSize = n
	}
	return nil
}

func (c *NodeConfig) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if c.RPCAddr == "" {
		return errors.New("config: rpc_addr cannot be empty")
	}
	if c.HTTPAddr == "" {
		return errors.New("config: http_addr cannot be empty")
	}
	if c.MetricsAddr == "" {
		return errors.New("config: metrics_addr cannot be empty")
	}
	if !common.IsHexAddress(c.Vault) || common.HexToAddress(c.Vault) == (common.Address{}) {
		return fmt.Errorf("config: vault %q is not a non-zero address", c.Vault)
	}
	if c.StreamBufferSize < 1 {
		return errors.New("config: stream_buffer_size must be greater than 0")
	}

	symbols := make(map[string]bool, len(c.Tokens))
	for i, t := range c.Tokens {
		if t.Symbol == "" {
			return fmt.Errorf("config: tokens[%d]: symbol cannot be empty", i)
		}
		if symbols[strings.ToUpper(t.Symbol)] {
			return fmt.Errorf("config: tokens[%d]: duplicate symbol %s", i, t.Symbol)
		}
		symbols[strings.ToUpper(t.Symbol)] = true
		if !common.IsHexAddress(t.Owner) {
			return fmt.Errorf("config: tokens[%d]: invalid owner %q", i, t.Owner)
		}
		if _, err := t.Mint(); err != nil {
			return fmt.Errorf("config: tokens[%d]: %w", i, err)
		}
	}
	return nil
}

// VaultAddress returns the parsed vault address.
func (c *NodeConfig) VaultAddress() common.Address {
	return common.HexToAddress(c.Vault)
}

// Mint parses InitialMint. An empty value mints nothing.
func (t SeedToken) Mint() (*big.Int, error) {
	if t.InitialMint == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(t.InitialMint, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid initial_mint %q", t.InitialMint)
	}
	return n, nil
}

// DecimalsOr returns the configured decimals, or def when unset.
func (t SeedToken) DecimalsOr(def uint8) uint8 {
	if t.Decimals == nil {
		return def
	}
	return *t.Decimals
}

func (t SeedToken) OwnerAddress() common.Address {
	return common.HexToAddress(t.Owner)
}
