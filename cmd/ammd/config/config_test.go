package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log_level: debug
rpc_addr: ":18545"
vault: "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
tokens:
  - name: Token A
    symbol: TKA
    owner: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    initial_mint: "1000000"
    approve_vault: true
  - name: Six
    symbol: SIX
    decimals: 6
    owner: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":18545", cfg.RPCAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr, "unset fields keep their default")
	assert.Equal(t, 64, cfg.StreamBufferSize)
	assert.Equal(t, common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"), cfg.VaultAddress())

	require.Len(t, cfg.Tokens, 2)
	mint, err := cfg.Tokens[0].Mint()
	require.NoError(t, err)
	assert.Equal(t, "1000000", mint.String())
	assert.True(t, cfg.Tokens[0].ApproveVault)
	assert.Equal(t, uint8(18), cfg.Tokens[0].DecimalsOr(18))
	assert.Equal(t, uint8(6), cfg.Tokens[1].DecimalsOr(18))

	mint, err = cfg.Tokens[1].Mint()
	require.NoError(t, err)
	assert.Zero(t, mint.Sign())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig), envMap(map[string]string{
		"AMMD_LOG_LEVEL":          "warn",
		"AMMD_HTTP_ADDR":          ":18080",
		"AMMD_STREAM_BUFFER_SIZE": "8",
	}))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":18080", cfg.HTTPAddr)
	assert.Equal(t, ":18545", cfg.RPCAddr)
	assert.Equal(t, 8, cfg.StreamBufferSize)

	_, err = LoadConfig(writeConfig(t, sampleConfig), envMap(map[string]string{"AMMD_STREAM_BUFFER_SIZE": "many"}))
	assert.ErrorContains(t, err, "AMMD_STREAM_BUFFER_SIZE")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "tokens: [unterminated"), nil)
	assert.ErrorContains(t, err, "config: parse")
}

func TestValidate(t *testing.T) {
	valid := func() *NodeConfig {
		cfg := Default()
		cfg.Vault = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
		cfg.Tokens = []SeedToken{{Symbol: "TKA", Owner: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", InitialMint: "10"}}
		return cfg
	}
	require.NoError(t, valid().Validate())

	testCases := []struct {
		name   string
		mutate func(*NodeConfig)
		errMsg string
	}{
		{"log level", func(c *NodeConfig) { c.LogLevel = "loud" }, "unknown log_level"},
		{"rpc addr", func(c *NodeConfig) { c.RPCAddr = "" }, "rpc_addr cannot be empty"},
		{"http addr", func(c *NodeConfig) { c.HTTPAddr = "" }, "http_addr cannot be empty"},
		{"metrics addr", func(c *NodeConfig) { c.MetricsAddr = "" }, "metrics_addr cannot be empty"},
		{"missing vault", func(c *NodeConfig) { c.Vault = "" }, "vault"},
		{"zero vault", func(c *NodeConfig) { c.Vault = common.Address{}.Hex() }, "vault"},
		{"buffer", func(c *NodeConfig) { c.StreamBufferSize = 0 }, "stream_buffer_size"},
		{"empty symbol", func(c *NodeConfig) { c.Tokens[0].Symbol = "" }, "symbol cannot be empty"},
		{"duplicate symbol", func(c *NodeConfig) {
			c.Tokens = append(c.Tokens, SeedToken{Symbol: "tka", Owner: c.Tokens[0].Owner})
		}, "duplicate symbol"},
		{"bad owner", func(c *NodeConfig) { c.Tokens[0].Owner = "me" }, "invalid owner"},
		{"bad mint", func(c *NodeConfig) { c.Tokens[0].InitialMint = "-5" }, "invalid initial_mint"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.errMsg)
		})
	}
}
