package main

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/defistate/simpleswap-go/assets"
	"github.com/defistate/simpleswap-go/cmd/ammd/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedTokens(t *testing.T) {
	six := uint8(6)
	owner := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	cfg := config.Default()
	cfg.Vault = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	cfg.Tokens = []config.SeedToken{
		{Name: "Token A", Symbol: "TKA", Owner: owner.Hex(), InitialMint: "1000", ApproveVault: true},
		{Name: "Six", Symbol: "SIX", Decimals: &six, Owner: owner.Hex(), InitialMint: "5"},
	}
	require.NoError(t, cfg.Validate())

	var logs bytes.Buffer
	ledger := assets.New()
	tokens, err := seedTokens(newLogger(&logs, "info"), ledger, cfg)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	wantA, _ := new(big.Int).SetString("1000000000000000000000", 10)
	balA, err := ledger.BalanceOf(tokens[0].Address, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, wantA.Cmp(balA))

	balSix, err := ledger.BalanceOf(tokens[1].Address, owner)
	require.NoError(t, err)
	assert.Equal(t, "5000000", balSix.String())

	allowA, err := ledger.Allowance(tokens[0].Address, owner, cfg.VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, 256, allowA.BitLen(), "approved vault gets an unlimited allowance")

	allowSix, err := ledger.Allowance(tokens[1].Address, owner, cfg.VaultAddress())
	require.NoError(t, err)
	assert.Zero(t, allowSix.Sign())

	assert.Contains(t, logs.String(), `"symbol":"TKA"`)
}

func TestParseLevel(t *testing.T) {
	var logs bytes.Buffer
	logger := newLogger(&logs, "warn")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, logs.String(), "hidden")
	assert.Contains(t, logs.String(), "shown")
}

func TestRootCmd_PrintsConfig(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	require.NoError(t, writeFile(path, "vault: \"0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0\"\n"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "rpc_addr:")
	assert.Contains(t, out.String(), ":8545")
	assert.Contains(t, out.String(), "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
}
