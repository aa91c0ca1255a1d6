package main

import (
	"fmt"
	"log/slog"

	"github.com/defistate/simpleswap-go/assets"
	"github.com/defistate/simpleswap-go/cmd/ammd/config"
	"github.com/defistate/simpleswap-go/protocols/tokenregistry"
	"github.com/holiman/uint256"
)

const defaultDecimals = 18

// seedTokens deploys the configured tokens and, where asked, approves the
// vault to spend the owner's full balance.
func seedTokens(logger *slog.Logger, ledger *assets.Ledger, cfg *config.NodeConfig) ([]tokenregistry.Token, error) {
	unlimited := new(uint256.Int).SetAllOne().ToBig()
	vault := cfg.VaultAddress()

	deployed := make([]tokenregistry.Token, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		mint, err := t.Mint()
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", t.Symbol, err)
		}
		token, err := ledger.Deploy(t.Name, t.Symbol, t.DecimalsOr(defaultDecimals), t.OwnerAddress(), mint)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", t.Symbol, err)
		}
		if t.ApproveVault {
			if err := ledger.Approve(token.Address, token.Owner, vault, unlimited); err != nil {
				return nil, fmt.Errorf("seed %s: approve vault: %w", t.Symbol, err)
			}
		}
		logger.Info("Seeded token",
			"symbol", token.Symbol,
			"address", token.Address,
			"owner", token.Owner,
			"total_supply", token.TotalSupply,
			"vault_approved", t.ApproveVault,
		)
		deployed = append(deployed, token)
	}
	return deployed, nil
}
