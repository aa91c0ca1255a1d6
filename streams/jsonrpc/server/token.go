package server

import (
	"fmt"
	"math"

	"github.com/defistate/simpleswap-go/assets"
	"github.com/defistate/simpleswap-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TokenService is served under the "token" namespace. It drives the
// development asset ledger that backs the exchange.
type TokenService struct {
	assets   *assets.Ledger
	streamer *StateStreamer
}

func (api *TokenService) Deploy(args DeployArgs) (tokenregistry.Token, error) {
	decimals := assets.DefaultDecimals
	if args.Decimals != nil {
		if *args.Decimals > math.MaxUint8 {
			return tokenregistry.Token{}, fmt.Errorf("decimals %d out of range", uint64(*args.Decimals))
		}
		decimals = uint8(*args.Decimals)
	}

	token, err := api.assets.Deploy(args.Name, args.Symbol, decimals, args.Owner, toBig(args.InitialMint))
	if err != nil {
		return tokenregistry.Token{}, err
	}
	api.streamer.Notify()
	return token, nil
}

// Mint credits units whole tokens to "to" and returns the base amount minted.
func (api *TokenService) Mint(token, to common.Address, units *hexutil.Big) (*hexutil.Big, error) {
	minted, err := api.assets.Mint(token, to, toBig(units))
	if err != nil {
		return nil, err
	}
	api.streamer.Notify()
	return toHex(minted), nil
}

func (api *TokenService) Approve(token, owner, spender common.Address, amount *hexutil.Big) (bool, error) {
	if err := api.assets.Approve(token, owner, spender, toBig(amount)); err != nil {
		return false, err
	}
	return true, nil
}

func (api *TokenService) Allowance(token, owner, spender common.Address) (*hexutil.Big, error) {
	allowance, err := api.assets.Allowance(token, owner, spender)
	if err != nil {
		return nil, err
	}
	return toHex(allowance), nil
}

func (api *TokenService) BalanceOf(token, owner common.Address) (*hexutil.Big, error) {
	balance, err := api.assets.BalanceOf(token, owner)
	if err != nil {
		return nil, err
	}
	return toHex(balance), nil
}

func (api *TokenService) Tokens() []tokenregistry.Token {
	return api.assets.Tokens()
}
