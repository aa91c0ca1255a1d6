package server

import (
	"math/big"

	"github.com/defistate/simpleswap-go/exchange"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// The node does not verify signatures: From names the account an operation
// acts for.

type AddLiquidityArgs struct {
	From           common.Address `json:"from"`
	TokenA         common.Address `json:"tokenA"`
	TokenB         common.Address `json:"tokenB"`
	AmountADesired *hexutil.Big   `json:"amountADesired"`
	AmountBDesired *hexutil.Big   `json:"amountBDesired"`
	AmountAMin     *hexutil.Big   `json:"amountAMin"`
	AmountBMin     *hexutil.Big   `json:"amountBMin"`
	To             common.Address `json:"to"`
	Deadline       hexutil.Uint64 `json:"deadline"`
}

type AddLiquidityResult struct {
	AmountA *hexutil.Big `json:"amountA"`
	AmountB *hexutil.Big `json:"amountB"`
	Shares  *hexutil.Big `json:"shares"`
}

type RemoveLiquidityArgs struct {
	From       common.Address `json:"from"`
	TokenA     common.Address `json:"tokenA"`
	TokenB     common.Address `json:"tokenB"`
	Shares     *hexutil.Big   `json:"shares"`
	AmountAMin *hexutil.Big   `json:"amountAMin"`
	AmountBMin *hexutil.Big   `json:"amountBMin"`
	To         common.Address `json:"to"`
	Deadline   hexutil.Uint64 `json:"deadline"`
}

type RemoveLiquidityResult struct {
	AmountA *hexutil.Big `json:"amountA"`
	AmountB *hexutil.Big `json:"amountB"`
}

type SwapArgs struct {
	From         common.Address   `json:"from"`
	AmountIn     *hexutil.Big     `json:"amountIn"`
	AmountOutMin *hexutil.Big     `json:"amountOutMin"`
	Path         []common.Address `json:"path"`
	To           common.Address   `json:"to"`
	Deadline     hexutil.Uint64   `json:"deadline"`
}

// DeployArgs describes a new token. Decimals defaults to 18 and InitialMint
// is in whole units.
type DeployArgs struct {
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Decimals    *hexutil.Uint64 `json:"decimals,omitempty"`
	Owner       common.Address  `json:"owner"`
	InitialMint *hexutil.Big    `json:"initialMint"`
}

// Event is the JSON form of an exchange.Event.
type Event struct {
	Kind       exchange.EventKind `json:"kind"`
	Checkpoint hexutil.Uint64     `json:"checkpoint"`
	PoolID     hexutil.Uint64     `json:"poolId"`
	Token0     common.Address     `json:"token0"`
	Token1     common.Address     `json:"token1"`
	Caller     common.Address     `json:"caller"`
	To         common.Address     `json:"to"`
	TokenA     common.Address     `json:"tokenA"`
	TokenB     common.Address     `json:"tokenB"`
	AmountA    *hexutil.Big       `json:"amountA"`
	AmountB    *hexutil.Big       `json:"amountB"`
	Shares     *hexutil.Big       `json:"shares,omitempty"`
	Reserve0   *hexutil.Big       `json:"reserve0"`
	Reserve1   *hexutil.Big       `json:"reserve1"`
	Timestamp  hexutil.Uint64     `json:"timestamp"`
}

func newEvent(ev exchange.Event) Event {
	return Event{
		Kind:       ev.Kind,
		Checkpoint: hexutil.Uint64(ev.Checkpoint),
		PoolID:     hexutil.Uint64(ev.PoolID),
		Token0:     ev.Pair.Token0,
		Token1:     ev.Pair.Token1,
		Caller:     ev.Caller,
		To:         ev.To,
		TokenA:     ev.TokenA,
		TokenB:     ev.TokenB,
		AmountA:    toHex(ev.AmountA),
		AmountB:    toHex(ev.AmountB),
		Shares:     toHex(ev.Shares),
		Reserve0:   toHex(ev.Reserve0),
		Reserve1:   toHex(ev.Reserve1),
		Timestamp:  hexutil.Uint64(ev.Timestamp),
	}
}

// toBig returns nil for an omitted quantity.
func toBig(h *hexutil.Big) *big.Int {
	if h == nil {
		return nil
	}
	return h.ToInt()
}

func toHex(b *big.Int) *hexutil.Big {
	if b == nil {
		return nil
	}
	return (*hexutil.Big)(new(big.Int).Set(b))
}
