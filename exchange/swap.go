package exchange

import (
	"fmt"
	"math/big"
	"time"

	"github.com/defistate/simpleswap-go/assets"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/defistate/simpleswap-go/protocols/simpleswap/calculator"
	"github.com/ethereum/go-ethereum/common"
)

// SwapExactTokensForTokens sells exactly p.AmountIn of p.Path[0] for as much
// p.Path[1] as the pool gives, which must be at least p.AmountOutMin.
func (e *Exchange) SwapExactTokensForTokens(caller common.Address, p SwapParams) (amountOut *big.Int, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("swapExactTokensForTokens", start, err) }()

	amountOut, ev, err := e.swap(caller, p)
	if err != nil {
		e.logger.Debug("swap rejected", "caller", caller, "path", p.Path, "error", err)
		return nil, err
	}
	e.emit(ev)
	return amountOut, nil
}

func (e *Exchange) swap(caller common.Address, p SwapParams) (*big.Int, *Event, error) {
	now, err := e.checkDeadline(p.Deadline)
	if err != nil {
		return nil, nil, err
	}
	if len(p.Path) != 2 {
		return nil, nil, fmt.Errorf("%w: path has %d entries", simpleswap.ErrInvalidPath, len(p.Path))
	}
	tokenIn, tokenOut := p.Path[0], p.Path[1]
	pair, err := simpleswap.NewPair(tokenIn, tokenOut)
	if err != nil {
		return nil, nil, err
	}
	if err := checkRecipient(p.To); err != nil {
		return nil, nil, err
	}
	if err := e.checkAccounts(caller, p.To); err != nil {
		return nil, nil, err
	}
	amountIn, err := amount("amountIn", p.AmountIn)
	if err != nil {
		return nil, nil, err
	}
	amountOutMin, err := amount("amountOutMin", p.AmountOutMin)
	if err != nil {
		return nil, nil, err
	}

	unlock := e.lockForWrite(pair)
	defer unlock()

	pool := e.pools.Get(pair)
	if !pool.HasLiquidity() {
		return nil, nil, fmt.Errorf("%w: pool %s is not funded", simpleswap.ErrInsufficientLiquidity, pair)
	}
	reserveIn, reserveOut := pool.Reserves(tokenIn)

	amountOut, err := calculator.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, nil, err
	}
	if amountOut.Cmp(amountOutMin) < 0 {
		return nil, nil, fmt.Errorf("%w: got %s, want at least %s", simpleswap.ErrInsufficientOutputAmount, amountOut, amountOutMin)
	}

	err = e.assets.Transact(e.vault, func(tx assets.Tx) error {
		if err := tx.TransferFrom(tokenIn, caller, e.vault, amountIn); err != nil {
			return transferFailed(err)
		}
		if err := e.pools.ApplySwap(pair, amountIn, amountOut, pair.IsToken0(tokenIn)); err != nil {
			return err
		}
		if err := tx.Transfer(tokenOut, p.To, amountOut); err != nil {
			e.pools.Restore(pool)
			return transferFailed(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	checkpoint := e.commit()
	after := e.pools.Get(pair)
	e.logger.Debug("swapped",
		"pair", pair.String(),
		"caller", caller,
		"to", p.To,
		"tokenIn", tokenIn,
		"amountIn", amountIn,
		"amountOut", amountOut,
		"checkpoint", checkpoint,
	)

	ev := &Event{
		Kind:       Swapped,
		Checkpoint: checkpoint,
		PoolID:     after.ID,
		Pair:       pair,
		Caller:     caller,
		To:         p.To,
		TokenA:     tokenIn,
		TokenB:     tokenOut,
		AmountA:    new(big.Int).Set(amountIn),
		AmountB:    new(big.Int).Set(amountOut),
		Reserve0:   after.Reserve0,
		Reserve1:   after.Reserve1,
		Timestamp:  uint64(now.Unix()),
	}
	return amountOut, ev, nil
}

// GetAmountOut is the zero-fee constant-product output for amountIn against
// the given reserves. It reads no pool state.
func (e *Exchange) GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	return calculator.GetAmountOut(amountIn, reserveIn, reserveOut)
}

// QuoteSwap returns what selling amountIn of tokenIn for tokenOut would
// yield against the current reserves.
func (e *Exchange) QuoteSwap(amountIn *big.Int, tokenIn, tokenOut common.Address) (*big.Int, error) {
	pair, err := simpleswap.NewPair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}

	unlock := e.lockForRead(pair)
	defer unlock()

	pool := e.pools.Get(pair)
	if !pool.HasLiquidity() {
		return nil, fmt.Errorf("%w: pool %s is not funded", simpleswap.ErrInsufficientLiquidity, pair)
	}
	amountOut, _, err := calculator.SimulateSwap(amountIn, tokenIn, tokenOut, pool)
	return amountOut, err
}
