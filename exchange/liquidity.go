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

// AddLiquidity deposits a ratio-preserving amount of both assets from caller
// and mints pool shares to p.To. The first deposit of a pool sets its ratio
// and mints the geometric mean of the two amounts.
func (e *Exchange) AddLiquidity(caller common.Address, p AddLiquidityParams) (res AddLiquidityResult, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("addLiquidity", start, err) }()

	res, ev, err := e.addLiquidity(caller, p)
	if err != nil {
		e.logger.Debug("add liquidity rejected", "caller", caller, "tokenA", p.TokenA, "tokenB", p.TokenB, "error", err)
		return AddLiquidityResult{}, err
	}
	e.emit(ev)
	return res, nil
}

func (e *Exchange) addLiquidity(caller common.Address, p AddLiquidityParams) (AddLiquidityResult, *Event, error) {
	now, err := e.checkDeadline(p.Deadline)
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}
	pair, err := simpleswap.NewPair(p.TokenA, p.TokenB)
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}
	if err := checkRecipient(p.To); err != nil {
		return AddLiquidityResult{}, nil, err
	}
	if err := e.checkAccounts(caller, p.To); err != nil {
		return AddLiquidityResult{}, nil, err
	}
	desiredA, err := amount("amountADesired", p.AmountADesired)
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}
	desiredB, err := amount("amountBDesired", p.AmountBDesired)
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}
	minA, err := amount("amountAMin", p.AmountAMin)
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}
	minB, err := amount("amountBMin", p.AmountBMin)
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}

	unlock := e.lockForWrite(pair)
	defer unlock()

	pool := e.pools.Get(pair)
	reserveA, reserveB := pool.Reserves(p.TokenA)

	var amountA, amountB *big.Int
	if pool.IsEmpty() {
		amountA, amountB = desiredA, desiredB
	} else {
		amountA, amountB, err = calculator.OptimalAmounts(desiredA, desiredB, reserveA, reserveB)
		if err != nil {
			return AddLiquidityResult{}, nil, err
		}
		if amountA.Cmp(minA) < 0 || amountB.Cmp(minB) < 0 {
			return AddLiquidityResult{}, nil, fmt.Errorf("%w: got (%s, %s), want at least (%s, %s)",
				simpleswap.ErrInsufficientAOrB, amountA, amountB, minA, minB)
		}
	}

	shares, err := calculator.SharesToMint(amountA, amountB, reserveA, reserveB, pool.TotalShares)
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}
	amount0, amount1 := orient(pair, p.TokenA, amountA, amountB)

	err = e.assets.Transact(e.vault, func(tx assets.Tx) error {
		if err := tx.TransferFrom(p.TokenA, caller, e.vault, amountA); err != nil {
			return transferFailed(err)
		}
		if err := tx.TransferFrom(p.TokenB, caller, e.vault, amountB); err != nil {
			return transferFailed(err)
		}

		var undo journal
		if err := e.pools.Fund(pair, amount0, amount1, shares); err != nil {
			return err
		}
		undo.add(func() { e.pools.Restore(pool) })

		if err := e.shares.Mint(p.To, pair, shares); err != nil {
			undo.revert()
			return err
		}
		return nil
	})
	if err != nil {
		return AddLiquidityResult{}, nil, err
	}

	checkpoint := e.commit()
	after := e.pools.Get(pair)
	e.logger.Debug("liquidity added",
		"pair", pair.String(),
		"caller", caller,
		"to", p.To,
		"amountA", amountA,
		"amountB", amountB,
		"shares", shares,
		"checkpoint", checkpoint,
	)

	res := AddLiquidityResult{AmountA: amountA, AmountB: amountB, Shares: shares}
	ev := &Event{
		Kind:       LiquidityAdded,
		Checkpoint: checkpoint,
		PoolID:     after.ID,
		Pair:       pair,
		Caller:     caller,
		To:         p.To,
		TokenA:     p.TokenA,
		TokenB:     p.TokenB,
		AmountA:    new(big.Int).Set(amountA),
		AmountB:    new(big.Int).Set(amountB),
		Shares:     new(big.Int).Set(shares),
		Reserve0:   after.Reserve0,
		Reserve1:   after.Reserve1,
		Timestamp:  uint64(now.Unix()),
	}
	return res, ev, nil
}

// RemoveLiquidity burns p.Shares of caller and pays the proportional part of
// both reserves, rounded down, to p.To.
func (e *Exchange) RemoveLiquidity(caller common.Address, p RemoveLiquidityParams) (res RemoveLiquidityResult, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("removeLiquidity", start, err) }()

	res, ev, err := e.removeLiquidity(caller, p)
	if err != nil {
		e.logger.Debug("remove liquidity rejected", "caller", caller, "tokenA", p.TokenA, "tokenB", p.TokenB, "error", err)
		return RemoveLiquidityResult{}, err
	}
	e.emit(ev)
	return res, nil
}

func (e *Exchange) removeLiquidity(caller common.Address, p RemoveLiquidityParams) (RemoveLiquidityResult, *Event, error) {
	now, err := e.checkDeadline(p.Deadline)
	if err != nil {
		return RemoveLiquidityResult{}, nil, err
	}
	pair, err := simpleswap.NewPair(p.TokenA, p.TokenB)
	if err != nil {
		return RemoveLiquidityResult{}, nil, err
	}
	if err := checkRecipient(p.To); err != nil {
		return RemoveLiquidityResult{}, nil, err
	}
	if err := e.checkAccounts(caller, p.To); err != nil {
		return RemoveLiquidityResult{}, nil, err
	}
	shares, err := amount("shares", p.Shares)
	if err != nil {
		return RemoveLiquidityResult{}, nil, err
	}
	minA, err := amount("amountAMin", p.AmountAMin)
	if err != nil {
		return RemoveLiquidityResult{}, nil, err
	}
	minB, err := amount("amountBMin", p.AmountBMin)
	if err != nil {
		return RemoveLiquidityResult{}, nil, err
	}

	unlock := e.lockForWrite(pair)
	defer unlock()

	if balance := e.shares.BalanceOf(caller, pair); balance.Cmp(shares) < 0 {
		return RemoveLiquidityResult{}, nil, fmt.Errorf("%w: %s holds %s shares, redeeming %s",
			simpleswap.ErrNotEnoughUserLiquidity, caller.Hex(), balance, shares)
	}

	pool := e.pools.Get(pair)
	if pool.IsEmpty() {
		return RemoveLiquidityResult{}, nil, fmt.Errorf("%w: pool %s has no shares outstanding", simpleswap.ErrInsufficientLiquidity, pair)
	}
	if shares.Sign() == 0 {
		return RemoveLiquidityResult{}, nil, fmt.Errorf("%w: nothing to redeem", simpleswap.ErrInsufficientLiquidity)
	}

	reserveA, reserveB := pool.Reserves(p.TokenA)
	amountA, amountB, err := calculator.Redeem(shares, reserveA, reserveB, pool.TotalShares)
	if err != nil {
		return RemoveLiquidityResult{}, nil, err
	}
	if amountA.Cmp(minA) < 0 || amountB.Cmp(minB) < 0 {
		return RemoveLiquidityResult{}, nil, fmt.Errorf("%w: got (%s, %s), want at least (%s, %s)",
			simpleswap.ErrInsufficientOutputAmount, amountA, amountB, minA, minB)
	}
	amount0, amount1 := orient(pair, p.TokenA, amountA, amountB)

	err = e.assets.Transact(e.vault, func(tx assets.Tx) error {
		var undo journal
		if err := e.shares.Burn(caller, pair, shares); err != nil {
			return err
		}
		undo.add(func() { _ = e.shares.Mint(caller, pair, shares) })

		if err := e.pools.Drain(pair, amount0, amount1, shares); err != nil {
			undo.revert()
			return err
		}
		undo.add(func() { e.pools.Restore(pool) })

		if err := tx.Transfer(p.TokenA, p.To, amountA); err != nil {
			undo.revert()
			return transferFailed(err)
		}
		if err := tx.Transfer(p.TokenB, p.To, amountB); err != nil {
			undo.revert()
			return transferFailed(err)
		}
		return nil
	})
	if err != nil {
		return RemoveLiquidityResult{}, nil, err
	}

	checkpoint := e.commit()
	after := e.pools.Get(pair)
	e.logger.Debug("liquidity removed",
		"pair", pair.String(),
		"caller", caller,
		"to", p.To,
		"amountA", amountA,
		"amountB", amountB,
		"shares", shares,
		"checkpoint", checkpoint,
	)

	res := RemoveLiquidityResult{AmountA: amountA, AmountB: amountB}
	ev := &Event{
		Kind:       LiquidityRemoved,
		Checkpoint: checkpoint,
		PoolID:     after.ID,
		Pair:       pair,
		Caller:     caller,
		To:         p.To,
		TokenA:     p.TokenA,
		TokenB:     p.TokenB,
		AmountA:    new(big.Int).Set(amountA),
		AmountB:    new(big.Int).Set(amountB),
		Shares:     new(big.Int).Set(shares),
		Reserve0:   after.Reserve0,
		Reserve1:   after.Reserve1,
		Timestamp:  uint64(now.Unix()),
	}
	return res, ev, nil
}
