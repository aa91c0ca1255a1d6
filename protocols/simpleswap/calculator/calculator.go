// Package calculator holds the pure constant-product formulas of a zero-fee
// pool. Every function validates its inputs, checks every intermediate
// against the 256-bit range and rounds in the pool's favour.
package calculator

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
)

// PriceScale is the fixed-point scale of GetPrice (10^18).
var PriceScale = mathutil.Pow10(18)

// wrapMath converts a mathutil failure into the matching pool error.
func wrapMath(err error) error {
	switch {
	case errors.Is(err, mathutil.ErrNegative):
		return fmt.Errorf("%w: %v", simpleswap.ErrInvalidAmount, err)
	case errors.Is(err, mathutil.ErrDivisionByZero):
		return fmt.Errorf("%w: %v", simpleswap.ErrInsufficientLiquidity, err)
	default:
		return fmt.Errorf("%w: %v", simpleswap.ErrOverflow, err)
	}
}

func isZero(x *big.Int) bool {
	return x == nil || x.Sign() == 0
}

// GetAmountOut returns floor(amountIn*reserveOut/(reserveIn+amountIn)).
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if isZero(amountIn) {
		return nil, simpleswap.ErrInsufficientInputAmount
	}
	if amountIn.Sign() < 0 {
		return nil, simpleswap.ErrInvalidAmount
	}
	if isZero(reserveIn) || isZero(reserveOut) {
		return nil, simpleswap.ErrInsufficientLiquidity
	}

	numerator, err := mathutil.Mul(amountIn, reserveOut)
	if err != nil {
		return nil, wrapMath(err)
	}
	denominator, err := mathutil.Add(reserveIn, amountIn)
	if err != nil {
		return nil, wrapMath(err)
	}
	amountOut, err := mathutil.Div(numerator, denominator)
	if err != nil {
		return nil, wrapMath(err)
	}
	return amountOut, nil
}

// Quote returns the amount of B worth amountA at the current ratio, floor(amountA*reserveB/reserveA).
func Quote(amountA, reserveA, reserveB *big.Int) (*big.Int, error) {
	if isZero(reserveA) || isZero(reserveB) {
		return nil, simpleswap.ErrInsufficientLiquidity
	}
	amountB, err := mathutil.MulDiv(amountA, reserveB, reserveA)
	if err != nil {
		return nil, wrapMath(err)
	}
	return amountB, nil
}

// OptimalAmounts picks the largest deposit not above the desired caps that
// keeps the pool ratio. An unfunded pool takes the desired amounts as-is.
func OptimalAmounts(desiredA, desiredB, reserveA, reserveB *big.Int) (amountA, amountB *big.Int, err error) {
	if isZero(reserveA) && isZero(reserveB) {
		return desiredA, desiredB, nil
	}

	bOptimal, err := Quote(desiredA, reserveA, reserveB)
	if err != nil {
		return nil, nil, err
	}
	if bOptimal.Cmp(desiredB) <= 0 {
		return desiredA, bOptimal, nil
	}

	aOptimal, err := Quote(desiredB, reserveB, reserveA)
	if err != nil {
		return nil, nil, err
	}
	return aOptimal, desiredB, nil
}

// SharesToMint returns the shares issued for depositing (amountA, amountB).
// The first deposit mints the geometric mean; later deposits mint the smaller
// of the two proportional issuances. Zero shares is an error.
func SharesToMint(amountA, amountB, reserveA, reserveB, totalShares *big.Int) (*big.Int, error) {
	var shares *big.Int
	if isZero(totalShares) {
		product, err := mathutil.Mul(amountA, amountB)
		if err != nil {
			return nil, wrapMath(err)
		}
		shares = mathutil.Sqrt(product)
	} else {
		if isZero(reserveA) || isZero(reserveB) {
			return nil, simpleswap.ErrInsufficientLiquidity
		}
		sharesA, err := mathutil.MulDiv(amountA, totalShares, reserveA)
		if err != nil {
			return nil, wrapMath(err)
		}
		sharesB, err := mathutil.MulDiv(amountB, totalShares, reserveB)
		if err != nil {
			return nil, wrapMath(err)
		}
		shares = mathutil.Min(sharesA, sharesB)
	}

	if shares.Sign() == 0 {
		return nil, simpleswap.ErrInsufficientLiquidityMinted
	}
	return shares, nil
}

// Redeem returns the proportional amounts paid for burning shares, rounded down.
func Redeem(shares, reserveA, reserveB, totalShares *big.Int) (amountA, amountB *big.Int, err error) {
	if isZero(totalShares) {
		return nil, nil, simpleswap.ErrInsufficientLiquidity
	}
	if shares != nil && shares.Cmp(totalShares) > 0 {
		return nil, nil, fmt.Errorf("%w: redeeming %s of %s shares", simpleswap.ErrInsufficientLiquidity, shares, totalShares)
	}
	amountA, err = mathutil.MulDiv(shares, reserveA, totalShares)
	if err != nil {
		return nil, nil, wrapMath(err)
	}
	amountB, err = mathutil.MulDiv(shares, reserveB, totalShares)
	if err != nil {
		return nil, nil, wrapMath(err)
	}
	return amountA, amountB, nil
}

// Price returns reserveB*PriceScale/reserveA, units of B per unit of A.
func Price(reserveA, reserveB *big.Int) (*big.Int, error) {
	if isZero(reserveA) || isZero(reserveB) {
		return nil, simpleswap.ErrNoLiquidity
	}
	price, err := mathutil.MulDiv(reserveB, PriceScale, reserveA)
	if err != nil {
		return nil, wrapMath(err)
	}
	return price, nil
}

// GetReserves returns the reserves of pool oriented for a tokenIn -> tokenOut swap.
func GetReserves(tokenIn, tokenOut common.Address, pool simpleswap.Pool) (reserveIn, reserveOut *big.Int, err error) {
	if tokenIn == pool.Token0 && tokenOut == pool.Token1 {
		return pool.Reserve0, pool.Reserve1, nil
	} else if tokenIn == pool.Token1 && tokenOut == pool.Token0 {
		return pool.Reserve1, pool.Reserve0, nil
	}
	return nil, nil, fmt.Errorf("%w: pool %d does not contain the pair %s -> %s", simpleswap.ErrInvalidPath, pool.ID, tokenIn.Hex(), tokenOut.Hex())
}

// SimulateSwap returns the output of swapping amountIn of tokenIn and the
// pool as it would look afterwards. pool is not modified.
func SimulateSwap(amountIn *big.Int, tokenIn, tokenOut common.Address, pool simpleswap.Pool) (*big.Int, simpleswap.Pool, error) {
	reserveIn, reserveOut, err := GetReserves(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, simpleswap.Pool{}, err
	}
	amountOut, err := GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, simpleswap.Pool{}, err
	}

	newReserveIn, err := mathutil.Add(reserveIn, amountIn)
	if err != nil {
		return nil, simpleswap.Pool{}, wrapMath(err)
	}
	newReserveOut := new(big.Int).Sub(reserveOut, amountOut)

	next := pool.Clone()
	if tokenIn == pool.Token0 {
		next.Reserve0, next.Reserve1 = newReserveIn, newReserveOut
	} else {
		next.Reserve1, next.Reserve0 = newReserveIn, newReserveOut
	}
	return amountOut, next, nil
}
