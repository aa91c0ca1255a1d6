package exchange

import (
	"math/big"

	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/defistate/simpleswap-go/protocols/simpleswap/calculator"
	"github.com/ethereum/go-ethereum/common"
)

// GetPrice returns the units of tokenB per unit of tokenA, scaled by 10^18.
func (e *Exchange) GetPrice(tokenA, tokenB common.Address) (*big.Int, error) {
	pair, err := simpleswap.NewPair(tokenA, tokenB)
	if err != nil {
		return nil, err
	}

	unlock := e.lockForRead(pair)
	defer unlock()

	reserveA, reserveB := e.pools.Get(pair).Reserves(tokenA)
	return calculator.Price(reserveA, reserveB)
}

// TotalLiquidity returns the outstanding shares of the pool, 0 if it is
// unfunded or the pair is invalid.
func (e *Exchange) TotalLiquidity(tokenA, tokenB common.Address) *big.Int {
	pair, err := simpleswap.NewPair(tokenA, tokenB)
	if err != nil {
		return new(big.Int)
	}

	unlock := e.lockForRead(pair)
	defer unlock()

	return e.pools.Get(pair).TotalShares
}

// BalanceOf returns owner's shares of the (tokenA, tokenB) pool.
func (e *Exchange) BalanceOf(owner, tokenA, tokenB common.Address) *big.Int {
	pair, err := simpleswap.NewPair(tokenA, tokenB)
	if err != nil {
		return new(big.Int)
	}

	unlock := e.lockForRead(pair)
	defer unlock()

	return e.shares.BalanceOf(owner, pair)
}

// Holders returns the owners with shares of the (tokenA, tokenB) pool.
func (e *Exchange) Holders(tokenA, tokenB common.Address) ([]common.Address, error) {
	pair, err := simpleswap.NewPair(tokenA, tokenB)
	if err != nil {
		return nil, err
	}

	unlock := e.lockForRead(pair)
	defer unlock()

	return e.shares.Holders(pair), nil
}

// Pool returns a copy of the (tokenA, tokenB) pool. An unfunded pool has ID 0.
func (e *Exchange) Pool(tokenA, tokenB common.Address) (simpleswap.Pool, error) {
	pair, err := simpleswap.NewPair(tokenA, tokenB)
	if err != nil {
		return simpleswap.Pool{}, err
	}

	unlock := e.lockForRead(pair)
	defer unlock()

	return e.pools.Get(pair), nil
}

// Pools returns every pool ever funded, ordered by ID, as of the current
// checkpoint. It waits for in-flight mutations like Snapshot.
func (e *Exchange) Pools() []simpleswap.Pool {
	return e.Snapshot().Pools
}

// Snapshot is a view of every pool at a single checkpoint.
type Snapshot struct {
	Checkpoint uint64
	Pools      []simpleswap.Pool
}

// Snapshot waits for in-flight mutations and captures all pools at once.
func (e *Exchange) Snapshot() Snapshot {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	return Snapshot{
		Checkpoint: e.checkpoint.Load(),
		Pools:      e.pools.Pools(),
	}
}
