// Package ledger holds the reserve and share-supply state of every pool,
// keyed by canonical pair. It performs checked arithmetic only; input
// validation and locking across multi-step operations belong to the caller.
package ledger

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
)

// PoolLedger is safe for concurrent use.
type PoolLedger struct {
	mu     sync.RWMutex
	pools  map[simpleswap.Pair]simpleswap.Pool
	nextID uint64
	// freeIDs holds IDs given back by Restore below nextID, lowest first.
	freeIDs []uint64
}

func New() *PoolLedger {
	return &PoolLedger{
		pools:  make(map[simpleswap.Pair]simpleswap.Pool),
		nextID: 1,
	}
}

// Get returns a copy of the pool for pair, or an empty pool with ID 0 if it
// has never been funded.
func (l *PoolLedger) Get(pair simpleswap.Pair) simpleswap.Pool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pool, ok := l.pools[pair]
	if !ok {
		return simpleswap.EmptyPool(pair)
	}
	return pool.Clone()
}

// Pools returns a copy of every pool ever funded, ordered by ID.
func (l *PoolLedger) Pools() []simpleswap.Pool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pools := make([]simpleswap.Pool, 0, len(l.pools))
	for _, pool := range l.pools {
		pools = append(pools, pool.Clone())
	}
	slices.SortFunc(pools, func(a, b simpleswap.Pool) int { return cmp.Compare(a.ID, b.ID) })
	return pools
}

// Fund adds the deltas to the pool's reserves and share supply. The pool is
// assigned an ID the first time it is funded.
func (l *PoolLedger) Fund(pair simpleswap.Pair, delta0, delta1, deltaShares *big.Int) error {
	if err := nonNegative(delta0, delta1, deltaShares); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[pair]
	if !ok {
		pool = simpleswap.EmptyPool(pair)
	}

	reserve0, err := mathutil.Add(pool.Reserve0, delta0)
	if err != nil {
		return fmt.Errorf("%w: reserve0 of %s: %v", simpleswap.ErrOverflow, pair, err)
	}
	reserve1, err := mathutil.Add(pool.Reserve1, delta1)
	if err != nil {
		return fmt.Errorf("%w: reserve1 of %s: %v", simpleswap.ErrOverflow, pair, err)
	}
	shares, err := mathutil.Add(pool.TotalShares, deltaShares)
	if err != nil {
		return fmt.Errorf("%w: shares of %s: %v", simpleswap.ErrOverflow, pair, err)
	}

	if !ok {
		pool.ID = l.allocateID()
	}
	pool.Reserve0, pool.Reserve1, pool.TotalShares = reserve0, reserve1, shares
	l.pools[pair] = pool
	return nil
}

// Drain subtracts the deltas. Nothing changes if any value would go negative.
func (l *PoolLedger) Drain(pair simpleswap.Pair, delta0, delta1, deltaShares *big.Int) error {
	if err := nonNegative(delta0, delta1, deltaShares); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[pair]
	if !ok {
		return fmt.Errorf("%w: pool %s was never funded", simpleswap.ErrInsufficientLiquidity, pair)
	}

	reserve0, err := mathutil.Sub(pool.Reserve0, delta0)
	if err != nil {
		return fmt.Errorf("%w: reserve0 of %s: %v", simpleswap.ErrInsufficientLiquidity, pair, err)
	}
	reserve1, err := mathutil.Sub(pool.Reserve1, delta1)
	if err != nil {
		return fmt.Errorf("%w: reserve1 of %s: %v", simpleswap.ErrInsufficientLiquidity, pair, err)
	}
	shares, err := mathutil.Sub(pool.TotalShares, deltaShares)
	if err != nil {
		return fmt.Errorf("%w: shares of %s: %v", simpleswap.ErrInsufficientLiquidity, pair, err)
	}

	pool.Reserve0, pool.Reserve1, pool.TotalShares = reserve0, reserve1, shares
	l.pools[pair] = pool
	return nil
}

// ApplySwap credits amountIn to the input side and debits amountOut from the
// other side. tokenInIs0 selects Token0 as the input.
func (l *PoolLedger) ApplySwap(pair simpleswap.Pair, amountIn, amountOut *big.Int, tokenInIs0 bool) error {
	if err := nonNegative(amountIn, amountOut); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[pair]
	if !ok {
		return fmt.Errorf("%w: pool %s was never funded", simpleswap.ErrInsufficientLiquidity, pair)
	}

	reserveIn, reserveOut := pool.Reserve1, pool.Reserve0
	if tokenInIs0 {
		reserveIn, reserveOut = pool.Reserve0, pool.Reserve1
	}

	newIn, err := mathutil.Add(reserveIn, amountIn)
	if err != nil {
		return fmt.Errorf("%w: input reserve of %s: %v", simpleswap.ErrOverflow, pair, err)
	}
	newOut, err := mathutil.Sub(reserveOut, amountOut)
	if err != nil {
		return fmt.Errorf("%w: output reserve of %s: %v", simpleswap.ErrInsufficientLiquidity, pair, err)
	}

	if tokenInIs0 {
		pool.Reserve0, pool.Reserve1 = newIn, newOut
	} else {
		pool.Reserve1, pool.Reserve0 = newIn, newOut
	}
	l.pools[pair] = pool
	return nil
}

// Restore puts a pool back to snapshot, a value previously returned by Get.
// A snapshot with ID 0 removes the pool again and gives its ID back for the
// next pool funded. It is used to undo a step of a failed operation.
func (l *PoolLedger) Restore(snapshot simpleswap.Pool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pair := snapshot.Pair()
	if snapshot.ID == 0 {
		if current, ok := l.pools[pair]; ok {
			delete(l.pools, pair)
			l.releaseID(current.ID)
		}
		return
	}
	l.pools[pair] = snapshot.Clone()
}

func (l *PoolLedger) allocateID() uint64 {
	if len(l.freeIDs) > 0 {
		id := l.freeIDs[0]
		l.freeIDs = l.freeIDs[1:]
		return id
	}
	id := l.nextID
	l.nextID++
	return id
}

// releaseID returns the ID of a pool whose first funding was undone, so
// IDs stay contiguous.
func (l *PoolLedger) releaseID(id uint64) {
	if id+1 == l.nextID {
		l.nextID--
		// Freed IDs at the new top collapse into nextID as well.
		for n := len(l.freeIDs); n > 0 && l.freeIDs[n-1]+1 == l.nextID; n-- {
			l.freeIDs = l.freeIDs[:n-1]
			l.nextID--
		}
		return
	}
	i, _ := slices.BinarySearch(l.freeIDs, id)
	l.freeIDs = slices.Insert(l.freeIDs, i, id)
}

func nonNegative(values ...*big.Int) error {
	for _, v := range values {
		if v != nil && v.Sign() < 0 {
			return fmt.Errorf("%w: negative delta %s", simpleswap.ErrInvalidAmount, v)
		}
	}
	return nil
}
