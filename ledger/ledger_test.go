package ledger

import (
	"math/big"
	"sync"
	"testing"

	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPair(t *testing.T, a, b string) simpleswap.Pair {
	t.Helper()
	pair, err := simpleswap.NewPair(common.HexToAddress(a), common.HexToAddress(b))
	require.NoError(t, err)
	return pair
}

func assertPool(t *testing.T, pool simpleswap.Pool, r0, r1, shares int64) {
	t.Helper()
	assert.Equal(t, r0, pool.Reserve0.Int64(), "reserve0")
	assert.Equal(t, r1, pool.Reserve1.Int64(), "reserve1")
	assert.Equal(t, shares, pool.TotalShares.Int64(), "total shares")
}

func TestPoolLedger_Get(t *testing.T) {
	l := New()
	pair := mustPair(t, "0x01", "0x02")

	pool := l.Get(pair)
	assert.Equal(t, uint64(0), pool.ID)
	assertPool(t, pool, 0, 0, 0)
	assert.Empty(t, l.Pools(), "Get must not create pools")
}

func TestPoolLedger_Fund(t *testing.T) {
	l := New()
	pairA := mustPair(t, "0x01", "0x02")
	pairB := mustPair(t, "0x03", "0x04")

	require.NoError(t, l.Fund(pairA, big.NewInt(100), big.NewInt(200), big.NewInt(141)))
	require.NoError(t, l.Fund(pairB, big.NewInt(1), big.NewInt(1), big.NewInt(1)))
	require.NoError(t, l.Fund(pairA, big.NewInt(50), big.NewInt(100), big.NewInt(70)))

	poolA := l.Get(pairA)
	assert.Equal(t, uint64(1), poolA.ID)
	assertPool(t, poolA, 150, 300, 211)
	assert.Equal(t, uint64(2), l.Get(pairB).ID)

	t.Run("should return copies", func(t *testing.T) {
		poolA.Reserve0.SetInt64(0)
		assertPool(t, l.Get(pairA), 150, 300, 211)
	})

	t.Run("should reject negative deltas", func(t *testing.T) {
		err := l.Fund(pairA, big.NewInt(-1), big.NewInt(0), big.NewInt(0))
		assert.ErrorIs(t, err, simpleswap.ErrInvalidAmount)
	})

	t.Run("should reject overflow without partial change", func(t *testing.T) {
		err := l.Fund(pairA, big.NewInt(1), mathutil.MaxUint256, big.NewInt(1))
		assert.ErrorIs(t, err, simpleswap.ErrOverflow)
		assertPool(t, l.Get(pairA), 150, 300, 211)
	})

	t.Run("should list pools by ID", func(t *testing.T) {
		pools := l.Pools()
		require.Len(t, pools, 2)
		assert.Equal(t, uint64(1), pools[0].ID)
		assert.Equal(t, uint64(2), pools[1].ID)
	})
}

func TestPoolLedger_Drain(t *testing.T) {
	l := New()
	pair := mustPair(t, "0x01", "0x02")

	t.Run("should fail on an unfunded pool", func(t *testing.T) {
		err := l.Drain(pair, big.NewInt(1), big.NewInt(1), big.NewInt(1))
		assert.ErrorIs(t, err, simpleswap.ErrInsufficientLiquidity)
	})

	require.NoError(t, l.Fund(pair, big.NewInt(100), big.NewInt(200), big.NewInt(141)))

	t.Run("should fail without partial change when a value would go negative", func(t *testing.T) {
		err := l.Drain(pair, big.NewInt(10), big.NewInt(201), big.NewInt(10))
		assert.ErrorIs(t, err, simpleswap.ErrInsufficientLiquidity)
		assertPool(t, l.Get(pair), 100, 200, 141)
	})

	t.Run("should return to empty and keep its ID", func(t *testing.T) {
		require.NoError(t, l.Drain(pair, big.NewInt(100), big.NewInt(200), big.NewInt(141)))
		pool := l.Get(pair)
		assertPool(t, pool, 0, 0, 0)
		assert.Equal(t, uint64(1), pool.ID)

		require.NoError(t, l.Fund(pair, big.NewInt(1), big.NewInt(4), big.NewInt(2)))
		assert.Equal(t, uint64(1), l.Get(pair).ID)
	})
}

func TestPoolLedger_ApplySwap(t *testing.T) {
	l := New()
	pair := mustPair(t, "0x01", "0x02")
	require.NoError(t, l.Fund(pair, big.NewInt(1000), big.NewInt(2000), big.NewInt(1414)))

	require.NoError(t, l.ApplySwap(pair, big.NewInt(1000), big.NewInt(1000), true))
	assertPool(t, l.Get(pair), 2000, 1000, 1414)

	require.NoError(t, l.ApplySwap(pair, big.NewInt(1000), big.NewInt(1000), false))
	assertPool(t, l.Get(pair), 1000, 2000, 1414)

	err := l.ApplySwap(pair, big.NewInt(1), big.NewInt(2001), true)
	assert.ErrorIs(t, err, simpleswap.ErrInsufficientLiquidity)
	assertPool(t, l.Get(pair), 1000, 2000, 1414)
}

func TestPoolLedger_Restore(t *testing.T) {
	l := New()
	pair := mustPair(t, "0x01", "0x02")

	before := l.Get(pair)
	require.NoError(t, l.Fund(pair, big.NewInt(10), big.NewInt(10), big.NewInt(10)))
	l.Restore(before)
	assert.Empty(t, l.Pools(), "restoring an unfunded snapshot removes the pool")

	require.NoError(t, l.Fund(pair, big.NewInt(10), big.NewInt(10), big.NewInt(10)))
	funded := l.Get(pair)
	require.NoError(t, l.ApplySwap(pair, big.NewInt(5), big.NewInt(3), true))
	l.Restore(funded)
	assertPool(t, l.Get(pair), 10, 10, 10)
	assert.Equal(t, uint64(1), l.Get(pair).ID, "an undone first funding gives its ID back")
}

func TestPoolLedger_RestoreKeepsIDsContiguous(t *testing.T) {
	l := New()
	pairA := mustPair(t, "0x01", "0x02")
	pairB := mustPair(t, "0x01", "0x03")
	pairC := mustPair(t, "0x01", "0x04")
	one := big.NewInt(1)

	// A and B are first funded concurrently; A is undone after B got ID 2.
	beforeA := l.Get(pairA)
	require.NoError(t, l.Fund(pairA, one, one, one))
	require.NoError(t, l.Fund(pairB, one, one, one))
	l.Restore(beforeA)
	assert.Equal(t, uint64(2), l.Get(pairB).ID)

	require.NoError(t, l.Fund(pairC, one, one, one))
	assert.Equal(t, uint64(1), l.Get(pairC).ID, "the freed ID is reused first")

	require.NoError(t, l.Fund(pairA, one, one, one))
	assert.Equal(t, uint64(3), l.Get(pairA).ID)

	// Undoing the two newest first fundings rewinds the counter past both.
	pairD := mustPair(t, "0x01", "0x05")
	pairE := mustPair(t, "0x01", "0x06")
	beforeD, beforeE := l.Get(pairD), l.Get(pairE)
	require.NoError(t, l.Fund(pairD, one, one, one))
	require.NoError(t, l.Fund(pairE, one, one, one))
	l.Restore(beforeD)
	l.Restore(beforeE)
	require.NoError(t, l.Fund(pairE, one, one, one))
	assert.Equal(t, uint64(4), l.Get(pairE).ID)

	ids := []uint64{}
	for _, p := range l.Pools() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uint64{1, 2, 3, 4}, ids)
}

func TestPoolLedger_Concurrent(t *testing.T) {
	l := New()
	pair := mustPair(t, "0x01", "0x02")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Fund(pair, big.NewInt(1), big.NewInt(2), big.NewInt(3)))
			_ = l.Get(pair)
			_ = l.Pools()
		}()
	}
	wg.Wait()

	assertPool(t, l.Get(pair), 50, 100, 150)
}
