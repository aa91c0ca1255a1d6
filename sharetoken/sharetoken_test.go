package sharetoken

import (
	"math/big"
	"sync"
	"testing"

	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func mustPair(t *testing.T, a, b string) simpleswap.Pair {
	t.Helper()
	pair, err := simpleswap.NewPair(common.HexToAddress(a), common.HexToAddress(b))
	require.NoError(t, err)
	return pair
}

func TestToken_MintAndBurn(t *testing.T) {
	s := New()
	pair := mustPair(t, "0x01", "0x02")

	require.NoError(t, s.Mint(alice, pair, big.NewInt(100)))
	require.NoError(t, s.Mint(bob, pair, big.NewInt(50)))

	assert.Equal(t, int64(100), s.BalanceOf(alice, pair).Int64())
	assert.Equal(t, int64(150), s.TotalSupply(pair).Int64())
	assert.Equal(t, []common.Address{bob, alice}, s.Holders(pair))

	t.Run("should reject burning more than the balance", func(t *testing.T) {
		err := s.Burn(bob, pair, big.NewInt(51))
		assert.ErrorIs(t, err, simpleswap.ErrNotEnoughUserLiquidity)
		assert.Equal(t, int64(50), s.BalanceOf(bob, pair).Int64())
		assert.Equal(t, int64(150), s.TotalSupply(pair).Int64())
	})

	t.Run("should drop holders that burn everything", func(t *testing.T) {
		require.NoError(t, s.Burn(bob, pair, big.NewInt(50)))
		assert.Equal(t, []common.Address{alice}, s.Holders(pair))
		assert.Equal(t, int64(100), s.TotalSupply(pair).Int64())
	})

	t.Run("should return copies", func(t *testing.T) {
		s.BalanceOf(alice, pair).SetInt64(0)
		assert.Equal(t, int64(100), s.BalanceOf(alice, pair).Int64())
	})
}

func TestToken_KeysByPair(t *testing.T) {
	s := New()
	pairA := mustPair(t, "0x01", "0x02")
	pairB := mustPair(t, "0x01", "0x03")

	require.NoError(t, s.Mint(alice, pairA, big.NewInt(10)))

	assert.Equal(t, int64(0), s.BalanceOf(alice, pairB).Int64())
	assert.Equal(t, int64(0), s.TotalSupply(pairB).Int64())
	assert.Empty(t, s.Holders(pairB))

	err := s.Burn(alice, pairB, big.NewInt(1))
	assert.ErrorIs(t, err, simpleswap.ErrNotEnoughUserLiquidity)
}

func TestToken_Validation(t *testing.T) {
	s := New()
	pair := mustPair(t, "0x01", "0x02")

	assert.ErrorIs(t, s.Mint(common.Address{}, pair, big.NewInt(1)), simpleswap.ErrZeroAddress)
	assert.ErrorIs(t, s.Mint(alice, pair, big.NewInt(-1)), simpleswap.ErrInvalidAmount)
	assert.ErrorIs(t, s.Burn(alice, pair, nil), simpleswap.ErrInvalidAmount)
	assert.NoError(t, s.Burn(alice, pair, big.NewInt(0)))
}

func TestToken_Concurrent(t *testing.T) {
	s := New()
	pair := mustPair(t, "0x01", "0x02")

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		owner := common.BigToAddress(big.NewInt(int64(i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Mint(owner, pair, big.NewInt(10)))
			assert.NoError(t, s.Burn(owner, pair, big.NewInt(4)))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(120), s.TotalSupply(pair).Int64())
	sum := new(big.Int)
	for _, holder := range s.Holders(pair) {
		sum.Add(sum, s.BalanceOf(holder, pair))
	}
	assert.Equal(t, 0, sum.Cmp(s.TotalSupply(pair)))
}
