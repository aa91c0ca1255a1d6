package simpleswap

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPair(t *testing.T) {
	low := common.HexToAddress("0x1000000000000000000000000000000000000001")
	high := common.HexToAddress("0x2000000000000000000000000000000000000002")

	t.Run("should canonicalise both argument orders to the same pair", func(t *testing.T) {
		ab, err := NewPair(low, high)
		require.NoError(t, err)
		ba, err := NewPair(high, low)
		require.NoError(t, err)

		assert.Equal(t, ab, ba)
		assert.Equal(t, low, ab.Token0)
		assert.Equal(t, high, ab.Token1)
		assert.True(t, ab.IsToken0(low))
		assert.True(t, ab.Contains(high))
		assert.False(t, ab.Contains(common.HexToAddress("0x03")))
	})

	t.Run("should reject identical assets", func(t *testing.T) {
		_, err := NewPair(low, low)
		assert.ErrorIs(t, err, ErrIdenticalAddresses)
	})

	t.Run("should report identical before zero", func(t *testing.T) {
		_, err := NewPair(common.Address{}, common.Address{})
		assert.ErrorIs(t, err, ErrIdenticalAddresses)
	})

	t.Run("should reject the zero address on either side", func(t *testing.T) {
		_, err := NewPair(common.Address{}, high)
		assert.ErrorIs(t, err, ErrZeroAddress)
		_, err = NewPair(low, common.Address{})
		assert.ErrorIs(t, err, ErrZeroAddress)
	})
}

func TestPoolReserves(t *testing.T) {
	pair, err := NewPair(common.HexToAddress("0x02"), common.HexToAddress("0x01"))
	require.NoError(t, err)

	pool := EmptyPool(pair)
	assert.True(t, pool.IsEmpty())
	assert.False(t, pool.HasLiquidity())

	pool.Reserve0 = big.NewInt(10)
	pool.Reserve1 = big.NewInt(20)

	rA, rB := pool.Reserves(common.HexToAddress("0x02"))
	assert.Equal(t, int64(20), rA.Int64())
	assert.Equal(t, int64(10), rB.Int64())
	assert.Equal(t, pair, pool.Pair())
}

func TestErrors(t *testing.T) {
	t.Run("should render the tag with the contract prefix", func(t *testing.T) {
		assert.Equal(t, "SimpleSwap: EXPIRED", ErrExpired.Error())
	})

	t.Run("should extract the tag through wrapping", func(t *testing.T) {
		err := fmt.Errorf("%w: deadline 10 before 20", ErrExpired)
		assert.Equal(t, "EXPIRED", TagOf(err))
		assert.True(t, errors.Is(err, ErrExpired))

		tagged, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, ErrExpired.ErrorCode(), tagged.ErrorCode())
		assert.Equal(t, "EXPIRED", tagged.ErrorData())
	})

	t.Run("should return an empty tag for untagged errors", func(t *testing.T) {
		assert.Equal(t, "", TagOf(errors.New("plain")))
		assert.Equal(t, "", TagOf(nil))
	})

	t.Run("should keep tags and codes unique", func(t *testing.T) {
		tags := map[string]bool{}
		codes := map[int]bool{}
		for _, e := range Errors {
			assert.False(t, tags[e.Tag], "duplicate tag %s", e.Tag)
			assert.False(t, codes[e.ErrorCode()], "duplicate code for %s", e.Tag)
			tags[e.Tag] = true
			codes[e.ErrorCode()] = true
		}
		assert.Len(t, tags, 15)
	})
}
