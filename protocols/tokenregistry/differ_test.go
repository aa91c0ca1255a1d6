package tokenregistry

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffer(t *testing.T) {
	token1Old := newTestToken(1, "TKA", 1000)
	token2Old := newTestToken(2, "TKB", 2000)
	token3Old := newTestToken(3, "TKC", 3000)

	t.Run("should identify additions correctly", func(t *testing.T) {
		diff := Differ([]Token{token1Old}, []Token{token1Old, token2Old})

		require.Len(t, diff.Additions, 1)
		assert.Equal(t, token2Old.ID, diff.Additions[0].ID)
		assert.Empty(t, diff.Updates)
		assert.Empty(t, diff.Deletions)
	})

	t.Run("should identify deletions correctly", func(t *testing.T) {
		diff := Differ([]Token{token1Old, token2Old}, []Token{token1Old})

		assert.Empty(t, diff.Additions)
		assert.Empty(t, diff.Updates)
		assert.Equal(t, []uint64{token2Old.ID}, diff.Deletions)
	})

	t.Run("should identify updates when the supply changes", func(t *testing.T) {
		minted := newTestToken(1, "TKA", 1500)

		diff := Differ([]Token{token1Old}, []Token{minted})

		require.Len(t, diff.Updates, 1)
		assert.Equal(t, int64(1500), diff.Updates[0].TotalSupply.Int64())
	})

	t.Run("should handle a mix of additions, updates, and deletions", func(t *testing.T) {
		token1Updated := newTestToken(1, "TKA", 1001)
		token4New := newTestToken(4, "TKD", 4000)

		diff := Differ([]Token{token1Old, token2Old, token3Old}, []Token{token1Updated, token2Old, token4New})

		require.Len(t, diff.Additions, 1)
		assert.Equal(t, token4New.ID, diff.Additions[0].ID)
		require.Len(t, diff.Updates, 1)
		assert.Equal(t, token1Updated.ID, diff.Updates[0].ID)
		assert.Equal(t, []uint64{3}, diff.Deletions)
	})

	t.Run("should produce an empty diff when there are no changes", func(t *testing.T) {
		diff := Differ([]Token{token1Old, token2Old}, []Token{token1Old.Clone(), token2Old.Clone()})
		assert.True(t, diff.IsEmpty())
	})

	t.Run("should treat a nil supply as distinct from zero", func(t *testing.T) {
		withNil := Token{ID: 9}
		withZero := Token{ID: 9, TotalSupply: big.NewInt(0)}
		diff := Differ([]Token{withNil}, []Token{withZero})
		assert.Len(t, diff.Updates, 1)
	})
}
