package mathutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSqrt(t *testing.T) {
	testCases := []struct {
		name string
		in   *big.Int
		want *big.Int
	}{
		{"zero", big.NewInt(0), big.NewInt(0)},
		{"one", big.NewInt(1), big.NewInt(1)},
		{"two", big.NewInt(2), big.NewInt(1)},
		{"three", big.NewInt(3), big.NewInt(1)},
		{"four", big.NewInt(4), big.NewInt(2)},
		{"fifteen", big.NewInt(15), big.NewInt(3)},
		{"sixteen", big.NewInt(16), big.NewInt(4)},
		{"max uint256", MaxUint256, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sqrt(tc.in)
			assert.Equal(t, 0, tc.want.Cmp(got), "expected %s, got %s", tc.want, got)
		})
	}

	t.Run("should panic on negative input", func(t *testing.T) {
		assert.Panics(t, func() { Sqrt(big.NewInt(-1)) })
	})

	t.Run("should not modify its argument", func(t *testing.T) {
		n := big.NewInt(99)
		Sqrt(n)
		assert.Equal(t, int64(99), n.Int64())
	})
}

func TestSqrt_FloorProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 0, 80).Draw(t, "bytes")
		n := new(big.Int).SetBytes(raw)

		r := Sqrt(n)
		lower := new(big.Int).Mul(r, r)
		next := new(big.Int).Add(r, big.NewInt(1))
		upper := new(big.Int).Mul(next, next)

		if lower.Cmp(n) > 0 {
			t.Fatalf("sqrt(%s)=%s: r*r exceeds n", n, r)
		}
		if upper.Cmp(n) <= 0 {
			t.Fatalf("sqrt(%s)=%s: (r+1)^2 does not exceed n", n, r)
		}
		if r.Cmp(new(big.Int).Sqrt(n)) != 0 {
			t.Fatalf("sqrt(%s)=%s disagrees with math/big", n, r)
		}
	})
}

func TestMin(t *testing.T) {
	a := big.NewInt(5)
	b := big.NewInt(7)

	require.Same(t, a, Min(a, b))
	require.Same(t, a, Min(b, a))

	t.Run("should return the first operand on a tie", func(t *testing.T) {
		x := big.NewInt(3)
		y := big.NewInt(3)
		assert.Same(t, x, Min(x, y))
		assert.Same(t, y, Min(y, x))
	})
}
