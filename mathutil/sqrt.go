// Package mathutil holds the integer helpers shared by the pool formulas:
// an exact integer square root, min-of-two, and overflow-checked arithmetic
// over the unsigned 256-bit range.
package mathutil

import "math/big"

var one = big.NewInt(1)

// Sqrt returns floor(sqrt(n)) using Newton's iteration on integers only.
// The result r satisfies r*r <= n < (r+1)*(r+1) for every n >= 0, whatever
// the size of n. Sqrt panics if n is negative.
func Sqrt(n *big.Int) *big.Int {
	if n.Sign() < 0 {
		panic("mathutil: square root of negative number")
	}
	if n.Sign() == 0 {
		return new(big.Int)
	}

	// 2^ceil(bits/2) is always >= sqrt(n), so the iteration descends
	// monotonically and stops at the floor.
	z := new(big.Int).Lsh(one, uint(n.BitLen()+1)/2)
	x := new(big.Int)
	for {
		x.Quo(n, z)
		x.Add(x, z)
		x.Rsh(x, 1)
		if x.Cmp(z) >= 0 {
			return z
		}
		z.Set(x)
	}
}

// Min returns the smaller of a and b. On a tie it returns a.
func Min(a, b *big.Int) *big.Int {
	if b.Cmp(a) < 0 {
		return b
	}
	return a
}
