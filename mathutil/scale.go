package mathutil

import "math/big"

var (
	ten = big.NewInt(10)

	// precomputed 10^dec for typical ERC20 decimals (0..18)
	precomputedScales [19]*big.Int
)

func init() {
	precomputedScales[0] = big.NewInt(1)
	for i := 1; i < len(precomputedScales); i++ {
		precomputedScales[i] = new(big.Int).Mul(precomputedScales[i-1], ten)
	}
}

// Pow10 returns 10^dec. The result MUST NOT be modified.
func Pow10(dec uint8) *big.Int {
	if int(dec) < len(precomputedScales) {
		return precomputedScales[dec]
	}
	return new(big.Int).Exp(ten, big.NewInt(int64(dec)), nil)
}

// ScaleUnits converts whole units into base units of a token with the given decimals.
func ScaleUnits(units *big.Int, decimals uint8) (*big.Int, error) {
	return Mul(units, Pow10(decimals))
}
