package simpleswap

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

// Pair is an unordered pair of distinct assets stored in canonical order,
// Token0 sorting strictly before Token1 byte-wise.
type Pair struct {
	Token0 common.Address `json:"token0"`
	Token1 common.Address `json:"token1"`
}

// NewPair canonicalises (a, b). Identical assets are rejected before zero
// addresses, so (0x0, 0x0) reports IDENTICAL_ADDRESSES.
func NewPair(a, b common.Address) (Pair, error) {
	if a == b {
		return Pair{}, ErrIdenticalAddresses
	}
	if a == (common.Address{}) || b == (common.Address{}) {
		return Pair{}, ErrZeroAddress
	}
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return Pair{Token0: a, Token1: b}, nil
}

// Contains reports whether token is one side of the pair.
func (p Pair) Contains(token common.Address) bool {
	return token == p.Token0 || token == p.Token1
}

// IsToken0 reports whether token is the canonical first asset.
func (p Pair) IsToken0(token common.Address) bool {
	return token == p.Token0
}

func (p Pair) String() string {
	return p.Token0.Hex() + "/" + p.Token1.Hex()
}
