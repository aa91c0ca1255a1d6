package simpleswap

import (
	"math/big"

	"github.com/defistate/simpleswap-go/engine"
	"github.com/ethereum/go-ethereum/common"
)

// Schema is the decode contract for a []Pool protocol view.
const Schema engine.ProtocolSchema = "simpleswap/pools/PoolView@v1"

type Pool struct {
	ID          uint64         `json:"id"`
	Token0      common.Address `json:"token0"`
	Token1      common.Address `json:"token1"`
	Reserve0    *big.Int       `json:"reserve0"`
	Reserve1    *big.Int       `json:"reserve1"`
	TotalShares *big.Int       `json:"totalShares"`
}

// EmptyPool returns the zero-valued pool for pair.
func EmptyPool(pair Pair) Pool {
	return Pool{
		Token0:      pair.Token0,
		Token1:      pair.Token1,
		Reserve0:    new(big.Int),
		Reserve1:    new(big.Int),
		TotalShares: new(big.Int),
	}
}

func (p Pool) Pair() Pair {
	return Pair{Token0: p.Token0, Token1: p.Token1}
}

// IsEmpty reports whether no shares are outstanding.
func (p Pool) IsEmpty() bool {
	return p.TotalShares == nil || p.TotalShares.Sign() == 0
}

// HasLiquidity reports whether both reserves are non-zero.
func (p Pool) HasLiquidity() bool {
	return p.Reserve0 != nil && p.Reserve1 != nil && p.Reserve0.Sign() > 0 && p.Reserve1.Sign() > 0
}

// Reserves returns the reserves oriented so the first value belongs to tokenA.
func (p Pool) Reserves(tokenA common.Address) (reserveA, reserveB *big.Int) {
	if tokenA == p.Token0 {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}

// Clone returns a copy that shares no *big.Int with p.
func (p Pool) Clone() Pool {
	c := p
	if p.Reserve0 != nil {
		c.Reserve0 = new(big.Int).Set(p.Reserve0)
	}
	if p.Reserve1 != nil {
		c.Reserve1 = new(big.Int).Set(p.Reserve1)
	}
	if p.TotalShares != nil {
		c.TotalShares = new(big.Int).Set(p.TotalShares)
	}
	return c
}
