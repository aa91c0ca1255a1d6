package indexer

import (
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
)

// IndexableSimpleSwapSystem provides indexed access to a pool view.
type IndexableSimpleSwapSystem struct {
	byID    map[uint64]simpleswap.Pool
	byPair  map[simpleswap.Pair]simpleswap.Pool
	byToken map[common.Address][]simpleswap.Pool
	all     []simpleswap.Pool
}

func NewIndexableSimpleSwapSystem(pools []simpleswap.Pool) *IndexableSimpleSwapSystem {
	its := &IndexableSimpleSwapSystem{
		byID:    make(map[uint64]simpleswap.Pool, len(pools)),
		byPair:  make(map[simpleswap.Pair]simpleswap.Pool, len(pools)),
		byToken: make(map[common.Address][]simpleswap.Pool),
		all:     pools,
	}
	for _, p := range pools {
		its.byID[p.ID] = p
		its.byPair[p.Pair()] = p
		its.byToken[p.Token0] = append(its.byToken[p.Token0], p)
		its.byToken[p.Token1] = append(its.byToken[p.Token1], p)
	}
	return its
}

func (its *IndexableSimpleSwapSystem) GetByID(id uint64) (simpleswap.Pool, bool) {
	p, ok := its.byID[id]
	return p, ok
}

// GetByPair looks up the pool for two tokens given in either order.
func (its *IndexableSimpleSwapSystem) GetByPair(tokenA, tokenB common.Address) (simpleswap.Pool, bool) {
	pair, err := simpleswap.NewPair(tokenA, tokenB)
	if err != nil {
		return simpleswap.Pool{}, false
	}
	p, ok := its.byPair[pair]
	return p, ok
}

// ByToken returns the pools that hold token on either side.
func (its *IndexableSimpleSwapSystem) ByToken(token common.Address) []simpleswap.Pool {
	pools := its.byToken[token]
	out := make([]simpleswap.Pool, len(pools))
	copy(out, pools)
	return out
}

// All returns a defensive copy of the slice of all pools.
func (its *IndexableSimpleSwapSystem) All() []simpleswap.Pool {
	allCopy := make([]simpleswap.Pool, len(its.all))
	copy(allCopy, its.all)
	return allCopy
}
