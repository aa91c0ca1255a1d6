package indexer

import (
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
)

// IndexedSimpleSwap defines the methods for accessing indexed pool data.
type IndexedSimpleSwap interface {
	GetByID(id uint64) (simpleswap.Pool, bool)
	GetByPair(tokenA, tokenB common.Address) (simpleswap.Pool, bool)
	ByToken(token common.Address) []simpleswap.Pool
	All() []simpleswap.Pool
}
