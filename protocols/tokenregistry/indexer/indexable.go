package indexer

import (
	"strings"

	tokenregistry "github.com/defistate/simpleswap-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
)

// IndexableTokenSystem indexes a token view by ID, address and symbol.
// Symbols are matched case-insensitively; when two tokens share a symbol
// the one with the lower ID wins.
type IndexableTokenSystem struct {
	byID      map[uint64]tokenregistry.Token
	byAddress map[common.Address]tokenregistry.Token
	bySymbol  map[string]tokenregistry.Token
	all       []tokenregistry.Token
}

// NewIndexableTokenSystem builds the indexes from a raw slice.
func NewIndexableTokenSystem(tokens []tokenregistry.Token) *IndexableTokenSystem {
	its := &IndexableTokenSystem{
		byID:      make(map[uint64]tokenregistry.Token, len(tokens)),
		byAddress: make(map[common.Address]tokenregistry.Token, len(tokens)),
		bySymbol:  make(map[string]tokenregistry.Token, len(tokens)),
		all:       tokens,
	}

	for _, t := range tokens {
		its.byID[t.ID] = t
		its.byAddress[t.Address] = t
		key := strings.ToUpper(t.Symbol)
		if prev, ok := its.bySymbol[key]; !ok || t.ID < prev.ID {
			its.bySymbol[key] = t
		}
	}
	return its
}

func (its *IndexableTokenSystem) GetByID(id uint64) (tokenregistry.Token, bool) {
	t, ok := its.byID[id]
	return t, ok
}

func (its *IndexableTokenSystem) GetByAddress(address common.Address) (tokenregistry.Token, bool) {
	t, ok := its.byAddress[address]
	return t, ok
}

func (its *IndexableTokenSystem) GetBySymbol(symbol string) (tokenregistry.Token, bool) {
	t, ok := its.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

// Label returns the token symbol for address, or its hex form if unknown.
func (its *IndexableTokenSystem) Label(address common.Address) string {
	if t, ok := its.byAddress[address]; ok && t.Symbol != "" {
		return t.Symbol
	}
	return address.Hex()
}

// All returns a defensive copy of the slice of all tokens in the system.
func (its *IndexableTokenSystem) All() []tokenregistry.Token {
	allCopy := make([]tokenregistry.Token, len(its.all))
	copy(allCopy, its.all)
	return allCopy
}
