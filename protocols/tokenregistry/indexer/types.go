package indexer

import (
	tokenregistry "github.com/defistate/simpleswap-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
)

// IndexedTokenSystem gives keyed read access to a token view.
type IndexedTokenSystem interface {
	GetByID(id uint64) (tokenregistry.Token, bool)
	GetByAddress(address common.Address) (tokenregistry.Token, bool)
	GetBySymbol(symbol string) (tokenregistry.Token, bool)
	Label(address common.Address) string
	All() []tokenregistry.Token
}
