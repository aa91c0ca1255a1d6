package tokenregistry

import (
	"math/big"

	"github.com/defistate/simpleswap-go/engine"
	"github.com/ethereum/go-ethereum/common"
)

// Schema is the decode contract for a []Token protocol view.
const Schema engine.ProtocolSchema = "simpleswap/tokens/TokenView@v1"

// Token is a safe, structured representation of a token's data for external use.
type Token struct {
	ID          uint64         `json:"id"`
	Address     common.Address `json:"address"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Decimals    uint8          `json:"decimals"`
	Owner       common.Address `json:"owner"`
	TotalSupply *big.Int       `json:"totalSupply"`
}

// Clone returns a copy that shares no memory with t.
func (t Token) Clone() Token {
	c := t
	if t.TotalSupply != nil {
		c.TotalSupply = new(big.Int).Set(t.TotalSupply)
	}
	return c
}
