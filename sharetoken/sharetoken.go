// Package sharetoken tracks liquidity-provider shares. Every balance is
// keyed by (owner, pair), so shares of different pools never mix.
package sharetoken

import (
	"bytes"
	"fmt"
	"math/big"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
)

type pairBook struct {
	balances map[common.Address]*big.Int
	total    *big.Int
	holders  mapset.Set[common.Address]
}

func newPairBook() *pairBook {
	return &pairBook{
		balances: make(map[common.Address]*big.Int),
		total:    new(big.Int),
		holders:  mapset.NewThreadUnsafeSet[common.Address](),
	}
}

// Token is the share ledger of all pools. It is safe for concurrent use.
type Token struct {
	mu    sync.RWMutex
	books map[simpleswap.Pair]*pairBook
}

func New() *Token {
	return &Token{books: make(map[simpleswap.Pair]*pairBook)}
}

// Mint credits amount shares of pair to owner.
func (s *Token) Mint(owner common.Address, pair simpleswap.Pair, amount *big.Int) error {
	if owner == (common.Address{}) {
		return simpleswap.ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: mint of %v shares", simpleswap.ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[pair]
	if !ok {
		book = newPairBook()
	}

	total, err := mathutil.Add(book.total, amount)
	if err != nil {
		return fmt.Errorf("%w: share supply of %s: %v", simpleswap.ErrOverflow, pair, err)
	}
	balance, err := mathutil.Add(book.balances[owner], amount)
	if err != nil {
		return fmt.Errorf("%w: share balance of %s: %v", simpleswap.ErrOverflow, owner.Hex(), err)
	}

	s.books[pair] = book
	book.total = total
	book.set(owner, balance)
	return nil
}

// Burn debits amount shares of pair from owner.
func (s *Token) Burn(owner common.Address, pair simpleswap.Pair, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: burn of %v shares", simpleswap.ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[pair]
	if !ok {
		if amount.Sign() == 0 {
			return nil
		}
		return simpleswap.ErrNotEnoughUserLiquidity
	}

	balance, err := mathutil.Sub(book.balances[owner], amount)
	if err != nil {
		return fmt.Errorf("%w: %s holds %v, burning %s", simpleswap.ErrNotEnoughUserLiquidity, owner.Hex(), book.balances[owner], amount)
	}
	total, err := mathutil.Sub(book.total, amount)
	if err != nil {
		return fmt.Errorf("%w: share supply of %s: %v", simpleswap.ErrInsufficientLiquidity, pair, err)
	}

	book.total = total
	book.set(owner, balance)
	return nil
}

func (b *pairBook) set(owner common.Address, balance *big.Int) {
	if balance.Sign() == 0 {
		delete(b.balances, owner)
		b.holders.Remove(owner)
		return
	}
	b.balances[owner] = balance
	b.holders.Add(owner)
}

// BalanceOf returns owner's shares of pair.
func (s *Token) BalanceOf(owner common.Address, pair simpleswap.Pair) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if book, ok := s.books[pair]; ok {
		if balance, ok := book.balances[owner]; ok {
			return new(big.Int).Set(balance)
		}
	}
	return new(big.Int)
}

// TotalSupply returns the number of outstanding shares of pair.
func (s *Token) TotalSupply(pair simpleswap.Pair) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if book, ok := s.books[pair]; ok {
		return new(big.Int).Set(book.total)
	}
	return new(big.Int)
}

// Holders returns the owners with a non-zero balance of pair in byte order.
func (s *Token) Holders(pair simpleswap.Pair) []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[pair]
	if !ok {
		return []common.Address{}
	}
	holders := book.holders.ToSlice()
	slices.SortFunc(holders, func(a, b common.Address) int { return bytes.Compare(a[:], b[:]) })
	return holders
}
