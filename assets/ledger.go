// Package assets is an in-memory ERC-20 style token ledger. It deploys
// tokens, tracks balances and allowances, and runs groups of transfers as
// all-or-nothing transactions on behalf of a spender.
package assets

import (
	"cmp"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/defistate/simpleswap-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultDecimals is used when a token is deployed without explicit decimals.
const DefaultDecimals uint8 = 18

var (
	ErrUnknownToken          = errors.New("unknown token")
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrZeroAddress           = errors.New("zero address")
	ErrSupplyOverflow        = errors.New("supply overflow")
)

type tokenState struct {
	meta       tokenregistry.Token
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int // owner -> spender -> amount
}

func (ts *tokenState) balanceOf(owner common.Address) *big.Int {
	if b, ok := ts.balances[owner]; ok {
		return b
	}
	return new(big.Int)
}

func (ts *tokenState) allowance(owner, spender common.Address) *big.Int {
	if byOwner, ok := ts.allowances[owner]; ok {
		if a, ok := byOwner[spender]; ok {
			return a
		}
	}
	return new(big.Int)
}

func (ts *tokenState) setBalance(owner common.Address, v *big.Int) {
	if v.Sign() == 0 {
		delete(ts.balances, owner)
		return
	}
	ts.balances[owner] = v
}

func (ts *tokenState) setAllowance(owner, spender common.Address, v *big.Int) {
	byOwner, ok := ts.allowances[owner]
	if !ok {
		byOwner = make(map[common.Address]*big.Int)
		ts.allowances[owner] = byOwner
	}
	byOwner[spender] = v
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	tokens map[common.Address]*tokenState
	nonces map[common.Address]uint64
	nextID uint64
}

func New() *Ledger {
	return &Ledger{
		tokens: make(map[common.Address]*tokenState),
		nonces: make(map[common.Address]uint64),
		nextID: 1,
	}
}

// Deploy creates a token and mints initialMint whole units, scaled by
// 10^decimals, to owner. The token address is derived from the owner and
// its deployment nonce, as a contract creation would.
func (l *Ledger) Deploy(name, symbol string, decimals uint8, owner common.Address, initialMint *big.Int) (tokenregistry.Token, error) {
	if owner == (common.Address{}) {
		return tokenregistry.Token{}, ErrZeroAddress
	}
	if initialMint == nil {
		initialMint = new(big.Int)
	}
	if initialMint.Sign() < 0 {
		return tokenregistry.Token{}, fmt.Errorf("%w: initial mint %s", ErrInvalidAmount, initialMint)
	}
	supply, err := mathutil.ScaleUnits(initialMint, decimals)
	if err != nil {
		return tokenregistry.Token{}, fmt.Errorf("%w: %v", ErrSupplyOverflow, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	nonce := l.nonces[owner]
	address := crypto.CreateAddress(owner, nonce)
	l.nonces[owner] = nonce + 1

	ts := &tokenState{
		meta: tokenregistry.Token{
			ID:          l.nextID,
			Address:     address,
			Name:        name,
			Symbol:      symbol,
			Decimals:    decimals,
			Owner:       owner,
			TotalSupply: supply,
		},
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
	ts.setBalance(owner, new(big.Int).Set(supply))
	l.tokens[address] = ts
	l.nextID++

	return ts.meta.Clone(), nil
}

func (l *Ledger) token(address common.Address) (*tokenState, error) {
	ts, ok := l.tokens[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, address.Hex())
	}
	return ts, nil
}

// Mint creates units whole tokens, scaled by the token's decimals, for to.
func (l *Ledger) Mint(token, to common.Address, units *big.Int) (*big.Int, error) {
	if to == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if units == nil || units.Sign() < 0 {
		return nil, fmt.Errorf("%w: mint of %v units", ErrInvalidAmount, units)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts, err := l.token(token)
	if err != nil {
		return nil, err
	}
	amount, err := mathutil.ScaleUnits(units, ts.meta.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSupplyOverflow, err)
	}
	supply, err := mathutil.Add(ts.meta.TotalSupply, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSupplyOverflow, err)
	}

	ts.meta.TotalSupply = supply
	ts.setBalance(to, new(big.Int).Add(ts.balanceOf(to), amount))
	return amount, nil
}

// Approve sets the amount spender may move out of owner's balance.
func (l *Ledger) Approve(token, owner, spender common.Address, amount *big.Int) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return ErrZeroAddress
	}
	if _, err := mathutil.ToU256(amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts, err := l.token(token)
	if err != nil {
		return err
	}
	v := new(big.Int)
	if amount != nil {
		v.Set(amount)
	}
	ts.setAllowance(owner, spender, v)
	return nil
}

func (l *Ledger) Allowance(token, owner, spender common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts, err := l.token(token)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(ts.allowance(owner, spender)), nil
}

func (l *Ledger) BalanceOf(token, owner common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts, err := l.token(token)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(ts.balanceOf(owner)), nil
}

func (l *Ledger) TotalSupply(token common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts, err := l.token(token)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(ts.meta.TotalSupply), nil
}

// Token returns the metadata of a deployed token.
func (l *Ledger) Token(address common.Address) (tokenregistry.Token, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts, ok := l.tokens[address]
	if !ok {
		return tokenregistry.Token{}, false
	}
	return ts.meta.Clone(), true
}

// Tokens returns the metadata of every deployed token, ordered by ID.
func (l *Ledger) Tokens() []tokenregistry.Token {
	l.mu.Lock()
	defer l.mu.Unlock()

	tokens := make([]tokenregistry.Token, 0, len(l.tokens))
	for _, ts := range l.tokens {
		tokens = append(tokens, ts.meta.Clone())
	}
	slices.SortFunc(tokens, func(a, b tokenregistry.Token) int { return cmp.Compare(a.ID, b.ID) })
	return tokens
}

// Transfer moves amount of token from one holder to another.
func (l *Ledger) Transfer(token, from, to common.Address, amount *big.Int) error {
	return l.Transact(from, func(tx Tx) error {
		return tx.Transfer(token, to, amount)
	})
}
