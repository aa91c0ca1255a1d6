package assets

import (
	"fmt"
	"math/big"

	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/ethereum/go-ethereum/common"
)

// Tx is the view of the ledger given to a Transact callback. Every call
// acts on behalf of the transaction's spender.
type Tx interface {
	// TransferFrom moves amount from "from" to "to", consuming the
	// allowance "from" granted to the spender.
	TransferFrom(token, from, to common.Address, amount *big.Int) error
	// Transfer moves amount out of the spender's own balance.
	Transfer(token, to common.Address, amount *big.Int) error
}

type ledgerTx struct {
	l       *Ledger
	spender common.Address
	undo    []func()
}

// Transact runs fn with the ledger locked. If fn returns an error every
// change it made is reverted and the error is returned unchanged.
func (l *Ledger) Transact(spender common.Address, fn func(tx Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &ledgerTx{l: l, spender: spender}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (tx *ledgerTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *ledgerTx) TransferFrom(token, from, to common.Address, amount *big.Int) error {
	ts, err := tx.l.token(token)
	if err != nil {
		return err
	}
	if from == tx.spender {
		return tx.move(token, from, to, amount)
	}

	allowance := ts.allowance(from, tx.spender)
	remaining, err := mathutil.Sub(allowance, amount)
	if err != nil {
		return fmt.Errorf("%w: %s allows %s, need %v", ErrInsufficientAllowance, from.Hex(), allowance, amount)
	}
	if err := tx.move(token, from, to, amount); err != nil {
		return err
	}
	// An allowance of 2^256-1 is unlimited and never decreases.
	if allowance.Cmp(mathutil.MaxUint256) == 0 {
		return nil
	}

	previous := allowance
	ts.setAllowance(from, tx.spender, remaining)
	tx.undo = append(tx.undo, func() { ts.setAllowance(from, tx.spender, previous) })
	return nil
}

func (tx *ledgerTx) Transfer(token, to common.Address, amount *big.Int) error {
	return tx.move(token, tx.spender, to, amount)
}

func (tx *ledgerTx) move(token, from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	ts, err := tx.l.token(token)
	if err != nil {
		return err
	}

	fromBefore := ts.balanceOf(from)
	fromAfter, err := mathutil.Sub(fromBefore, amount)
	if err != nil {
		return fmt.Errorf("%w: %s holds %s of %s, need %s", ErrInsufficientBalance, from.Hex(), fromBefore, token.Hex(), amount)
	}
	if from == to {
		return nil
	}
	toBefore := ts.balanceOf(to)
	toAfter, err := mathutil.Add(toBefore, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSupplyOverflow, err)
	}

	ts.setBalance(from, fromAfter)
	ts.setBalance(to, toAfter)
	tx.undo = append(tx.undo, func() {
		ts.setBalance(from, fromBefore)
		ts.setBalance(to, toBefore)
	})
	return nil
}
