// Package exchange is the constant-product exchange engine. It validates
// deposits, withdrawals and swaps, then applies them atomically to the pool
// ledger, the share token and the asset ledger.
//
// Operations on the same pool are serialised by a per-pool lock held for
// the whole operation, asset transfers included. Different pools proceed in
// parallel. Queries take the pool's read lock and never observe a
// half-applied mutation.
package exchange

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/defistate/simpleswap-go/ledger"
	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/defistate/simpleswap-go/sharetoken"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

type Exchange struct {
	logger  Logger
	metrics *Metrics
	assets  AssetLedger
	clock   Clock
	vault   common.Address

	pools  *ledger.PoolLedger
	shares *sharetoken.Token

	// stateMu is held shared by every mutation and exclusively by Snapshot.
	stateMu sync.RWMutex

	locksMu sync.Mutex
	locks   map[simpleswap.Pair]*sync.RWMutex

	checkpoint atomic.Uint64

	subsMu sync.Mutex
	subs   map[*eventSub]struct{}
	scope  event.SubscriptionScope
}

func New(cfg *Config) (*Exchange, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &Exchange{
		logger:  cfg.Logger,
		metrics: NewMetrics(cfg.Registry),
		assets:  cfg.Assets,
		clock:   clock,
		vault:   cfg.Vault,
		pools:   ledger.New(),
		shares:  sharetoken.New(),
		locks:   make(map[simpleswap.Pair]*sync.RWMutex),
		subs:    make(map[*eventSub]struct{}),
	}, nil
}

// Vault returns the account holding the pooled assets.
func (e *Exchange) Vault() common.Address {
	return e.vault
}

// Checkpoint returns the number of committed mutations.
func (e *Exchange) Checkpoint() uint64 {
	return e.checkpoint.Load()
}

// Close ends every event subscription.
func (e *Exchange) Close() {
	e.scope.Close()
}

func (e *Exchange) poolLock(pair simpleswap.Pair) *sync.RWMutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	mu, ok := e.locks[pair]
	if !ok {
		mu = new(sync.RWMutex)
		e.locks[pair] = mu
	}
	return mu
}

// lockForWrite serialises a mutation of pair. The returned func releases it.
func (e *Exchange) lockForWrite(pair simpleswap.Pair) func() {
	e.stateMu.RLock()
	mu := e.poolLock(pair)
	mu.Lock()
	return func() {
		mu.Unlock()
		e.stateMu.RUnlock()
	}
}

func (e *Exchange) lockForRead(pair simpleswap.Pair) func() {
	mu := e.poolLock(pair)
	mu.RLock()
	return mu.RUnlock
}

// checkDeadline fails with EXPIRED when deadline is strictly before now.
func (e *Exchange) checkDeadline(deadline uint64) (time.Time, error) {
	now := e.clock.Now()
	if unix := now.Unix(); unix > 0 && deadline < uint64(unix) {
		return now, fmt.Errorf("%w: deadline %d is before %d", simpleswap.ErrExpired, deadline, unix)
	}
	return now, nil
}

func checkRecipient(to common.Address) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: recipient", simpleswap.ErrZeroAddress)
	}
	return nil
}

// checkAccounts rejects the vault as caller or recipient. Transfers between
// the vault and itself move nothing while the ledger would still count them.
func (e *Exchange) checkAccounts(caller, to common.Address) error {
	if caller == e.vault {
		return fmt.Errorf("%w: vault %s cannot be the caller", simpleswap.ErrVaultAccount, caller.Hex())
	}
	if to == e.vault {
		return fmt.Errorf("%w: vault %s cannot be the recipient", simpleswap.ErrVaultAccount, to.Hex())
	}
	return nil
}

// amount copies v into the unsigned 256-bit domain. nil means zero.
func amount(name string, v *big.Int) (*big.Int, error) {
	if v == nil {
		return new(big.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is negative (%s)", simpleswap.ErrInvalidAmount, name, v)
	}
	if v.Cmp(mathutil.MaxUint256) > 0 {
		return nil, fmt.Errorf("%w: %s exceeds 2^256-1", simpleswap.ErrOverflow, name)
	}
	return new(big.Int).Set(v), nil
}

// orient maps amounts given in (tokenA, tokenB) order onto (token0, token1).
func orient(pair simpleswap.Pair, tokenA common.Address, amountA, amountB *big.Int) (amount0, amount1 *big.Int) {
	if pair.IsToken0(tokenA) {
		return amountA, amountB
	}
	return amountB, amountA
}

func transferFailed(err error) error {
	return fmt.Errorf("%w: %w", simpleswap.ErrTransferFailed, err)
}

// commit advances the checkpoint and returns the new value.
func (e *Exchange) commit() uint64 {
	cp := e.checkpoint.Add(1)
	e.metrics.checkpoint.Set(float64(cp))
	return cp
}

// emit hands ev to every subscriber without blocking. A subscriber whose
// channel is full is dropped and its subscription fails with
// ErrSlowSubscriber.
func (e *Exchange) emit(ev *Event) {
	if ev == nil {
		return
	}
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	for s := range e.subs {
		select {
		case s.ch <- *ev:
		default:
			delete(e.subs, s)
			close(s.dropped)
			e.logger.Warn("dropping slow event subscriber", "checkpoint", ev.Checkpoint)
		}
	}
}

// journal collects undo steps for ledger changes made inside an asset
// transaction, so a later failure can put them back.
type journal []func()

func (j *journal) add(undo func()) {
	*j = append(*j, undo)
}

func (j journal) revert() {
	for i := len(j) - 1; i >= 0; i-- {
		j[i]()
	}
}
