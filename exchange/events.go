package exchange

import (
	"errors"
	"math/big"

	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

type EventKind string

const (
	LiquidityAdded   EventKind = "liquidityAdded"
	LiquidityRemoved EventKind = "liquidityRemoved"
	Swapped          EventKind = "swapped"
)

// Event describes one committed mutation. For swaps TokenA is the input and
// TokenB the output; for liquidity events they follow the caller's order.
// Events may be delivered out of order across pools; Checkpoint orders them.
type Event struct {
	Kind       EventKind
	Checkpoint uint64
	PoolID     uint64
	Pair       simpleswap.Pair
	Caller     common.Address
	To         common.Address
	TokenA     common.Address
	TokenB     common.Address
	AmountA    *big.Int
	AmountB    *big.Int
	// Shares is set for liquidity events.
	Shares *big.Int
	// Reserve0 and Reserve1 are the canonical reserves after the mutation.
	Reserve0 *big.Int
	Reserve1 *big.Int
	// Timestamp is the unix time the operation was validated against.
	Timestamp uint64
}

// ErrSlowSubscriber ends a subscription whose channel was full when an event
// was emitted.
var ErrSlowSubscriber = errors.New("exchange: event subscriber too slow")

type eventSub struct {
	ch      chan<- Event
	dropped chan struct{}
}

// SubscribeEvents delivers every committed Event to ch. Delivery never
// blocks: ch must be buffered, and a subscriber that lets it fill up is
// dropped with ErrSlowSubscriber on Err().
func (e *Exchange) SubscribeEvents(ch chan<- Event) event.Subscription {
	s := &eventSub{ch: ch, dropped: make(chan struct{})}

	e.subsMu.Lock()
	e.subs[s] = struct{}{}
	e.subsMu.Unlock()

	sub := event.NewSubscription(func(quit <-chan struct{}) error {
		defer e.unsubscribe(s)
		select {
		case <-quit:
			return nil
		case <-s.dropped:
			return ErrSlowSubscriber
		}
	})
	if e.scope.Track(sub) == nil {
		// The exchange is closed.
		sub.Unsubscribe()
	}
	return sub
}

func (e *Exchange) unsubscribe(s *eventSub) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	delete(e.subs, s)
}
