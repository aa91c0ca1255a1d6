package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/defistate/simpleswap-go/engine"
	"github.com/defistate/simpleswap-go/exchange"
	"github.com/defistate/simpleswap-go/streams/jsonrpc/stateops"
)

const (
	EventTypeFull = "full"
	EventTypeDiff = "diff"
)

// SubscriptionEvent is the wrapper object sent to state stream subscribers.
type SubscriptionEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  int64           `json:"sentAt"` // unix nanoseconds
}

func newSubscriptionEvent(kind string, payload any) (SubscriptionEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return SubscriptionEvent{}, err
	}
	return SubscriptionEvent{Type: kind, Payload: raw, SentAt: time.Now().UnixNano()}, nil
}

// StateStreamer keeps the last published snapshot and fans out the diffs
// between consecutive snapshots. A new subscriber first receives the last
// snapshot in full.
type StateStreamer struct {
	logger     Logger
	ops        *stateops.StateOps
	source     func() *engine.State
	bufferSize int
	trigger    chan struct{}

	mu     sync.Mutex
	last   *engine.State
	subs   map[uint64]chan SubscriptionEvent
	nextID uint64
	closed bool
}

func NewStateStreamer(logger Logger, ops *stateops.StateOps, source func() *engine.State, bufferSize int) *StateStreamer {
	return &StateStreamer{
		logger:     logger,
		ops:        ops,
		source:     source,
		bufferSize: bufferSize,
		trigger:    make(chan struct{}, 1),
		subs:       make(map[uint64]chan SubscriptionEvent),
	}
}

// Notify asks the streamer to publish. Calls made while a publish is already
// pending are merged into it.
func (s *StateStreamer) Notify() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run publishes on every exchange event and every Notify until ctx is done or
// the event subscription fails.
func (s *StateStreamer) Run(ctx context.Context, events <-chan exchange.Event, subErr <-chan error) error {
	s.Publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-subErr:
			return err
		case <-events:
			// Fold a burst of operations into one diff.
			for drained := false; !drained; {
				select {
				case <-events:
				default:
					drained = true
				}
			}
			s.Publish()
		case <-s.trigger:
			s.Publish()
		}
	}
}

// Publish snapshots the source and sends the diff against the previous
// snapshot to every subscriber. Subscribers whose buffer is full are dropped.
func (s *StateStreamer) Publish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	state := s.source()
	if s.last == nil {
		s.last = state
		return
	}

	diff, err := s.ops.Diff(s.last, state)
	if err != nil {
		s.logger.Error("state diff failed", "from", s.last.Checkpoint, "to", state.Checkpoint, "error", err)
		return
	}
	s.last = state
	if diff.IsEmpty() {
		return
	}

	ev, err := newSubscriptionEvent(EventTypeDiff, diff)
	if err != nil {
		s.logger.Error("failed to encode state diff", "error", err)
		return
	}
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("state stream subscriber too slow, dropping", "subscriber", id)
			delete(s.subs, id)
			close(ch)
		}
	}
	s.logger.Debug("state diff published",
		"from", diff.FromCheckpoint,
		"to", diff.ToCheckpoint,
		"protocols", len(diff.Protocols),
		"subscribers", len(s.subs),
	)
}

// Subscribe registers a subscriber. Its channel already holds the full
// snapshot and is closed when the subscriber is dropped.
func (s *StateStreamer) Subscribe() (uint64, <-chan SubscriptionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		s.last = s.source()
	}
	ev, err := newSubscriptionEvent(EventTypeFull, s.last)
	if err != nil {
		return 0, nil, err
	}

	ch := make(chan SubscriptionEvent, s.bufferSize+1)
	ch <- ev
	if s.closed {
		close(ch)
		return 0, ch, nil
	}

	s.nextID++
	s.subs[s.nextID] = ch
	return s.nextID, ch, nil
}

func (s *StateStreamer) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Close drops every subscriber and stops publishing.
func (s *StateStreamer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
