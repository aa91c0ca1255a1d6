// Package server exposes an Exchange and its asset ledger over go-ethereum's
// JSON-RPC stack: the "amm" namespace for pools and the state stream, and the
// "token" namespace for the development asset ledger.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/defistate/simpleswap-go/assets"
	"github.com/defistate/simpleswap-go/engine"
	"github.com/defistate/simpleswap-go/exchange"
	"github.com/defistate/simpleswap-go/streams/jsonrpc/stateops"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	AMMNamespace   = "amm"
	TokenNamespace = "token"

	defaultBufferSize = 64
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Config struct {
	Logger   Logger
	Exchange *exchange.Exchange
	Assets   *assets.Ledger
	StateOps *stateops.StateOps
	// BufferSize is the number of stream events queued per subscriber before
	// the subscriber is dropped. Defaults to 64.
	BufferSize int
}

func (c *Config) validate() error {
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Exchange == nil {
		return errors.New("config: Exchange cannot be nil")
	}
	if c.Assets == nil {
		return errors.New("config: Assets cannot be nil")
	}
	if c.StateOps == nil {
		return errors.New("config: StateOps cannot be nil")
	}
	if c.BufferSize < 0 {
		return errors.New("config: BufferSize cannot be negative")
	}
	return nil
}

// Server owns the rpc.Server and the state streamer behind it. Run must be
// called: the server holds an exchange event subscription from New on, and
// the exchange drops it once its buffer is full.
type Server struct {
	logger   Logger
	rpc      *rpc.Server
	streamer *StateStreamer
	exchange *exchange.Exchange

	events chan exchange.Event
	subMu  sync.Mutex
	sub    event.Subscription
}

func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	bufferSize := cfg.BufferSize
	if bufferSize == 0 {
		bufferSize = defaultBufferSize
	}

	source := func() *engine.State {
		snap := cfg.Exchange.Snapshot()
		return stateops.NewState(snap.Checkpoint, uint64(time.Now().UnixNano()), cfg.Assets.Tokens(), snap.Pools)
	}
	streamer := NewStateStreamer(cfg.Logger, cfg.StateOps, source, bufferSize)

	srv := rpc.NewServer()
	if err := srv.RegisterName(AMMNamespace, &AMMService{
		logger:   cfg.Logger,
		exchange: cfg.Exchange,
		streamer: streamer,
	}); err != nil {
		return nil, err
	}
	if err := srv.RegisterName(TokenNamespace, &TokenService{
		assets:   cfg.Assets,
		streamer: streamer,
	}); err != nil {
		return nil, err
	}

	events := make(chan exchange.Event, defaultBufferSize)
	return &Server{
		logger:   cfg.Logger,
		rpc:      srv,
		streamer: streamer,
		exchange: cfg.Exchange,
		events:   events,
		sub:      cfg.Exchange.SubscribeEvents(events),
	}, nil
}

// RPC returns the server to mount on HTTP, WebSocket or in-process transports.
func (s *Server) RPC() *rpc.Server {
	return s.rpc
}

// Run publishes a state diff after every committed exchange operation until
// ctx is done.
// A dropped event subscription is renewed; the streamer republishes on
// restart, so no change is lost.
func (s *Server) Run(ctx context.Context) error {
	defer func() { s.subscription().Unsubscribe() }()
	for {
		err := s.streamer.Run(ctx, s.events, s.subscription().Err())
		if !errors.Is(err, exchange.ErrSlowSubscriber) {
			return err
		}
		s.logger.Warn("exchange event subscription dropped, resubscribing")

		s.subMu.Lock()
		s.sub = s.exchange.SubscribeEvents(s.events)
		s.subMu.Unlock()
	}
}

func (s *Server) subscription() event.Subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.sub
}

// Stop closes every open connection and subscription.
func (s *Server) Stop() {
	s.rpc.Stop()
	s.subscription().Unsubscribe()
	s.streamer.Close()
}
