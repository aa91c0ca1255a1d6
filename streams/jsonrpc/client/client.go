// Package client follows an AMM node's state stream and rebuilds the node's
// state locally from a full snapshot followed by diffs.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/defistate/simpleswap-go/differ"
	"github.com/defistate/simpleswap-go/engine"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second

	// RpcNamespace is the namespace under which the node serves the stream.
	RpcNamespace                  = "amm"
	StateStreamSubscriptionMethod = "subscribeStateStream"
)

// ErrOutOfSync is returned for a diff that does not start at the last known
// checkpoint. The client resubscribes to get a fresh full state.
var ErrOutOfSync = errors.New("state stream out of sync")

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// StatePatcherFunc applies a diff to a previous state without modifying it.
type StatePatcherFunc func(prevState *engine.State, diff *differ.StateDiff) (newState *engine.State, err error)

type DecoderFunc func(schema engine.ProtocolSchema, data json.RawMessage) (any, error)

type Config struct {
	URL              string
	Logger           Logger
	BufferSize       uint
	StatePatcher     StatePatcherFunc
	StateDecoder     DecoderFunc
	StateDiffDecoder DecoderFunc
}

func (c *Config) validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.BufferSize < 1 {
		return errors.New("config: BufferSize must be greater than 0")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	if c.StatePatcher == nil {
		return errors.New("config: StatePatcher is required")
	}
	if c.StateDecoder == nil {
		return errors.New("config: StateDecoder is required")
	}
	if c.StateDiffDecoder == nil {
		return errors.New("config: StateDiffDecoder is required")
	}
	return nil
}

// SubscriptionEvent is the wrapper object received from the server.
type SubscriptionEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  int64           `json:"sentAt"`
}

// StreamProcessor decodes stream events, keeps the latest state and
// publishes every new state. It does no networking.
type StreamProcessor struct {
	lastState        *engine.State
	statePatcher     StatePatcherFunc
	stateDecoder     DecoderFunc
	stateDiffDecoder DecoderFunc
	stateCh          chan *engine.State
	logger           Logger
}

func NewStreamProcessor(
	logger Logger,
	bufferSize uint,
	statePatcher StatePatcherFunc,
	stateDecoder DecoderFunc,
	stateDiffDecoder DecoderFunc,
) *StreamProcessor {
	return &StreamProcessor{
		logger:           logger,
		stateCh:          make(chan *engine.State, bufferSize),
		statePatcher:     statePatcher,
		stateDecoder:     stateDecoder,
		stateDiffDecoder: stateDiffDecoder,
	}
}

// State returns a read-only channel for receiving new states.
func (sp *StreamProcessor) State() <-chan *engine.State {
	return sp.stateCh
}

// ProcessMessage handles one raw subscription event.
func (sp *StreamProcessor) ProcessMessage(rawData json.RawMessage) error {
	processingStart := time.Now()
	var event SubscriptionEvent

	if err := json.Unmarshal(rawData, &event); err != nil {
		return fmt.Errorf("failed to unmarshal subscription event: %w", err)
	}

	switch event.Type {
	case "full":
		return sp.handleFullState(event, processingStart)
	case "diff":
		return sp.handleDiff(event, processingStart)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

func (sp *StreamProcessor) handleFullState(event SubscriptionEvent, start time.Time) error {
	var cState clientState
	if err := json.Unmarshal(event.Payload, &cState); err != nil {
		return fmt.Errorf("failed to unmarshal full state payload: %w", err)
	}

	state := engine.State{
		Checkpoint: cState.Checkpoint,
		Timestamp:  cState.Timestamp,
		Protocols:  make(map[engine.ProtocolID]engine.ProtocolState, len(cState.Protocols)),
	}

	for pID, protocolState := range cState.Protocols {
		typedData, err := sp.stateDecoder(protocolState.Schema, protocolState.Data)
		if err != nil {
			return fmt.Errorf("failed to decode state for protocol %s: %w", pID, err)
		}

		state.Protocols[pID] = engine.ProtocolState{
			Meta:   protocolState.Meta,
			Schema: protocolState.Schema,
			Data:   typedData,
			Error:  protocolState.Error,
		}
	}

	sp.logMetrics(&state, time.Since(start), event.SentAt, "full")
	sp.lastState = &state
	sp.stateCh <- &state
	return nil
}

func (sp *StreamProcessor) handleDiff(event SubscriptionEvent, start time.Time) error {
	var cDiff clientStateDiff
	if err := json.Unmarshal(event.Payload, &cDiff); err != nil {
		return fmt.Errorf("failed to unmarshal diff payload: %w", err)
	}

	if sp.lastState == nil {
		return fmt.Errorf("received diff before full state; from_checkpoint: %d, to_checkpoint: %d", cDiff.FromCheckpoint, cDiff.ToCheckpoint)
	}
	if cDiff.FromCheckpoint != sp.lastState.Checkpoint {
		sp.logger.Warn("Received out-of-order diff, discarding",
			"last_known_checkpoint", sp.lastState.Checkpoint,
			"diff_from_checkpoint", cDiff.FromCheckpoint,
			"diff_to_checkpoint", cDiff.ToCheckpoint,
		)
		return fmt.Errorf("%w: have checkpoint %d, diff starts at %d", ErrOutOfSync, sp.lastState.Checkpoint, cDiff.FromCheckpoint)
	}

	diff := differ.StateDiff{
		FromCheckpoint: cDiff.FromCheckpoint,
		ToCheckpoint:   cDiff.ToCheckpoint,
		Timestamp:      cDiff.Timestamp,
		Protocols:      make(map[engine.ProtocolID]differ.ProtocolDiff, len(cDiff.Protocols)),
	}

	for pID, protocolDiff := range cDiff.Protocols {
		typedData, err := sp.stateDiffDecoder(protocolDiff.Schema, protocolDiff.Data)
		if err != nil {
			return fmt.Errorf("failed to decode diff data for protocol %s: %w", pID, err)
		}

		diff.Protocols[pID] = differ.ProtocolDiff{
			Meta:   protocolDiff.Meta,
			Schema: protocolDiff.Schema,
			Data:   typedData,
			Error:  protocolDiff.Error,
		}
	}

	newState, err := sp.statePatcher(sp.lastState, &diff)
	if err != nil {
		return fmt.Errorf("failed to patch state: %w", err)
	}
	newState.Timestamp = diff.Timestamp

	sp.logMetrics(newState, time.Since(start), event.SentAt, "diff")
	sp.lastState = newState
	sp.stateCh <- newState
	return nil
}

func (sp *StreamProcessor) logMetrics(state *engine.State, processingDur time.Duration, sentAt int64, stateType string) {
	clientFinishTime := time.Now()
	clientStartTime := clientFinishTime.Add(-processingDur)
	serverFinishTime := time.Unix(0, sentAt)
	snapshotTime := time.Unix(0, int64(state.Timestamp))

	errorCount := 0
	for _, p := range state.Protocols {
		if p.Error != "" {
			errorCount++
		}
	}

	sp.logger.Debug("State Processed",
		"checkpoint", state.Checkpoint,
		"type", stateType,
		"protocols", len(state.Protocols),
		"errors", errorCount,
		"latency_total_ms", clientFinishTime.Sub(snapshotTime).Milliseconds(),
		"latency_transport_ms", clientStartTime.Sub(serverFinishTime).Milliseconds(),
		"latency_proc_ms", processingDur.Milliseconds(),
		"latency_server_ms", serverFinishTime.Sub(snapshotTime).Milliseconds(),
	)
}

// Client manages the connection and feeds the StreamProcessor.
type Client struct {
	processor *StreamProcessor
	errCh     chan error
	logger    Logger
}

// NewClient starts following the stream at cfg.URL until ctx is done.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	processor := NewStreamProcessor(
		cfg.Logger,
		cfg.BufferSize,
		cfg.StatePatcher,
		cfg.StateDecoder,
		cfg.StateDiffDecoder,
	)

	client := &Client{
		processor: processor,
		errCh:     make(chan error, 1),
		logger:    cfg.Logger,
	}

	go client.run(ctx, cfg.URL)
	return client, nil
}

func (c *Client) State() <-chan *engine.State {
	return c.processor.State()
}

// Err is closed when the client stops.
func (c *Client) Err() <-chan error {
	return c.errCh
}

func (c *Client) run(ctx context.Context, url string) {
	defer close(c.errCh)
	reconnectDelay := initialReconnectDelay

	for {
		if ctx.Err() != nil {
			c.logger.Info("Client context canceled, shutting down.")
			return
		}

		c.logger.Info("Attempting to connect to RPC server", "url", url)
		rpcClient, err := rpc.DialContext(ctx, url)
		if err != nil {
			c.logger.Error("Failed to connect to RPC server, will retry...", "error", err, "delay", reconnectDelay)
			if !sleep(ctx, reconnectDelay) {
				return
			}
			reconnectDelay = min(reconnectDelay*2, maxReconnectDelay)
			continue
		}

		c.logger.Info("Successfully connected to RPC server.")
		reconnectDelay = initialReconnectDelay

		err = c.subscribeAndProcess(ctx, rpcClient)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.logger.Info("Context canceled, shutting down.")
			return
		}
		if errors.Is(err, ErrOutOfSync) {
			c.logger.Warn("Resubscribing to resync state", "error", err)
			continue
		}
		c.logger.Error("Subscription failed, will reconnect...", "error", err, "delay", reconnectDelay)
		if !sleep(ctx, reconnectDelay) {
			return
		}
		reconnectDelay = min(reconnectDelay*2, maxReconnectDelay)
	}
}

func (c *Client) subscribeAndProcess(ctx context.Context, rpcClient *rpc.Client) error {
	defer rpcClient.Close()

	rawCh := make(chan json.RawMessage)
	sub, err := rpcClient.Subscribe(ctx, RpcNamespace, rawCh, StateStreamSubscriptionMethod)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	c.logger.Info("Successfully subscribed. Waiting for data...")
	for {
		select {
		case rawData := <-rawCh:
			err := c.processor.ProcessMessage(rawData)
			if errors.Is(err, ErrOutOfSync) {
				return err
			}
			if err != nil {
				c.logger.Error("Error processing message", "error", err)
			}
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed by server")
			}
			return err
		case <-ctx.Done():
			c.logger.Info("Context cancelled, stopping subscription.")
			return ctx.Err()
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
