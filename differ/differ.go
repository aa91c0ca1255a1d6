package differ

import (
	"errors"
	"fmt"
	"time"

	"github.com/defistate/simpleswap-go/engine"
	"github.com/prometheus/client_golang/prometheus"
)

// ProtocolDiffer computes the diff between two views of the same schema.
type ProtocolDiffer func(old, new any) (diff any, err error)

// emptier is implemented by protocol diffs that can report "no change".
type emptier interface {
	IsEmpty() bool
}

// StateDifferConfig holds all the individual differ functions and dependencies.
type StateDifferConfig struct {
	// One differ per schema (data contract), not per protocol identity.
	ProtocolDiffers map[engine.ProtocolSchema]ProtocolDiffer
	Registry        prometheus.Registerer
	Logger          Logger
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *StateDifferConfig) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// StateDiffer computes StateDiffs between consecutive snapshots.
type StateDiffer struct {
	metrics         *Metrics
	logger          Logger
	protocolDiffers map[engine.ProtocolSchema]ProtocolDiffer
}

// NewStateDiffer constructs a new differ from a configuration, returning an error if the config is invalid.
func NewStateDiffer(cfg *StateDifferConfig) (*StateDiffer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	protocolDiffers := make(map[engine.ProtocolSchema]ProtocolDiffer, len(cfg.ProtocolDiffers))
	for schema, protocolDiffer := range cfg.ProtocolDiffers {
		protocolDiffers[schema] = protocolDiffer
	}

	return &StateDiffer{
		metrics:         NewMetrics(cfg.Registry),
		logger:          cfg.Logger,
		protocolDiffers: protocolDiffers,
	}, nil
}

// Diff compares two error-free snapshots. Every protocol in new must already
// exist in old.
func (d *StateDiffer) Diff(old, new *engine.State) (*StateDiff, error) {
	totalTimer := prometheus.NewTimer(d.metrics.diffDuration.WithLabelValues())
	defer totalTimer.ObserveDuration()

	if old.HasErrors() || new.HasErrors() {
		return nil, errors.New("StateDiffer received state with errors")
	}
	if new.Checkpoint < old.Checkpoint {
		return nil, fmt.Errorf("checkpoint went backwards (old=%d, new=%d)", old.Checkpoint, new.Checkpoint)
	}

	protocolDiffs := make(map[engine.ProtocolID]ProtocolDiff)
	for protocolID, newProtocolState := range new.Protocols {
		oldProtocolState, ok := old.Protocols[protocolID]
		if !ok {
			return nil, fmt.Errorf("protocolID %s does not exist in old state", protocolID)
		}

		schema := string(newProtocolState.Schema)
		differFunc, exists := d.protocolDiffers[newProtocolState.Schema]
		if !exists {
			d.metrics.diffsTotal.WithLabelValues(schema, "unregistered").Inc()
			return nil, fmt.Errorf("no differ registered for schema %q", newProtocolState.Schema)
		}

		start := time.Now()
		diffData, err := differFunc(oldProtocolState.Data, newProtocolState.Data)
		d.metrics.schemaDuration.WithLabelValues(schema).Observe(time.Since(start).Seconds())
		if err != nil {
			d.metrics.diffsTotal.WithLabelValues(schema, "error").Inc()
			d.logger.Error("protocol diff failed", "protocol", protocolID, "schema", schema, "error", err)
			return nil, err
		}
		d.metrics.diffsTotal.WithLabelValues(schema, "ok").Inc()

		if e, ok := diffData.(emptier); ok && e.IsEmpty() {
			continue
		}

		protocolDiffs[protocolID] = ProtocolDiff{
			Meta:   newProtocolState.Meta,
			Schema: newProtocolState.Schema,
			Data:   diffData,
		}
	}

	return &StateDiff{
		Timestamp:      uint64(time.Now().UnixNano()),
		FromCheckpoint: old.Checkpoint,
		ToCheckpoint:   new.Checkpoint,
		Protocols:      protocolDiffs,
	}, nil
}
