// Package patcher rebuilds a State from its predecessor and a differ.StateDiff,
// dispatching each protocol's diff to the patch function registered for its
// schema.
package patcher

import (
	"errors"
	"fmt"
	"maps"

	"github.com/defistate/simpleswap-go/differ"
	"github.com/defistate/simpleswap-go/engine"
)

var (
	ErrCheckpointMismatch = errors.New("patcher: diff does not start at the state's checkpoint")
	ErrUnknownSchema      = errors.New("patcher: no patcher registered for schema")
	ErrSchemaChanged      = errors.New("patcher: protocol changed schema")
)

// PatcherFunc returns prev with diff applied. prev is nil for a protocol the
// previous state did not carry, and must not be modified.
type PatcherFunc func(prev any, diff any) (any, error)

type StatePatcherConfig struct {
	Patchers map[engine.ProtocolSchema]PatcherFunc
}

func (c *StatePatcherConfig) validate() error {
	for schema, fn := range c.Patchers {
		if fn == nil {
			return fmt.Errorf("config: patcher for schema %q cannot be nil", schema)
		}
	}
	return nil
}

type StatePatcher struct {
	patchers map[engine.ProtocolSchema]PatcherFunc
}

func NewStatePatcher(cfg *StatePatcherConfig) (*StatePatcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &StatePatcher{patchers: maps.Clone(cfg.Patchers)}, nil
}

// Patch returns the state at diff.ToCheckpoint. Protocols absent from the
// diff are carried over by reference; the rest are replaced by their
// patcher's output, with meta taken from the diff.
func (p *StatePatcher) Patch(prev *engine.State, diff *differ.StateDiff) (*engine.State, error) {
	if prev == nil {
		return nil, errors.New("patcher: previous state is nil")
	}
	if prev.Checkpoint != diff.FromCheckpoint {
		return nil, fmt.Errorf("%w: state at %d, diff from %d", ErrCheckpointMismatch, prev.Checkpoint, diff.FromCheckpoint)
	}

	protocols := make(map[engine.ProtocolID]engine.ProtocolState, len(prev.Protocols)+len(diff.Protocols))
	maps.Copy(protocols, prev.Protocols)

	for id, pd := range diff.Protocols {
		fn, ok := p.patchers[pd.Schema]
		if !ok {
			return nil, fmt.Errorf("%w %q (protocol %s)", ErrUnknownSchema, pd.Schema, id)
		}

		var prevData any
		if old, ok := prev.Protocols[id]; ok {
			if old.Schema != pd.Schema {
				return nil, fmt.Errorf("%w: %s from %s to %s", ErrSchemaChanged, id, old.Schema, pd.Schema)
			}
			prevData = old.Data
		}

		data, err := fn(prevData, pd.Data)
		if err != nil {
			return nil, fmt.Errorf("patcher: protocol %s: %w", id, err)
		}
		protocols[id] = engine.ProtocolState{
			Meta:   pd.Meta,
			Schema: pd.Schema,
			Data:   data,
			Error:  pd.Error,
		}
	}

	return &engine.State{
		Checkpoint: diff.ToCheckpoint,
		Timestamp:  diff.Timestamp,
		Protocols:  protocols,
	}, nil
}
