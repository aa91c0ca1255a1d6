// Package stateops wires the per-schema differs, patchers and JSON decoders
// of the AMM node's published protocols into one facade.
package stateops

import (
	"encoding/json"
	"fmt"

	"github.com/defistate/simpleswap-go/differ"
	"github.com/defistate/simpleswap-go/engine"
	"github.com/defistate/simpleswap-go/patcher"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/defistate/simpleswap-go/protocols/tokenregistry"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// StateOps bundles both halves of the state stream:
// the differ, used by the node to turn consecutive snapshots into diffs,
// and the patcher, used by a client to rebuild the snapshot from a diff.
type StateOps struct {
	*differ.StateDiffer
	*patcher.StatePatcher
}

func NewStateOps(
	logger Logger,
	prometheusRegistry prometheus.Registerer,
) (*StateOps, error) {
	protocolDiffers := map[engine.ProtocolSchema]differ.ProtocolDiffer{
		tokenregistry.Schema: func(old, new any) (any, error) {
			return tokenregistry.Differ(old.([]tokenregistry.Token), new.([]tokenregistry.Token)), nil
		},
		simpleswap.Schema: func(old, new any) (any, error) {
			return simpleswap.Differ(old.([]simpleswap.Pool), new.([]simpleswap.Pool)), nil
		},
	}

	protocolPatchers := map[engine.ProtocolSchema]patcher.PatcherFunc{
		tokenregistry.Schema: func(prevState, diff any) (any, error) {
			return tokenregistry.Patcher(prevState.([]tokenregistry.Token), diff.(tokenregistry.TokenSystemDiff))
		},
		simpleswap.Schema: func(prevState, diff any) (any, error) {
			return simpleswap.Patcher(prevState.([]simpleswap.Pool), diff.(simpleswap.PoolSystemDiff))
		},
	}

	stateDiffer, err := differ.NewStateDiffer(&differ.StateDifferConfig{
		ProtocolDiffers: protocolDiffers,
		Logger:          logger,
		Registry:        prometheusRegistry,
	})
	if err != nil {
		return nil, err
	}

	statePatcher, err := patcher.NewStatePatcher(&patcher.StatePatcherConfig{
		Patchers: protocolPatchers,
	})
	if err != nil {
		return nil, err
	}

	return &StateOps{
		StateDiffer:  stateDiffer,
		StatePatcher: statePatcher,
	}, nil
}

func decode[T any](data json.RawMessage) (any, error) {
	var typed T
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return typed, nil
}

// DecodeStateJSON decodes a protocol view published under schema.
func (ops *StateOps) DecodeStateJSON(
	schema engine.ProtocolSchema,
	data json.RawMessage,
) (any, error) {
	switch schema {
	case tokenregistry.Schema:
		return decode[[]tokenregistry.Token](data)
	case simpleswap.Schema:
		return decode[[]simpleswap.Pool](data)
	default:
		return nil, fmt.Errorf("unknown schema %q", schema)
	}
}

// DecodeStateDiffJSON decodes a protocol diff published under schema.
func (ops *StateOps) DecodeStateDiffJSON(
	schema engine.ProtocolSchema,
	data json.RawMessage,
) (any, error) {
	switch schema {
	case tokenregistry.Schema:
		return decode[tokenregistry.TokenSystemDiff](data)
	case simpleswap.Schema:
		return decode[simpleswap.PoolSystemDiff](data)
	default:
		return nil, fmt.Errorf("unknown schema %q", schema)
	}
}

// Protocol IDs under which an AMM node publishes its views.
const (
	TokensProtocolID engine.ProtocolID = "tokens"
	PoolsProtocolID  engine.ProtocolID = "simpleswap"
)

// NewState assembles the published snapshot of a node at checkpoint.
func NewState(checkpoint, timestamp uint64, tokens []tokenregistry.Token, pools []simpleswap.Pool) *engine.State {
	return &engine.State{
		Checkpoint: checkpoint,
		Timestamp:  timestamp,
		Protocols: map[engine.ProtocolID]engine.ProtocolState{
			TokensProtocolID: {
				Meta:   engine.ProtocolMeta{Name: "Token Registry", Tags: []string{"assets"}},
				Schema: tokenregistry.Schema,
				Data:   tokens,
			},
			PoolsProtocolID: {
				Meta:   engine.ProtocolMeta{Name: "SimpleSwap", Tags: []string{"dex", "amm"}},
				Schema: simpleswap.Schema,
				Data:   pools,
			},
		},
	}
}
