package differ

import "github.com/defistate/simpleswap-go/engine"

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type ProtocolDiff struct {
	Meta engine.ProtocolMeta `json:"meta"`

	// Schema is the decode contract for Data.
	// Examples:
	// "simpleswap/pools/PoolView@v1"
	// "simpleswap/tokens/TokenView@v1"
	Schema engine.ProtocolSchema `json:"schema"`

	// Data is the protocol diff, shaped by Schema.
	Data any `json:"data,omitempty"`

	// Error is populated if this protocol could not be captured for this checkpoint.
	Error string `json:"error,omitempty"`
}

// StateDiff summarises the changes from FromCheckpoint to ToCheckpoint.
// Protocols without changes are omitted.
type StateDiff struct {
	Timestamp      uint64                             `json:"timestamp"`
	FromCheckpoint uint64                             `json:"fromCheckpoint"`
	ToCheckpoint   uint64                             `json:"toCheckpoint"`
	Protocols      map[engine.ProtocolID]ProtocolDiff `json:"protocols"`
}

// IsEmpty reports whether the diff carries no protocol changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Protocols) == 0
}
