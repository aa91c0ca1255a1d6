// Package engine defines the snapshot types published by an AMM node: a
// State made of per-protocol views, each tagged with the schema that
// decodes it.
package engine

type ProtocolName string
type ProtocolID string

// ProtocolSchema defines the decode contract for a protocol's data.
type ProtocolSchema string

type ProtocolMeta struct {
	Name ProtocolName `json:"name"`           // human label
	Tags []string     `json:"tags,omitempty"` // "dex", "assets", etc.
}

type ProtocolState struct {
	Meta ProtocolMeta `json:"meta"`

	// Schema is the decode contract for Data.
	// Example:
	// "simpleswap/pools/PoolView@v1"
	Schema ProtocolSchema `json:"schema"`

	// Data is the protocol view, shaped by Schema.
	Data any `json:"data,omitempty"`

	// Error is populated if this protocol could not be captured for this checkpoint.
	Error string `json:"error,omitempty"`
}

// State is the main data structure broadcast to subscribers.
type State struct {
	// Checkpoint counts committed mutations; it only ever increases.
	Checkpoint uint64                       `json:"checkpoint"`
	Timestamp  uint64                       `json:"timestamp"` // unix nanoseconds when the snapshot was taken
	Protocols  map[ProtocolID]ProtocolState `json:"protocols"`
}

func (state *State) HasErrors() bool {
	for _, pr := range state.Protocols {
		if pr.Error != "" {
			return true
		}
	}
	return false
}
