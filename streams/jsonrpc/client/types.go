package client

import (
	"encoding/json"

	"github.com/defistate/simpleswap-go/engine"
)

// clientState mirrors engine.State with the protocol data left undecoded, so
// each view can be decoded by its own schema.
type clientState struct {
	Checkpoint uint64                                   `json:"checkpoint"`
	Timestamp  uint64                                   `json:"timestamp"`
	Protocols  map[engine.ProtocolID]clientProtocolData `json:"protocols"`
}

// clientProtocolData is the wire form of both engine.ProtocolState and
// differ.ProtocolDiff.
type clientProtocolData struct {
	Meta   engine.ProtocolMeta   `json:"meta"`
	Schema engine.ProtocolSchema `json:"schema"`
	Error  string                `json:"error,omitempty"`

	// Data is decoded later according to Schema.
	Data json.RawMessage `json:"data,omitempty"`
}

// clientStateDiff mirrors differ.StateDiff with the protocol diffs left undecoded.
type clientStateDiff struct {
	FromCheckpoint uint64                                   `json:"fromCheckpoint"`
	ToCheckpoint   uint64                                   `json:"toCheckpoint"`
	Timestamp      uint64                                   `json:"timestamp"`
	Protocols      map[engine.ProtocolID]clientProtocolData `json:"protocols"`
}
