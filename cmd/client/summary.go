package main

import (
	"fmt"

	"github.com/defistate/simpleswap-go/engine"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	poolindexer "github.com/defistate/simpleswap-go/protocols/simpleswap/indexer"
	"github.com/defistate/simpleswap-go/protocols/tokenregistry"
	"github.com/defistate/simpleswap-go/protocols/tokenregistry/indexer"
	"github.com/defistate/simpleswap-go/streams/jsonrpc/stateops"
)

type stateSummary struct {
	Checkpoint uint64
	Tokens     int
	Pools      []poolSummary
	// Unpooled lists the symbols of tokens that no pool holds.
	Unpooled []string
}

type poolSummary struct {
	ID          uint64
	Pair        string // "SYM0/SYM1", falling back to hex addresses
	Reserve0    string
	Reserve1    string
	TotalShares string
}

// summarize labels every pool in state with its token symbols.
func summarize(state *engine.State) (stateSummary, error) {
	summary := stateSummary{Checkpoint: state.Checkpoint}

	var tokens []tokenregistry.Token
	if ps, ok := state.Protocols[stateops.TokensProtocolID]; ok {
		if tokens, ok = ps.Data.([]tokenregistry.Token); !ok {
			return summary, fmt.Errorf("protocol %s: unexpected data %T", stateops.TokensProtocolID, ps.Data)
		}
	}
	labels := indexer.NewIndexableTokenSystem(tokens)
	summary.Tokens = len(tokens)

	var pools []simpleswap.Pool
	if ps, ok := state.Protocols[stateops.PoolsProtocolID]; ok {
		if pools, ok = ps.Data.([]simpleswap.Pool); !ok {
			return summary, fmt.Errorf("protocol %s: unexpected data %T", stateops.PoolsProtocolID, ps.Data)
		}
	}
	index := poolindexer.NewIndexableSimpleSwapSystem(pools)

	for _, t := range labels.All() {
		if len(index.ByToken(t.Address)) == 0 {
			summary.Unpooled = append(summary.Unpooled, labels.Label(t.Address))
		}
	}
	for _, p := range index.All() {
		summary.Pools = append(summary.Pools, poolSummary{
			ID:          p.ID,
			Pair:        labels.Label(p.Token0) + "/" + labels.Label(p.Token1),
			Reserve0:    p.Reserve0.String(),
			Reserve1:    p.Reserve1.String(),
			TotalShares: p.TotalShares.String(),
		})
	}
	return summary, nil
}
