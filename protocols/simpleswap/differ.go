package simpleswap

import (
	"cmp"
	"math/big"
	"slices"
)

// PoolSystemDiff is the delta between two pool views.
type PoolSystemDiff struct {
	Additions []Pool   `json:"additions,omitempty"`
	Updates   []Pool   `json:"updates,omitempty"`
	Deletions []uint64 `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d PoolSystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// Differ calculates the difference between two pool views keyed by pool ID.
// Only reserves and total shares are compared; token addresses of an ID never change.
// Results are ordered by pool ID.
func Differ(old, new []Pool) PoolSystemDiff {
	oldPoolsMap := make(map[uint64]Pool, len(old))
	for _, pool := range old {
		oldPoolsMap[pool.ID] = pool
	}

	newPoolsMap := make(map[uint64]Pool, len(new))
	for _, pool := range new {
		newPoolsMap[pool.ID] = pool
	}

	var additions []Pool
	var updates []Pool
	var deletions []uint64

	for newID, newPool := range newPoolsMap {
		oldPool, exists := oldPoolsMap[newID]
		if !exists {
			additions = append(additions, newPool)
			continue
		}
		if !bigEqual(oldPool.Reserve0, newPool.Reserve0) ||
			!bigEqual(oldPool.Reserve1, newPool.Reserve1) ||
			!bigEqual(oldPool.TotalShares, newPool.TotalShares) {
			updates = append(updates, newPool)
		}
	}

	for oldID := range oldPoolsMap {
		if _, exists := newPoolsMap[oldID]; !exists {
			deletions = append(deletions, oldID)
		}
	}

	byID := func(a, b Pool) int { return cmp.Compare(a.ID, b.ID) }
	slices.SortFunc(additions, byID)
	slices.SortFunc(updates, byID)
	slices.Sort(deletions)

	return PoolSystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
