package simpleswap

import (
	"cmp"
	"fmt"
	"slices"
)

// Patcher builds a new pool view by applying diff to prevState. The result
// shares no memory with its inputs and is ordered by pool ID.
func Patcher(prevState []Pool, diff PoolSystemDiff) ([]Pool, error) {
	newStateMap := make(map[uint64]Pool, len(prevState))
	for _, pool := range prevState {
		newStateMap[pool.ID] = pool.Clone()
	}

	for _, poolIDToDelete := range diff.Deletions {
		delete(newStateMap, poolIDToDelete)
	}

	for _, updatedPool := range diff.Updates {
		if _, exists := newStateMap[updatedPool.ID]; !exists {
			return nil, fmt.Errorf("update for unknown pool %d", updatedPool.ID)
		}
		newStateMap[updatedPool.ID] = updatedPool.Clone()
	}

	for _, addedPool := range diff.Additions {
		newStateMap[addedPool.ID] = addedPool.Clone()
	}

	finalState := make([]Pool, 0, len(newStateMap))
	for _, pool := range newStateMap {
		finalState = append(finalState, pool)
	}
	slices.SortFunc(finalState, func(a, b Pool) int { return cmp.Compare(a.ID, b.ID) })

	return finalState, nil
}
