package tokenregistry

import (
	"cmp"
	"slices"
)

// Patcher constructs a new token view by applying diff to prevState. The
// result is ordered by token ID and shares no memory with its inputs.
func Patcher(prevState []Token, diff TokenSystemDiff) ([]Token, error) {
	newStateMap := make(map[uint64]Token, len(prevState))
	for _, token := range prevState {
		newStateMap[token.ID] = token.Clone()
	}

	for _, tokenIDToDelete := range diff.Deletions {
		delete(newStateMap, tokenIDToDelete)
	}

	for _, updatedToken := range diff.Updates {
		newStateMap[updatedToken.ID] = updatedToken.Clone()
	}

	for _, addedToken := range diff.Additions {
		newStateMap[addedToken.ID] = addedToken.Clone()
	}

	finalState := make([]Token, 0, len(newStateMap))
	for _, token := range newStateMap {
		finalState = append(finalState, token)
	}
	slices.SortFunc(finalState, func(a, b Token) int { return cmp.Compare(a.ID, b.ID) })

	return finalState, nil
}
