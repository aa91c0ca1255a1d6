package tokenregistry

import (
	"cmp"
	"slices"
)

type TokenSystemDiff struct {
	Additions []Token  `json:"additions,omitempty"`
	Updates   []Token  `json:"updates,omitempty"`
	Deletions []uint64 `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d TokenSystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the difference between two token views keyed by token ID.
// Metadata is immutable once deployed, so only the supply is compared.
func Differ(old, new []Token) TokenSystemDiff {
	oldTokensMap := make(map[uint64]Token, len(old))
	for _, token := range old {
		oldTokensMap[token.ID] = token
	}

	newTokensMap := make(map[uint64]Token, len(new))
	for _, token := range new {
		newTokensMap[token.ID] = token
	}

	var additions []Token
	var updates []Token
	var deletions []uint64

	for newID, newToken := range newTokensMap {
		oldToken, exists := oldTokensMap[newID]
		if !exists {
			additions = append(additions, newToken)
			continue
		}
		if !supplyEqual(oldToken, newToken) {
			updates = append(updates, newToken)
		}
	}

	for oldID := range oldTokensMap {
		if _, exists := newTokensMap[oldID]; !exists {
			deletions = append(deletions, oldID)
		}
	}

	byID := func(a, b Token) int { return cmp.Compare(a.ID, b.ID) }
	slices.SortFunc(additions, byID)
	slices.SortFunc(updates, byID)
	slices.Sort(deletions)

	return TokenSystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}

func supplyEqual(a, b Token) bool {
	if a.TotalSupply == nil || b.TotalSupply == nil {
		return a.TotalSupply == b.TotalSupply
	}
	return a.TotalSupply.Cmp(b.TotalSupply) == 0
}
