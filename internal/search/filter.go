package search

import (
	"github.com/cfle/mtg-oracle/internal/corpus"
	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/vector"
)

// Filter applies the post-search stages to raw index candidates, in order:
//
//  1. drop the query card itself (excludeID),
//  2. drop candidates scoring strictly below minScore,
//  3. drop candidates failing the color identity predicate.
//
// The stage order is part of the contract: it keeps "why was this card
// dropped" answerable. Candidate order is preserved throughout; the output is
// a subsequence of the input with ranks assigned after filtering.
func Filter(store *corpus.Store, candidates []vector.Result, excludeID string, minScore float64, colors *models.ColorFilter) []*models.CardResult {
	results := make([]*models.CardResult, 0, len(candidates))
	for _, cand := range candidates {
		entry := store.At(cand.Row)
		if entry.Card.ID == excludeID {
			continue
		}
		if cand.Score < minScore {
			continue
		}
		if !colors.Matches(entry.Card.ColorIdentity) {
			continue
		}
		results = append(results, &models.CardResult{
			Card:  entry.Card,
			Score: cand.Score,
			Rank:  len(results) + 1,
		})
	}
	return results
}
