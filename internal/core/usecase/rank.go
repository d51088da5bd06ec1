package usecase

import (
	"sort"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

// DefaultResultLimit bounds the result list shown to a user.
const DefaultResultLimit = 3

// RankHits merges raw per-index hits into the final result list: duplicate
// chunk ids collapse into their best-scoring occurrence (ties keep the first
// seen, deterministic given a fixed index iteration order), the list is sorted
// score-descending with a stable sort and trimmed to limit.
//
// Empty input yields an empty list, not an error; callers treat that as
// "no matches". Re-ranking an already ranked list of size <= limit returns it
// unchanged.
func RankHits(hits []domain.ScoredHit, limit int) []domain.ScoredHit {
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	seen := make(map[string]int, len(hits))
	out := make([]domain.ScoredHit, 0, len(hits))
	for _, hit := range hits {
		pos, dup := seen[hit.Chunk.ID]
		if dup {
			if hit.Score > out[pos].Score {
				out[pos] = hit
			}
			continue
		}
		seen[hit.Chunk.ID] = len(out)
		out = append(out, hit)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
