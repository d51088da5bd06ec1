// Package flatindex implements a brute-force cosine index over chunks.json
// files produced by the offline index builder. Vectors are L2-normalized at
// load time, so search is a dot product per stored chunk. The sizes involved
// (thousands of chunks per index) keep the linear scan well under a
// millisecond, which beats running a vector database next to the bot.
package flatindex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

type Index struct {
	name       string
	asymmetric bool
	dimension  int
	chunks     []domain.Chunk
	vectors    [][]float32
	byID       map[string]int
}

func (x *Index) Name() string { return x.name }

func (x *Index) QueryPassageAsymmetric() bool { return x.asymmetric }

func (x *Index) Search(ctx context.Context, queryVector []float32, k int) ([]domain.ScoredHit, error) {
	if len(queryVector) != x.dimension {
		return nil, fmt.Errorf("index %s: query dimension %d, want %d", x.name, len(queryVector), x.dimension)
	}
	if k <= 0 || len(x.chunks) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := normalize(queryVector)
	hits := make([]domain.ScoredHit, 0, len(x.chunks))
	for i, vec := range x.vectors {
		hits = append(hits, domain.ScoredHit{
			Chunk: x.chunks[i],
			Score: similarityScore(dot(query, vec)),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (x *Index) LookupByID(_ context.Context, chunkID string) (domain.Chunk, bool, error) {
	i, ok := x.byID[chunkID]
	if !ok {
		return domain.Chunk{}, false, nil
	}
	return x.chunks[i], true, nil
}

// similarityScore maps cosine similarity from [-1, 1] to [0, 1].
func similarityScore(cos float32) float64 {
	score := (1 + float64(cos)) / 2
	return math.Min(1, math.Max(0, score))
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
