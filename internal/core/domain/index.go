package domain

import "context"

// IndexHandle is one loaded vector index together with its chunk store.
// Handles are read-only once loaded and may be shared by every session that
// selected the same category; lifetime is managed by the loader.
type IndexHandle interface {
	Name() string

	// Search returns up to k chunks nearest to the query vector, scored by
	// cosine similarity mapped into [0,1].
	Search(ctx context.Context, queryVector []float32, k int) ([]ScoredHit, error)

	// LookupByID resolves a chunk by its id in O(1); ok is false when the
	// index does not store the chunk.
	LookupByID(ctx context.Context, chunkID string) (chunk Chunk, ok bool, err error)

	// QueryPassageAsymmetric reports whether the embedding model behind this
	// index distinguishes query and passage texts (e5 convention), which
	// requires prefixing user queries with QueryPrefix.
	QueryPassageAsymmetric() bool
}
