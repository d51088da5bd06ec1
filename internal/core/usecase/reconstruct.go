package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

// ChunkOrder compares two chunk ids when restoring document order. The
// default lexical order assumes part numbers sort correctly as strings
// (e.g. zero-padded); indexes built with a different id convention can
// plug in their own comparator.
type ChunkOrder func(a, b string) bool

func LexicalChunkOrder(a, b string) bool { return a < b }

// Reconstructor assembles the full logical document behind one seed chunk by
// walking the explicit links between chunks, which may live in different
// indexes of the same category.
type Reconstructor struct {
	order  ChunkOrder
	logger *slog.Logger
}

func NewReconstructor(order ChunkOrder, logger *slog.Logger) *Reconstructor {
	if order == nil {
		order = LexicalChunkOrder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{order: order, logger: logger}
}

// Reconstruct runs a breadth-first traversal from seedID over the linked
// chunk graph. Each id is resolved by asking the handles in order; the first
// index storing it wins. Ids absent from every index are broken links: they
// are dropped from the document and only counted. The visited set makes the
// traversal terminate on cyclic or self-referential link lists.
//
// Collected chunks are re-sorted by the configured chunk order, since BFS
// discovery order follows links rather than document order.
func (r *Reconstructor) Reconstruct(
	ctx context.Context,
	seedID string,
	indexes []domain.IndexHandle,
) (domain.ReconstructedDocument, error) {
	var doc domain.ReconstructedDocument

	queue := []string{seedID}
	visited := make(map[string]struct{})

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			return doc, err
		}

		chunk, found := r.resolve(ctx, id, indexes)
		if !found {
			doc.BrokenLinks++
			r.logger.Warn("broken_chunk_link", "chunk_id", id)
			continue
		}

		if id == seedID {
			doc.Title = chunk.Metadata.Title
			doc.ElementType = chunk.Metadata.ElementType
		}
		doc.Chunks = append(doc.Chunks, chunk)

		for _, linked := range chunk.Metadata.Linked {
			if _, seen := visited[linked]; !seen {
				queue = append(queue, linked)
			}
		}
	}

	sort.SliceStable(doc.Chunks, func(i, j int) bool {
		return r.order(doc.Chunks[i].ID, doc.Chunks[j].ID)
	})
	return doc, nil
}

func (r *Reconstructor) resolve(ctx context.Context, chunkID string, indexes []domain.IndexHandle) (domain.Chunk, bool) {
	for _, index := range indexes {
		chunk, ok, err := index.LookupByID(ctx, chunkID)
		if err != nil {
			// A failing index degrades to a miss; the id may still
			// resolve in a later index.
			r.logger.Warn("chunk_lookup_failed",
				"index", index.Name(),
				"chunk_id", chunkID,
				"error", err,
			)
			continue
		}
		if ok {
			return chunk, true
		}
	}
	return domain.Chunk{}, false
}
