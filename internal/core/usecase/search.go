package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
	"github.com/vlad-alaukhov/Docibot/internal/core/ports"
)

// DefaultTopPerIndex is how many nearest chunks each index is asked for.
const DefaultTopPerIndex = 4

const defaultIndexTimeout = 15 * time.Second

// Searcher fans one query out over a set of index handles, collects the raw
// hits and delegates merging to RankHits.
type Searcher struct {
	embedder ports.Embedder
	timeout  time.Duration
	logger   *slog.Logger
}

func NewSearcher(embedder ports.Embedder, perIndexTimeout time.Duration, logger *slog.Logger) *Searcher {
	if perIndexTimeout <= 0 {
		perIndexTimeout = defaultIndexTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		embedder: embedder,
		timeout:  perIndexTimeout,
		logger:   logger,
	}
}

// Search embeds the query once and runs every index search concurrently; each
// call gets its own timeout so one slow index cannot block the rest. A single
// index failure only empties that index's contribution; the search fails as a
// whole only when every index fails.
//
// Hits are flattened in index order before ranking, which keeps duplicate
// resolution deterministic.
func (s *Searcher) Search(
	ctx context.Context,
	query string,
	indexes []domain.IndexHandle,
	k, limit int,
	progress ports.ProgressFunc,
) ([]domain.ScoredHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("empty query"))
	}
	if len(indexes) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("no indexes loaded"))
	}
	if k < 1 {
		k = DefaultTopPerIndex
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "embed query", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		perIndex  = make([][]domain.ScoredHit, len(indexes))
		completed int
		failures  int
		lastErr   error
	)

	for i, handle := range indexes {
		wg.Add(1)
		go func(slot int, index domain.IndexHandle) {
			defer wg.Done()

			searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			hits, searchErr := index.Search(searchCtx, vector, k)

			mu.Lock()
			defer mu.Unlock()
			if searchErr != nil {
				failures++
				lastErr = searchErr
				s.logger.Warn("index_search_failed",
					"index", index.Name(),
					"error", searchErr,
				)
			} else {
				perIndex[slot] = hits
			}
			completed++
			if progress != nil {
				progress(completed, len(indexes))
			}
		}(i, handle)
	}
	wg.Wait()

	if failures == len(indexes) {
		return nil, domain.WrapError(domain.ErrAllIndexesFailed, "search", lastErr)
	}

	merged := make([]domain.ScoredHit, 0, len(indexes)*k)
	for _, hits := range perIndex {
		merged = append(merged, hits...)
	}
	return RankHits(merged, limit), nil
}
