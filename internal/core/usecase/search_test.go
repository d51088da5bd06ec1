package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

func TestSearchMergesAndRanksAcrossIndexes(t *testing.T) {
	first := &fakeIndex{name: "db1", hits: []domain.ScoredHit{
		hit("db1_a", 0.91), hit("db1_b", 0.40),
	}}
	second := &fakeIndex{name: "db2", hits: []domain.ScoredHit{
		hit("db2_a", 0.85), hit("db2_b", 0.80),
	}}

	searcher := NewSearcher(&fakeEmbedder{}, 0, nil)
	results, err := searcher.Search(context.Background(), "warranty period", []domain.IndexHandle{first, second}, 4, 3, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected top-3, got %d", len(results))
	}
	want := []struct {
		id    string
		score float64
	}{
		{"db1_a", 0.91}, {"db2_a", 0.85}, {"db2_b", 0.80},
	}
	for i, w := range want {
		if results[i].Chunk.ID != w.id || results[i].Score != w.score {
			t.Fatalf("position %d: expected %s@%v, got %s@%v",
				i, w.id, w.score, results[i].Chunk.ID, results[i].Score)
		}
	}
}

func TestSearchToleratesSingleIndexFailure(t *testing.T) {
	failing := &fakeIndex{name: "db1", searchErr: errors.New("index corrupted")}
	healthy := &fakeIndex{name: "db2", hits: []domain.ScoredHit{hit("ok", 0.75)}}

	searcher := NewSearcher(&fakeEmbedder{}, 0, nil)
	results, err := searcher.Search(context.Background(), "q", []domain.IndexHandle{failing, healthy}, 4, 3, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "ok" {
		t.Fatalf("expected the healthy index's hit, got %v", results)
	}
}

func TestSearchFailsWhenAllIndexesFail(t *testing.T) {
	indexes := []domain.IndexHandle{
		&fakeIndex{name: "db1", searchErr: errors.New("boom")},
		&fakeIndex{name: "db2", searchErr: errors.New("boom")},
	}

	searcher := NewSearcher(&fakeEmbedder{}, 0, nil)
	_, err := searcher.Search(context.Background(), "q", indexes, 4, 3, nil)
	if !domain.IsKind(err, domain.ErrAllIndexesFailed) {
		t.Fatalf("expected ErrAllIndexesFailed, got %v", err)
	}
}

func TestSearchRejectsEmptyQueryAndEmptyIndexSet(t *testing.T) {
	searcher := NewSearcher(&fakeEmbedder{}, 0, nil)

	if _, err := searcher.Search(context.Background(), "   ", []domain.IndexHandle{&fakeIndex{}}, 4, 3, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty query, got %v", err)
	}
	if _, err := searcher.Search(context.Background(), "q", nil, 4, 3, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty index set, got %v", err)
	}
}

func TestSearchEmbedFailureIsTemporary(t *testing.T) {
	searcher := NewSearcher(&fakeEmbedder{err: errors.New("model offline")}, 0, nil)
	_, err := searcher.Search(context.Background(), "q", []domain.IndexHandle{&fakeIndex{}}, 4, 3, nil)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestSearchProgressIsMonotonic(t *testing.T) {
	indexes := []domain.IndexHandle{
		&fakeIndex{name: "db1", hits: []domain.ScoredHit{hit("a", 0.9)}},
		&fakeIndex{name: "db2", hits: []domain.ScoredHit{hit("b", 0.8)}},
		&fakeIndex{name: "db3", searchErr: errors.New("boom")},
	}

	var mu sync.Mutex
	var seen []int
	progress := func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 3 {
			t.Errorf("expected total=3, got %d", total)
		}
		seen = append(seen, completed)
	}

	searcher := NewSearcher(&fakeEmbedder{}, 0, nil)
	if _, err := searcher.Search(context.Background(), "q", indexes, 4, 3, progress); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 progress calls, got %d", len(seen))
	}
	for i, c := range seen {
		if c != i+1 {
			t.Fatalf("progress not monotonic: %v", seen)
		}
	}
}

func TestSearchEmptyHitsAreNotAnError(t *testing.T) {
	searcher := NewSearcher(&fakeEmbedder{}, 0, nil)
	results, err := searcher.Search(context.Background(), "q", []domain.IndexHandle{&fakeIndex{name: "db1"}}, 4, 3, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no matches, got %d", len(results))
	}
}
