package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

type fakeIndex struct {
	name       string
	asymmetric bool
	hits       []domain.ScoredHit
	searchErr  error
	lookupErr  error
	chunks     map[string]domain.Chunk
}

func (f *fakeIndex) Name() string { return f.name }

func (f *fakeIndex) Search(_ context.Context, _ []float32, k int) ([]domain.ScoredHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) LookupByID(_ context.Context, chunkID string) (domain.Chunk, bool, error) {
	if f.lookupErr != nil {
		return domain.Chunk{}, false, f.lookupErr
	}
	chunk, ok := f.chunks[chunkID]
	return chunk, ok, nil
}

func (f *fakeIndex) QueryPassageAsymmetric() bool { return f.asymmetric }

type fakeEmbedder struct {
	lastQuery string
	err       error
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.lastQuery = text
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessionStore) Get(userID string) (*domain.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[userID]
	return s, ok
}

func (f *fakeSessionStore) Put(session *domain.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.UserID] = session
}

func (f *fakeSessionStore) Remove(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
}

type fakeDiscovery struct {
	categories []string
	paths      map[string][]string
	err        error
}

func (f *fakeDiscovery) ListCategories(context.Context) ([]string, error) {
	return f.categories, f.err
}

func (f *fakeDiscovery) ListIndexPaths(_ context.Context, category string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.paths[category], nil
}

type fakeLoader struct {
	handles map[string]domain.IndexHandle
}

func (f *fakeLoader) Load(_ context.Context, path string) (domain.IndexHandle, error) {
	handle, ok := f.handles[path]
	if !ok {
		return nil, fmt.Errorf("open index at %s: no such index", path)
	}
	return handle, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (f *fakeEvents) PublishSessionEvent(_ context.Context, event domain.SessionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fakeHistory struct {
	records []domain.QueryRecord
	err     error
}

func (f *fakeHistory) Append(_ context.Context, record domain.QueryRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) ListRecent(_ context.Context, userID string, limit int) ([]domain.QueryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.QueryRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.records[i].UserID == userID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}
