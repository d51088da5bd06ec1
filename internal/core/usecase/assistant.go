package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
	"github.com/vlad-alaukhov/Docibot/internal/core/ports"
)

// AssistantConfig tunes the conversational core. Zero values fall back to the
// defaults of the original bot (top-4 per index, top-3 shown, 200-rune
// excerpts, Telegram-sized message parts).
type AssistantConfig struct {
	TopPerIndex   int
	ResultLimit   int
	ExcerptRunes  int
	MaxPartSize   int
	HeaderReserve int
	HistoryLimit  int
}

func (c AssistantConfig) normalize() AssistantConfig {
	out := c
	if out.TopPerIndex <= 0 {
		out.TopPerIndex = DefaultTopPerIndex
	}
	if out.ResultLimit <= 0 {
		out.ResultLimit = DefaultResultLimit
	}
	if out.ExcerptRunes <= 0 {
		out.ExcerptRunes = 200
	}
	if out.MaxPartSize <= 0 {
		out.MaxPartSize = DefaultMaxPartSize
	}
	if out.HeaderReserve <= 0 {
		out.HeaderReserve = DefaultHeaderReserve
	}
	if out.HistoryLimit <= 0 {
		out.HistoryLimit = 10
	}
	return out
}

// Assistant is the session state machine: it owns the per-user conversational
// state and dispatches user actions to the searcher and the reconstructor.
type Assistant struct {
	cfg       AssistantConfig
	sessions  ports.SessionStore
	discovery ports.CategoryDiscovery
	loader    ports.IndexLoader
	searcher  *Searcher
	rebuilder *Reconstructor
	events    ports.EventPublisher    // optional
	history   ports.QueryHistoryStore // optional
	logger    *slog.Logger
}

func NewAssistant(
	cfg AssistantConfig,
	sessions ports.SessionStore,
	discovery ports.CategoryDiscovery,
	loader ports.IndexLoader,
	searcher *Searcher,
	rebuilder *Reconstructor,
	events ports.EventPublisher,
	history ports.QueryHistoryStore,
	logger *slog.Logger,
) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		cfg:       cfg.normalize(),
		sessions:  sessions,
		discovery: discovery,
		loader:    loader,
		searcher:  searcher,
		rebuilder: rebuilder,
		events:    events,
		history:   history,
		logger:    logger,
	}
}

func (a *Assistant) StartSession(ctx context.Context, userID string) ([]string, error) {
	categories, err := a.discovery.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	session, ok := a.sessions.Get(userID)
	if !ok {
		session = domain.NewSession(userID)
	} else {
		session.Reset()
	}
	session.State = domain.StateAwaitingCategory
	session.Touch()
	a.sessions.Put(session)

	return categories, nil
}

// SelectCategory loads every index found for the category, sequentially and
// with progress reporting. Indexes that fail to load are dropped; the whole
// selection fails only when none load, in which case the session falls back
// to Idle so the user can retry from the start.
func (a *Assistant) SelectCategory(ctx context.Context, userID, category string, progress ports.ProgressFunc) (int, error) {
	session, ok := a.sessions.Get(userID)
	if !ok {
		session = domain.NewSession(userID)
	}
	if session.State == domain.StateLoadingIndexes {
		return 0, domain.WrapError(domain.ErrInvalidState, "select category", errors.New("load already in progress"))
	}

	categories, err := a.discovery.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	if !contains(categories, category) {
		session.State = domain.StateAwaitingCategory
		session.Touch()
		a.sessions.Put(session)
		return 0, domain.WrapError(domain.ErrCategoryNotFound, "select category", fmt.Errorf("unknown category %q", category))
	}

	session.State = domain.StateLoadingIndexes
	session.Touch()
	a.sessions.Put(session)

	paths, err := a.discovery.ListIndexPaths(ctx, category)
	if err != nil || len(paths) == 0 {
		session.Reset()
		a.sessions.Put(session)
		if err == nil {
			err = errors.New("category has no indexes")
		}
		return 0, domain.WrapError(domain.ErrLoadFailed, "select category", err)
	}

	handles := make([]domain.IndexHandle, 0, len(paths))
	for i, path := range paths {
		handle, loadErr := a.loader.Load(ctx, path)
		if loadErr != nil {
			a.logger.Warn("index_load_failed", "path", path, "error", loadErr)
		} else {
			handles = append(handles, handle)
		}
		if progress != nil {
			progress(i+1, len(paths))
		}
	}
	if len(handles) == 0 {
		session.Reset()
		a.sessions.Put(session)
		return 0, domain.WrapError(domain.ErrLoadFailed, "select category", errors.New("no indexes loaded"))
	}

	session.Category = category
	session.Indexes = handles
	session.QueryPrefix = queryPrefixFor(handles)
	session.LastResults = nil
	session.State = domain.StateReady
	session.Touch()
	a.sessions.Put(session)

	a.publish(ctx, domain.SessionEvent{
		Type:     domain.EventCategoryLoaded,
		UserID:   userID,
		Category: category,
		Results:  len(handles),
	})
	return len(handles), nil
}

func (a *Assistant) SubmitQuery(ctx context.Context, userID, text string) ([]domain.ResultView, error) {
	session, ok := a.sessions.Get(userID)
	if !ok || !session.CanSearch() {
		return nil, domain.WrapError(domain.ErrInvalidState, "submit query", errors.New("no category loaded"))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit query", errors.New("empty query"))
	}

	results, err := a.searcher.Search(
		ctx,
		session.QueryPrefix+text,
		session.Indexes,
		a.cfg.TopPerIndex,
		a.cfg.ResultLimit,
		nil,
	)
	if err != nil {
		if !expectedKind(err) {
			// An unexpected failure must not leave the session wedged.
			session.Reset()
			a.sessions.Put(session)
		}
		return nil, err
	}

	session.LastResults = results
	session.State = domain.StateReady
	session.Touch()
	a.sessions.Put(session)

	a.publish(ctx, domain.SessionEvent{
		Type:     domain.EventQuerySubmitted,
		UserID:   userID,
		Category: session.Category,
		Query:    text,
		Results:  len(results),
	})
	a.record(ctx, domain.QueryRecord{
		UserID:   userID,
		Category: session.Category,
		Query:    text,
		Results:  len(results),
		AskedAt:  time.Now().UTC(),
	})

	views := make([]domain.ResultView, 0, len(results))
	for i, hit := range results {
		views = append(views, domain.ResultView{
			Rank:    i + 1,
			Score:   hit.Score,
			Title:   hit.Chunk.Metadata.Title,
			Excerpt: excerpt(hit.Chunk.DisplayContent(), a.cfg.ExcerptRunes),
		})
	}
	return views, nil
}

func (a *Assistant) SelectResult(ctx context.Context, userID string, rank int) (domain.DocumentView, error) {
	session, ok := a.sessions.Get(userID)
	if !ok || !session.CanSearch() {
		return domain.DocumentView{}, domain.WrapError(domain.ErrInvalidState, "select result", errors.New("no category loaded"))
	}
	if len(session.LastResults) == 0 {
		return domain.DocumentView{}, domain.WrapError(domain.ErrStaleSession, "select result", errors.New("no results to select from"))
	}
	if rank < 0 || rank >= len(session.LastResults) {
		return domain.DocumentView{}, domain.WrapError(domain.ErrStaleSession, "select result", fmt.Errorf("rank %d out of range", rank))
	}

	seed := session.LastResults[rank]
	doc, err := a.rebuilder.Reconstruct(ctx, seed.Chunk.ID, session.Indexes)
	if err != nil {
		return domain.DocumentView{}, fmt.Errorf("reconstruct document: %w", err)
	}
	if len(doc.Chunks) == 0 {
		return domain.DocumentView{}, domain.WrapError(domain.ErrStaleSession, "select result", errors.New("selected chunk no longer resolvable"))
	}

	parts := SegmentText(doc.Text(), a.cfg.MaxPartSize, a.cfg.HeaderReserve)

	session.State = domain.StateViewingResult
	session.Touch()
	a.sessions.Put(session)

	a.publish(ctx, domain.SessionEvent{
		Type:     domain.EventResultViewed,
		UserID:   userID,
		Category: session.Category,
		Results:  len(parts),
	})

	return domain.DocumentView{
		Title:       doc.Title,
		ElementType: doc.ElementType,
		Parts:       parts,
		TotalParts:  len(parts),
		BrokenLinks: doc.BrokenLinks,
	}, nil
}

func (a *Assistant) ResetSession(_ context.Context, userID string) error {
	a.sessions.Remove(userID)
	return nil
}

func (a *Assistant) QueryHistory(ctx context.Context, userID string, limit int) ([]domain.QueryRecord, error) {
	if a.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = a.cfg.HistoryLimit
	}
	records, err := a.history.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list query history: %w", err)
	}
	return records, nil
}

func (a *Assistant) publish(ctx context.Context, event domain.SessionEvent) {
	if a.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()
	if err := a.events.PublishSessionEvent(ctx, event); err != nil {
		a.logger.Warn("session_event_publish_failed", "type", string(event.Type), "error", err)
	}
}

func (a *Assistant) record(ctx context.Context, record domain.QueryRecord) {
	if a.history == nil {
		return
	}
	record.ID = uuid.NewString()
	if err := a.history.Append(ctx, record); err != nil {
		a.logger.Warn("query_history_append_failed", "error", err)
	}
}

// queryPrefixFor returns the e5-style query prefix when any loaded index was
// built with an asymmetric embedding model.
func queryPrefixFor(handles []domain.IndexHandle) string {
	for _, handle := range handles {
		if handle.QueryPassageAsymmetric() {
			return domain.QueryPrefix
		}
	}
	return ""
}

// expectedKind reports whether err belongs to the typed taxonomy of expected
// failures; anything else is treated as unexpected and resets the session.
func expectedKind(err error) bool {
	return domain.IsKind(err, domain.ErrInvalidState) ||
		domain.IsKind(err, domain.ErrStaleSession) ||
		domain.IsKind(err, domain.ErrCategoryNotFound) ||
		domain.IsKind(err, domain.ErrLoadFailed) ||
		domain.IsKind(err, domain.ErrAllIndexesFailed) ||
		domain.IsKind(err, domain.ErrInvalidInput) ||
		domain.IsKind(err, domain.ErrTemporary)
}

func excerpt(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
