package ports

import (
	"context"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

// IndexLoader opens one pre-built vector index from its on-disk location.
// The persistence format is entirely the provider's concern.
type IndexLoader interface {
	Load(ctx context.Context, path string) (domain.IndexHandle, error)
}

// CategoryDiscovery enumerates knowledge-base categories and the index
// locations belonging to one category.
type CategoryDiscovery interface {
	ListCategories(ctx context.Context) ([]string, error)
	ListIndexPaths(ctx context.Context, category string) ([]string, error)
}

// SessionStore keeps per-user sessions with per-key atomic access.
type SessionStore interface {
	Get(userID string) (*domain.Session, bool)
	Put(session *domain.Session)
	Remove(userID string)
}

// Embedder turns query text into a vector compatible with the loaded indexes.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EventPublisher emits session audit events for downstream analytics.
// Publishing is best-effort; failures must not break the conversation.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event domain.SessionEvent) error
}

// QueryHistoryStore persists per-user query history.
type QueryHistoryStore interface {
	Append(ctx context.Context, record domain.QueryRecord) error
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.QueryRecord, error)
}
