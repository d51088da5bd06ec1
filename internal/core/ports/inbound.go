package ports

import (
	"context"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

// ProgressFunc reports monotonically increasing completed/total steps of a
// long-running operation. Advisory only; implementations may pass nil.
type ProgressFunc func(completed, total int)

// Assistant is the conversational surface exposed to the transport adapter.
type Assistant interface {
	// StartSession creates or resets the user's session and returns the
	// categories available for selection.
	StartSession(ctx context.Context, userID string) ([]string, error)

	// SelectCategory loads every index of the category into the session,
	// reporting load progress. Returns the number of indexes loaded.
	SelectCategory(ctx context.Context, userID, category string, progress ProgressFunc) (int, error)

	// SubmitQuery runs the query against all loaded indexes and returns the
	// ranked result list.
	SubmitQuery(ctx context.Context, userID, text string) ([]domain.ResultView, error)

	// SelectResult reconstructs the full document behind one ranked result
	// and returns it segmented into transport-sized parts.
	SelectResult(ctx context.Context, userID string, rank int) (domain.DocumentView, error)

	// ResetSession discards the user's session entirely.
	ResetSession(ctx context.Context, userID string) error

	// QueryHistory returns the user's most recent queries, newest first.
	// Empty when history persistence is not configured.
	QueryHistory(ctx context.Context, userID string, limit int) ([]domain.QueryRecord, error)
}
