package domain

import "time"

type SessionEventType string

const (
	EventCategoryLoaded SessionEventType = "category_loaded"
	EventQuerySubmitted SessionEventType = "query_submitted"
	EventResultViewed   SessionEventType = "result_viewed"
)

// SessionEvent is an audit record of one user action, published for the
// analytics worker. Carries no message text beyond the query itself.
type SessionEvent struct {
	ID         string           `json:"id"`
	Type       SessionEventType `json:"type"`
	UserID     string           `json:"user_id"`
	Category   string           `json:"category,omitempty"`
	Query      string           `json:"query,omitempty"`
	Results    int              `json:"results,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
