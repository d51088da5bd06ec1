package domain

import "time"

// SessionState drives which conversational operation is valid next.
type SessionState string

const (
	StateIdle             SessionState = "idle"
	StateAwaitingCategory SessionState = "awaiting_category"
	StateLoadingIndexes   SessionState = "loading_indexes"
	StateReady            SessionState = "ready"
	StateViewingResult    SessionState = "viewing_result"
)

// Session holds one user's conversational and retrieval state. It is mutated
// only by operations triggered by that user, so no internal locking is needed
// as long as the session store provides per-key atomic access.
type Session struct {
	UserID      string
	State       SessionState
	Category    string
	Indexes     []IndexHandle
	QueryPrefix string
	LastResults []ScoredHit
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewSession(userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		UserID:    userID,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanSearch reports whether a query or a result selection is acceptable.
func (s *Session) CanSearch() bool {
	if len(s.Indexes) == 0 {
		return false
	}
	return s.State == StateReady || s.State == StateViewingResult
}

// Reset returns the session to Idle, dropping the category, loaded indexes
// and last results.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Category = ""
	s.Indexes = nil
	s.QueryPrefix = ""
	s.LastResults = nil
	s.Touch()
}

func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
