package domain

import "time"

// QueryRecord is one persisted entry of a user's query history.
type QueryRecord struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Category string    `json:"category"`
	Query    string    `json:"query"`
	Results  int       `json:"results"`
	AskedAt  time.Time `json:"asked_at"`
}
