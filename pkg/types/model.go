package types

import "time"

// User represents a user of the system.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Admin bool   `json:"-"`
}

// Feedback represents feedback submitted by a user about a recommendation run.
type Feedback struct {
	ID        string    `json:"id"`
	Sentiment string    `json:"sentiment"`
	Comment   string    `json:"comment"`
	RunID     string    `json:"runID,omitempty"`
	UserID    string    `json:"userID"`
	Timestamp time.Time `json:"timestamp"`
}
