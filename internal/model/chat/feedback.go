package chat

import "time"

// Feedback is the employer's end-of-call rating. At most one per session.
type Feedback struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"commentText,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
