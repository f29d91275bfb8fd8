package chat

import "time"

// Message senders. The append-only message log ordered by CreatedAt is the
// canonical transcript of a session.
const (
	SenderEmployer = "employer"
	SenderTwin     = "twin"
)

// Message is one persisted turn half: an employer utterance or a twin reply.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"messageText"`
	CreatedAt time.Time `json:"createdAt"`
}
