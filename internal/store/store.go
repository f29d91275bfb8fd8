package store

import (
	"context"
	"errors"

	"github.com/twinterview/backend/internal/model/chat"
	"github.com/twinterview/backend/internal/model/twin"
)

var (
	// ErrNotFound covers missing twins, sessions and messages.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateFeedback is returned when a session already has feedback.
	ErrDuplicateFeedback = errors.New("feedback already submitted")
)

// Store is the persistence surface the pipeline consumes: point reads and
// writes plus ordered range scans by session. The schema is externally
// owned; implementations only map rows.
type Store interface {
	GetTwin(ctx context.Context, id string) (twin.Twin, error)
	GetTwinBySlug(ctx context.Context, slug string) (twin.Twin, error)
	ListAnswers(ctx context.Context, twinID string) ([]twin.Answer, error)

	CreateSession(ctx context.Context, session chat.Session) (chat.Session, error)
	GetSession(ctx context.Context, id string) (chat.Session, error)

	SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error)
	GetMessage(ctx context.Context, id string) (chat.Message, error)
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
	CountMessagesBySender(ctx context.Context, sessionID, sender string) (int, error)

	SaveFeedback(ctx context.Context, feedback chat.Feedback) (chat.Feedback, error)
}
