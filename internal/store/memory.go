package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twinterview/backend/internal/model/chat"
	"github.com/twinterview/backend/internal/model/twin"
)

// MemoryStore implements Store with in-memory maps. It backs tests and
// credential-less development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	twins    map[string]twin.Twin
	answers  map[string][]twin.Answer
	sessions map[string]chat.Session
	messages map[string][]chat.Message
	feedback map[string]chat.Feedback
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		twins:    make(map[string]twin.Twin),
		answers:  make(map[string][]twin.Answer),
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
		feedback: make(map[string]chat.Feedback),
	}
}

// PutTwin inserts or replaces a twin and returns it with an ID assigned.
func (s *MemoryStore) PutTwin(t twin.Twin) twin.Twin {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.twins[t.ID] = t
	return t
}

// PutAnswer appends a style example for a twin.
func (s *MemoryStore) PutAnswer(a twin.Answer) twin.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.answers[a.TwinID] = append(s.answers[a.TwinID], a)
	return a
}

// GetTwin retrieves a twin by identifier.
func (s *MemoryStore) GetTwin(_ context.Context, id string) (twin.Twin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.twins[id]
	if !ok {
		return twin.Twin{}, ErrNotFound
	}
	return t, nil
}

// GetTwinBySlug retrieves a twin by its public slug.
func (s *MemoryStore) GetTwinBySlug(_ context.Context, slug string) (twin.Twin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.twins {
		if t.PublicSlug == slug {
			return t, nil
		}
	}
	return twin.Twin{}, ErrNotFound
}

// ListAnswers returns the stored style examples for a twin in insertion order.
func (s *MemoryStore) ListAnswers(_ context.Context, twinID string) ([]twin.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers := s.answers[twinID]
	copied := make([]twin.Answer, len(answers))
	copy(copied, answers)
	return copied, nil
}

// CreateSession provisions a session bound to a twin.
func (s *MemoryStore) CreateSession(_ context.Context, session chat.Session) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.twins[session.TwinID]; !ok {
		return chat.Session{}, ErrNotFound
	}

	session.ID = uuid.NewString()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *MemoryStore) GetSession(_ context.Context, id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrNotFound
	}
	return session, nil
}

// SaveMessage appends a message to the session transcript.
func (s *MemoryStore) SaveMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// GetMessage retrieves a single message by identifier.
func (s *MemoryStore) GetMessage(_ context.Context, id string) (chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, msgs := range s.messages {
		for _, m := range msgs {
			if m.ID == id {
				return m, nil
			}
		}
	}
	return chat.Message{}, ErrNotFound
}

// ListMessages returns the session transcript ordered by creation time.
func (s *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].CreatedAt.Before(copied[j].CreatedAt)
	})
	return copied, nil
}

// CountMessagesBySender counts a session's messages from one sender.
func (s *MemoryStore) CountMessagesBySender(_ context.Context, sessionID, sender string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return 0, ErrNotFound
	}

	count := 0
	for _, m := range messages {
		if m.Sender == sender {
			count++
		}
	}
	return count, nil
}

// SaveFeedback records the employer's rating. At most one per session.
func (s *MemoryStore) SaveFeedback(_ context.Context, feedback chat.Feedback) (chat.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[feedback.SessionID]; !ok {
		return chat.Feedback{}, ErrNotFound
	}
	if _, ok := s.feedback[feedback.SessionID]; ok {
		return chat.Feedback{}, ErrDuplicateFeedback
	}

	feedback.ID = uuid.NewString()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	s.feedback[feedback.SessionID] = feedback
	return feedback, nil
}
