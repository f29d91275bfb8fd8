package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/twinterview/backend/internal/model/chat"
	"github.com/twinterview/backend/internal/model/twin"
	"github.com/twinterview/backend/internal/store"
)

func seedSession(t *testing.T, s *store.MemoryStore) chat.Session {
	t.Helper()

	tw := s.PutTwin(twin.Twin{Name: "Ada", RoleTitle: "Engineer", PublicSlug: "ada", VoiceID: "voice-1"})
	session, err := s.CreateSession(context.Background(), chat.Session{TwinID: tw.ID, EmployerName: "Acme"})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	return session
}

func TestMemoryStoreSessionRoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	session := seedSession(t, s)

	got, err := s.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.EmployerName != "Acme" {
		t.Fatalf("unexpected employer name: %s", got.EmployerName)
	}
}

func TestMemoryStoreSessionNotFound(t *testing.T) {
	s := store.NewMemoryStore()

	if _, err := s.GetSession(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreCreateSessionUnknownTwin(t *testing.T) {
	s := store.NewMemoryStore()

	_, err := s.CreateSession(context.Background(), chat.Session{TwinID: "missing", EmployerName: "Acme"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreMessageRoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	session := seedSession(t, s)

	saved, err := s.SaveMessage(ctx, chat.Message{
		SessionID: session.ID,
		Sender:    chat.SenderEmployer,
		Text:      "Tell me about your last project",
	})
	if err != nil {
		t.Fatalf("SaveMessage err: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected message ID to be assigned")
	}

	messages, err := s.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Text != "Tell me about your last project" || messages[0].Sender != chat.SenderEmployer {
		t.Fatalf("message round trip mismatch: %+v", messages[0])
	}
}

func TestMemoryStoreTranscriptOrdering(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	session := seedSession(t, s)

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.SaveMessage(ctx, chat.Message{SessionID: session.ID, Sender: chat.SenderEmployer, Text: text}); err != nil {
			t.Fatalf("SaveMessage err: %v", err)
		}
	}

	messages, err := s.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	want := []string{"one", "two", "three"}
	for i, text := range want {
		if messages[i].Text != text {
			t.Fatalf("message %d out of order: got %s want %s", i, messages[i].Text, text)
		}
	}
}

func TestMemoryStoreCountMessagesBySender(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	session := seedSession(t, s)

	for i := 0; i < 3; i++ {
		if _, err := s.SaveMessage(ctx, chat.Message{SessionID: session.ID, Sender: chat.SenderEmployer, Text: "q"}); err != nil {
			t.Fatalf("SaveMessage err: %v", err)
		}
	}
	if _, err := s.SaveMessage(ctx, chat.Message{SessionID: session.ID, Sender: chat.SenderTwin, Text: "a"}); err != nil {
		t.Fatalf("SaveMessage err: %v", err)
	}

	count, err := s.CountMessagesBySender(ctx, session.ID, chat.SenderEmployer)
	if err != nil {
		t.Fatalf("CountMessagesBySender err: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 employer messages, got %d", count)
	}
}

func TestMemoryStoreFeedbackUniqueness(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	session := seedSession(t, s)

	first, err := s.SaveFeedback(ctx, chat.Feedback{SessionID: session.ID, Rating: 5, Comment: "great"})
	if err != nil {
		t.Fatalf("SaveFeedback err: %v", err)
	}

	_, err = s.SaveFeedback(ctx, chat.Feedback{SessionID: session.ID, Rating: 1})
	if !errors.Is(err, store.ErrDuplicateFeedback) {
		t.Fatalf("expected ErrDuplicateFeedback, got %v", err)
	}

	// First submission must be unchanged.
	if first.Rating != 5 || first.Comment != "great" {
		t.Fatalf("first feedback mutated: %+v", first)
	}
}

func TestMemoryStoreGetTwinBySlug(t *testing.T) {
	s := store.NewMemoryStore()
	tw := s.PutTwin(twin.Twin{Name: "Ada", PublicSlug: "ada-l"})

	got, err := s.GetTwinBySlug(context.Background(), "ada-l")
	if err != nil {
		t.Fatalf("GetTwinBySlug err: %v", err)
	}
	if got.ID != tw.ID {
		t.Fatalf("unexpected twin: %+v", got)
	}
}
