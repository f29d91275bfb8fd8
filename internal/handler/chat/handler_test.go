package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/twinterview/backend/internal/model/chat"
	"github.com/twinterview/backend/internal/model/twin"
	"github.com/twinterview/backend/internal/store"
)

func setupRouter() (*chi.Mux, *store.MemoryStore, twin.Twin) {
	st := store.NewMemoryStore()
	tw := st.PutTwin(twin.Twin{Name: "Ada Lovelace", PublicSlug: "ada"})

	r := chi.NewRouter()
	New(st).RegisterRoutes(r)
	return r, st, tw
}

func TestCreateSessionValidSlug(t *testing.T) {
	r, _, _ := setupRouter()
	payload, _ := json.Marshal(map[string]string{
		"twinSlug":     "ada",
		"employerName": "Acme Corp",
	})

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session chatmodel.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.ID == "" || session.EmployerName != "Acme Corp" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestCreateSessionUnknownSlug(t *testing.T) {
	r, _, _ := setupRouter()
	payload, _ := json.Marshal(map[string]string{"twinSlug": "nobody"})

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCreateSessionMissingSlug(t *testing.T) {
	r, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestListMessagesOrdered(t *testing.T) {
	r, st, tw := setupRouter()
	session, _ := st.CreateSession(context.Background(), chatmodel.Session{TwinID: tw.ID})
	st.SaveMessage(context.Background(), chatmodel.Message{
		SessionID: session.ID, Sender: chatmodel.SenderEmployer, Text: "Hello?",
	})
	st.SaveMessage(context.Background(), chatmodel.Message{
		SessionID: session.ID, Sender: chatmodel.SenderTwin, Text: "Hi there.",
	})

	req := httptest.NewRequest(http.MethodGet, "/messages?session_id="+session.ID, nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var messages []chatmodel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(messages) != 2 || messages[0].Sender != chatmodel.SenderEmployer {
		t.Fatalf("unexpected transcript: %+v", messages)
	}
}

func TestListMessagesRequiresSessionID(t *testing.T) {
	r, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestListMessagesUnknownSession(t *testing.T) {
	r, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/messages?session_id=nope", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
