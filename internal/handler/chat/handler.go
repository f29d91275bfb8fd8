package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twinterview/backend/internal/model/chat"
	"github.com/twinterview/backend/internal/store"
	"github.com/twinterview/backend/pkg/utils"
)

// Handler serves session creation and transcript reads.
type Handler struct {
	store store.Store
}

// New creates the chat handler.
func New(st store.Store) *Handler {
	return &Handler{store: st}
}

// RegisterRoutes registers session and transcript routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/messages", h.handleListMessages)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TwinSlug     string `json:"twinSlug"`
		EmployerName string `json:"employerName"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.TwinSlug == "" {
		utils.RespondError(w, http.StatusBadRequest, "twinSlug is required")
		return
	}

	tw, err := h.store.GetTwinBySlug(r.Context(), payload.TwinSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "twin not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to look up twin")
		return
	}

	session, err := h.store.CreateSession(r.Context(), chat.Session{
		TwinID:       tw.ID,
		EmployerName: payload.EmployerName,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	messages, err := h.store.ListMessages(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}
