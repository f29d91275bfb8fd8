package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twinterview/backend/internal/model/chat"
	"github.com/twinterview/backend/internal/store"
	"github.com/twinterview/backend/pkg/utils"
)

// Handler records the employer's end-of-call rating.
type Handler struct {
	store store.Store
}

// New creates the feedback handler.
func New(st store.Store) *Handler {
	return &Handler{store: st}
}

// RegisterRoutes registers the feedback route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/feedback", h.handleSubmit)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID   string `json:"sessionId"`
		Rating      int    `json:"rating"`
		CommentText string `json:"commentText"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" || payload.Rating == 0 {
		utils.RespondError(w, http.StatusBadRequest, "sessionId and rating are required")
		return
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		utils.RespondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	saved, err := h.store.SaveFeedback(r.Context(), chat.Feedback{
		SessionID: payload.SessionID,
		Rating:    payload.Rating,
		Comment:   payload.CommentText,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.RespondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, store.ErrDuplicateFeedback):
			utils.RespondError(w, http.StatusBadRequest, "feedback already submitted for this session")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to save feedback")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, saved)
}
