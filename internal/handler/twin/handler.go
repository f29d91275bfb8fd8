package twin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twinterview/backend/internal/model/twin"
	"github.com/twinterview/backend/internal/store"
	"github.com/twinterview/backend/pkg/utils"
)

// Handler serves the public twin profile used by the interview page.
type Handler struct {
	store store.Store
}

// New creates the twin handler.
func New(st store.Store) *Handler {
	return &Handler{store: st}
}

// RegisterRoutes registers twin lookup routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/twins/{slug}", h.handleGetBySlug)
}

// publicProfile hides the owner reference and the raw voice identifier;
// callers only need to know whether voice turns will work.
type publicProfile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	RoleTitle       string   `json:"roleTitle"`
	YearsExperience int      `json:"yearsExperience"`
	Skills          []string `json:"skills"`
	Bio             string   `json:"bio"`
	PublicSlug      string   `json:"publicSlug"`
	HasVoice        bool     `json:"hasVoice"`
}

func toPublicProfile(t twin.Twin) publicProfile {
	return publicProfile{
		ID:              t.ID,
		Name:            t.Name,
		RoleTitle:       t.RoleTitle,
		YearsExperience: t.YearsExperience,
		Skills:          t.Skills,
		Bio:             t.Bio,
		PublicSlug:      t.PublicSlug,
		HasVoice:        t.HasVoice(),
	}
}

func (h *Handler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tw, err := h.store.GetTwinBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "twin not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to look up twin")
		return
	}

	utils.RespondJSON(w, http.StatusOK, toPublicProfile(tw))
}
