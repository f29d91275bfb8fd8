package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	chatHandler "github.com/twinterview/backend/internal/handler/chat"
	feedbackHandler "github.com/twinterview/backend/internal/handler/feedback"
	twinHandler "github.com/twinterview/backend/internal/handler/twin"
	"github.com/twinterview/backend/internal/handler/voice"
	middlewarePkg "github.com/twinterview/backend/internal/middleware"
	"github.com/twinterview/backend/internal/relay"
	speechService "github.com/twinterview/backend/internal/service/speech"
	"github.com/twinterview/backend/internal/service/turn"
	"github.com/twinterview/backend/internal/store"
	"github.com/twinterview/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. turns and speechSvc may be
// nil when the corresponding vendor credentials are absent; the voice
// routes then answer 503 while the rest of the API stays up.
func NewRouter(
	st store.Store,
	turns *turn.Orchestrator,
	speechSvc *speechService.Service,
	relayProxy *relay.Proxy,
	gatherer prometheus.Gatherer,
	log *zap.SugaredLogger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		twinHandler.New(st).RegisterRoutes(api)
		chatHandler.New(st).RegisterRoutes(api)
		feedbackHandler.New(st).RegisterRoutes(api)

		unavailable := func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondError(w, http.StatusServiceUnavailable, "voice pipeline unavailable")
		}

		switch {
		case turns != nil && speechSvc != nil:
			voice.New(turns, speechSvc, st, relayProxy, log).RegisterRoutes(api)
		case turns != nil:
			voice.New(turns, nil, st, nil, log).RegisterTextRoutes(api)
			api.Post("/voice/turn-stream", unavailable)
			api.Post("/voice/turn", unavailable)
			api.Get("/voice/stream", unavailable)
		default:
			api.Post("/voice/turn-stream", unavailable)
			api.Post("/voice/turn", unavailable)
			api.Get("/voice/stream", unavailable)
			api.Post("/answer", unavailable)
		}
	})

	return r
}
