package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	feedbackHandler "github.com/pitchcoach/backend/internal/handler/feedback"
	personaHandler "github.com/pitchcoach/backend/internal/handler/persona"
	relayHandler "github.com/pitchcoach/backend/internal/handler/relay"
	uploadHandler "github.com/pitchcoach/backend/internal/handler/upload"
	middlewarePkg "github.com/pitchcoach/backend/internal/middleware"
	personaModel "github.com/pitchcoach/backend/internal/model/persona"
	evalService "github.com/pitchcoach/backend/internal/service/eval"
	relayService "github.com/pitchcoach/backend/internal/service/relay"
	storageService "github.com/pitchcoach/backend/internal/service/storage"
	"github.com/pitchcoach/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. Services left nil (for
// example when their credentials are missing) simply don't get routes.
func NewRouter(personas personaModel.Store, relayMgr *relayService.Manager, evalSvc *evalService.Service, store *storageService.GCSStore, defaultPersona string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)

		if relayMgr != nil {
			relayHandler.New(relayMgr, personas, defaultPersona).RegisterRoutes(api)
		}

		if evalSvc != nil {
			feedbackHandler.New(evalSvc).RegisterRoutes(api)
		} else {
			api.Post("/feedback", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "evaluation unavailable")
			})
		}

		if store != nil {
			uploadHandler.New(store).RegisterRoutes(api)
		}
	})

	return r
}
