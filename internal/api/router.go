package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notecmd/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *service.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Registered actions.
	r.Get("/actions", h.ListActions)
	r.Post("/actions/{id}/run", h.RunAction)

	// Custom command editing.
	r.Get("/commands", h.ListCommands)
	r.Post("/commands", h.AddCommand)
	r.Get("/commands/{id}", h.GetCommand)
	r.Put("/commands/{id}", h.UpdateCommand)
	r.Delete("/commands/{id}", h.DeleteCommand)

	r.Get("/settings/placement", h.GetPlacement)
	r.Put("/settings/placement", h.SetPlacement)

	r.Post("/sequences/run", h.RunSequence)
	r.Get("/resolve", h.Resolve)
	r.Get("/runs", h.Runs)
	r.Get("/notes", h.Notes)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
