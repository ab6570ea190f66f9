package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/draftdeck/internal/auth"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// events, if non-nil, backs GET /events and GET /ws.
func NewRouter(accounts *auth.Service, docs *documents.Service, events *sse.Broker) chi.Router {
	h := NewHandler(accounts, docs, events)

	r := chi.NewRouter()

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(accounts))

		// Projects.
		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/projects/{id}", h.GetProject)
		r.Delete("/projects/{id}", h.DeleteProject)
		r.Post("/projects/{id}/generate", h.Generate)
		r.Post("/projects/{id}/suggest_outline", h.SuggestOutline)
		r.Post("/projects/{id}/apply_outline", h.ApplyOutline)
		r.Get("/projects/{id}/exports", h.ListExports)
		r.Get("/projects/{id}/exports/{name}", h.DownloadExport)

		// Sections.
		r.Post("/refine", h.Refine)
		r.Post("/comment", h.Comment)
		r.Put("/sections/{id}", h.SaveSection)
		r.Get("/sections/{id}/comments", h.ListComments)
		r.Get("/sections/{id}/refinements", h.ListRefinements)

		r.Get("/export/{id}", h.Export)
		r.Get("/search", h.Search)

		if events != nil {
			r.Get("/events", h.Events)
			r.Get("/ws", h.WebSocket)
		}
	})

	return r
}

// Handler holds API route handlers.
type Handler struct {
	accounts *auth.Service
	docs     *documents.Service
	events   *sse.Broker
}

// NewHandler creates a new Handler.
func NewHandler(accounts *auth.Service, docs *documents.Service, events *sse.Broker) *Handler {
	return &Handler{accounts: accounts, docs: docs, events: events}
}
