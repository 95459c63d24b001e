package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/backloghub/engine/internal/api/handlers"
	mw "github.com/backloghub/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret      []byte
	AuthHandler     *handlers.AuthHandler
	ProjectsHandler *handlers.ProjectsHandler
	VotesHandler    *handlers.VotesHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Submit)
				pr.Get("/stats", dep.ProjectsHandler.Stats)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Post("/{id}/reject", dep.ProjectsHandler.Reject)
				pr.Get("/{id}/files", dep.ProjectsHandler.Files)
				pr.Get("/{id}/voters", dep.VotesHandler.VoterList)
			})

			protected.Route("/backlogs", func(br chi.Router) {
				br.Get("/available", dep.ProjectsHandler.AvailableBacklogs)
			})

			protected.Post("/votes", dep.VotesHandler.Create)
		})
	})

	return r
}
