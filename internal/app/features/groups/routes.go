// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeGroupsList)
		pr.Post("/", h.HandleCreateGroup)
		pr.Delete("/{id}", h.HandleDeleteGroup)
		pr.Post("/{id}/complete", h.HandleCompleteTurn)
		pr.Post("/{id}/nudge", h.HandleNudge)
	})

	return r
}
