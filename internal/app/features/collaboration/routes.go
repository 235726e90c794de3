// internal/app/features/collaboration/routes.go
package collaboration

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for the collaboration endpoints.
// It is mounted under /api/collaboration.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/invite", h.Invite)
	r.Post("/remove", h.Remove)
	r.Post("/update-tasks", h.UpdateTasks)
	return r
}
