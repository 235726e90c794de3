// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for the user document endpoints.
// It is mounted under /api/users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upsert)
	r.Get("/{uid}", h.Get)
	r.Put("/{uid}", h.Update)
	r.Put("/{uid}/namaz", h.UpdateNamaz)
	r.Put("/{uid}/settings", h.UpdateSettings)
	return r
}
