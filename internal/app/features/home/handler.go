package home

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler serves the root liveness banner.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeRoot handles GET / with a small JSON banner so load balancers and
// humans poking the base URL can tell the service is up without touching
// the database.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service": "focushub",
		"status":  "running",
	})
}
