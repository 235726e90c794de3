// internal/app/features/users/handler.go
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/focushub/internal/app/store/users"
	"github.com/dalemusser/focushub/internal/app/system/mongoguard"
	"github.com/dalemusser/focushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the per-user document endpoints under /api/users.
type Handler struct {
	users *userstore.Store
	log   *zap.Logger
}

// NewHandler constructs a users Handler over the given database.
func NewHandler(db *mongo.Database, guard *mongoguard.Guard, logger *zap.Logger) *Handler {
	return &Handler{
		users: userstore.New(db, guard),
		log:   logger,
	}
}

// upsertRequest is the login/register payload. Identity is asserted by the
// caller; there is no authentication here.
type upsertRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Provider    string `json:"provider"`
}

// Upsert handles POST /api/users: create the document on first login,
// refresh profile fields and lastLogin on later ones.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "uid and email required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.users.UpsertIdentity(ctx, userstore.Identity{
		UID:         req.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Provider:    req.Provider,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrMissingIdentity) {
			writeError(w, http.StatusBadRequest, "uid and email required")
			return
		}
		h.storeError(w, "upsert user", err)
		return
	}

	if res.Created {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "created": true, "result": res})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": true, "result": res})
}

// Get handles GET /api/users/{uid} and returns the full document.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.storeError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Update handles PUT /api/users/{uid}: a generic partial update that
// replaces each named top-level field wholesale.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var fields bson.M
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.users.ReplaceFields(ctx, uid, fields)
	if err != nil {
		h.storeError(w, "update user fields", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

// UpdateNamaz handles PUT /api/users/{uid}/namaz. The body must carry a
// namaz array; anything else is rejected before any write happens.
func (h *Handler) UpdateNamaz(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var req struct {
		Namaz *[]bson.M `json:"namaz"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Namaz == nil {
		writeError(w, http.StatusBadRequest, "namaz must be array")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.users.ReplaceNamaz(ctx, uid, *req.Namaz)
	if err != nil {
		h.storeError(w, "replace namaz", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

// UpdateSettings handles PUT /api/users/{uid}/settings. The body must carry
// a settings object; anything else is rejected before any write happens.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var req struct {
		Settings bson.M `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Settings == nil {
		writeError(w, http.StatusBadRequest, "settings must be object")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.users.ReplaceSettings(ctx, uid, req.Settings)
	if err != nil {
		h.storeError(w, "replace settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

// storeError logs a failed store call and maps it onto the HTTP surface:
// unreachable database is 503, everything else 500.
func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op+" failed", zap.Error(err))
	if errors.Is(err, mongoguard.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
