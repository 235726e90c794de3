// internal/app/features/collaboration/handler.go
package collaboration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	collabstore "github.com/dalemusser/focushub/internal/app/store/collaboration"
	"github.com/dalemusser/focushub/internal/app/system/mongoguard"
	"github.com/dalemusser/focushub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the collaboration endpoints under /api/collaboration.
type Handler struct {
	links *collabstore.Store
	log   *zap.Logger
}

// NewHandler constructs a collaboration Handler over the given database.
func NewHandler(db *mongo.Database, guard *mongoguard.Guard, logger *zap.Logger) *Handler {
	return &Handler{
		links: collabstore.New(db, guard, logger),
		log:   logger,
	}
}

// Invite handles POST /api/collaboration/invite. On success both users'
// documents carry a mirrored link; the mirror write is best-effort (see
// collabstore.Invite).
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InviterUID    string `json:"inviterUid"`
		InviteeEmail  string `json:"inviteeEmail"`
		InviteeName   string `json:"inviteeName"`
		InviteeAvatar string `json:"inviteeAvatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.InviterUID == "" || req.InviteeEmail == "" {
		writeError(w, http.StatusBadRequest, "inviterUid and inviteeEmail required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.links.Invite(ctx, req.InviterUID, req.InviteeEmail, req.InviteeName, req.InviteeAvatar)
	switch {
	case errors.Is(err, collabstore.ErrInviterNotFound):
		writeError(w, http.StatusNotFound, "Inviter not found")
	case errors.Is(err, collabstore.ErrInviteeNotFound):
		writeError(w, http.StatusNotFound, "Invitee not found")
	case errors.Is(err, collabstore.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "inviterUid and inviteeEmail required")
	case err != nil:
		h.storeError(w, "collaboration invite", err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// Remove handles POST /api/collaboration/remove. Removal is one-sided: the
// collaborator's own document keeps its link to the caller.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserUID           string `json:"userUid"`
		CollaboratorEmail string `json:"collaboratorEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserUID == "" || req.CollaboratorEmail == "" {
		writeError(w, http.StatusBadRequest, "userUid and collaboratorEmail required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.links.Remove(ctx, req.UserUID, req.CollaboratorEmail); err != nil {
		h.storeError(w, "collaboration remove", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// UpdateTasks handles POST /api/collaboration/update-tasks. A collaborator
// email with no matching link touches zero documents; the matched count in
// the response lets the caller detect that.
func (h *Handler) UpdateTasks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserUID           string    `json:"userUid"`
		CollaboratorEmail string    `json:"collaboratorEmail"`
		SharedTasks       *[]bson.M `json:"sharedTasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SharedTasks == nil {
		writeError(w, http.StatusBadRequest, "userUid, collaboratorEmail, sharedTasks required")
		return
	}
	if req.UserUID == "" || req.CollaboratorEmail == "" {
		writeError(w, http.StatusBadRequest, "userUid, collaboratorEmail, sharedTasks required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	matched, err := h.links.UpdateSharedTasks(ctx, req.UserUID, req.CollaboratorEmail, *req.SharedTasks)
	if err != nil {
		h.storeError(w, "collaboration update tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "matched": matched})
}

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
