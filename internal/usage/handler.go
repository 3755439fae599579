// Package usage exposes the authenticated user's daily quota standing and
// session spend in one read-only endpoint.
package usage

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/api"
	"github.com/jobprep-ai/jobprep/internal/auth"
	"github.com/jobprep-ai/jobprep/internal/quota"
	"github.com/jobprep-ai/jobprep/internal/tracker"
)

type Handler struct {
	quotaSvc *quota.Service
	sessions *tracker.Manager
}

func NewHandler(quotaSvc *quota.Service, sessions *tracker.Manager) *Handler {
	return &Handler{
		quotaSvc: quotaSvc,
		sessions: sessions,
	}
}

type Response struct {
	Quota   *quota.Status    `json:"quota"`
	Session tracker.Snapshot `json:"session"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	status, err := h.quotaSvc.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, quota.ErrStoreUnavailable) {
			slog.Error("reading quota status", "error", err)
			api.HandleError(w, api.ErrQuotaUnavailable)
			return
		}
		slog.Error("reading quota status", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, Response{
		Quota:   status,
		Session: h.sessions.Ledger(userID).Snapshot(),
	})
}
