package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kazihub/backend/internal/middleware"
	"github.com/kazihub/backend/internal/models"
)

// NotificationReader is the read-only notification repository subset.
type NotificationReader interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
}

// NotificationHandler serves GET /api/v1/notifications.
type NotificationHandler struct {
	Notifications NotificationReader
	Logger        *slog.Logger
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.Notifications.ListByUserID(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("list notifications", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}
