package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kazihub/backend/internal/middleware"
	"github.com/kazihub/backend/internal/models"
)

// ProjectReader is the read-only project repository subset.
type ProjectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Project, error)
}

// ProjectHandler serves the read side of projects; projects are created
// by proposal acceptance.
type ProjectHandler struct {
	Projects ProjectReader
	Logger   *slog.Logger
}

// List handles GET /api/v1/projects — the caller's engagements on
// either side.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.Projects.ListByAccountID(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("list projects", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Project{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/v1/projects/{id}. Only the two parties may view.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	project, err := h.Projects.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("get project", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if project.ClientID != acc.ID && project.FreelancerID != acc.ID {
		http.Error(w, `{"error":"not authorized"}`, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
