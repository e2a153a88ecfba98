package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kazihub/backend/internal/middleware"
	"github.com/kazihub/backend/internal/models"
	"github.com/kazihub/backend/internal/services"
)

// WorkflowService is the subset of the workflow engine the handlers use.
type WorkflowService interface {
	PostOpportunity(ctx context.Context, actor services.Actor, details services.OpportunityDetails) (*models.Opportunity, error)
	SubmitProposal(ctx context.Context, actor services.Actor, opportunityID uuid.UUID, details services.ProposalDetails) (*models.Proposal, error)
	AcceptProposal(ctx context.Context, actor services.Actor, proposalID uuid.UUID) (*models.Project, error)
	RejectProposal(ctx context.Context, actor services.Actor, proposalID uuid.UUID) error
	WithdrawProposal(ctx context.Context, actor services.Actor, proposalID uuid.UUID) error
	CancelOpportunity(ctx context.Context, actor services.Actor, opportunityID uuid.UUID) error
	CompleteOpportunity(ctx context.Context, actor services.Actor, opportunityID uuid.UUID) error
}

// OpportunityReader is the read-only opportunity repository subset.
type OpportunityReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	ListOpen(ctx context.Context) ([]*models.Opportunity, error)
	ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*models.Opportunity, error)
}

// OpportunityHandler serves /api/v1/opportunities.
type OpportunityHandler struct {
	Workflow      WorkflowService
	Opportunities OpportunityReader
	Logger        *slog.Logger
}

type createOpportunityRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	BudgetMin      int      `json:"budget_min"`
	BudgetMax      int      `json:"budget_max"`
	Type           string   `json:"type"`
	RequiredSkills []string `json:"required_skills"`
}

// Create handles POST /api/v1/opportunities.
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req createOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, `{"error":"title is required"}`, http.StatusBadRequest)
		return
	}
	if req.BudgetMin < 0 || req.BudgetMax < req.BudgetMin {
		http.Error(w, `{"error":"invalid budget range"}`, http.StatusBadRequest)
		return
	}

	opp, err := h.Workflow.PostOpportunity(r.Context(), services.Actor{ID: acc.ID, Role: acc.Role}, services.OpportunityDetails{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		Type:           req.Type,
		RequiredSkills: req.RequiredSkills,
	})
	if err != nil {
		writeDomainError(w, h.Logger, "post opportunity", err)
		return
	}
	writeJSON(w, http.StatusCreated, opp)
}

// List handles GET /api/v1/opportunities. `?mine=true` lists the
// client's own postings regardless of status.
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var (
		list []*models.Opportunity
		err  error
	)
	if r.URL.Query().Get("mine") == "true" {
		list, err = h.Opportunities.ListByClientID(r.Context(), acc.ID)
	} else {
		list, err = h.Opportunities.ListOpen(r.Context())
	}
	if err != nil {
		h.Logger.Error("list opportunities", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Opportunity{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/v1/opportunities/{id}.
func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid opportunity id"}`, http.StatusBadRequest)
		return
	}
	opp, err := h.Opportunities.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("get opportunity", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

// Cancel handles POST /api/v1/opportunities/{id}/cancel.
func (h *OpportunityHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Workflow.CancelOpportunity, models.OpportunityStatusCancelled)
}

// Complete handles POST /api/v1/opportunities/{id}/complete.
func (h *OpportunityHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Workflow.CompleteOpportunity, models.OpportunityStatusCompleted)
}

func (h *OpportunityHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, services.Actor, uuid.UUID) error, status string) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid opportunity id"}`, http.StatusBadRequest)
		return
	}
	if err := op(r.Context(), services.Actor{ID: acc.ID, Role: acc.Role}, id); err != nil {
		writeDomainError(w, h.Logger, "transition opportunity", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": status})
}
