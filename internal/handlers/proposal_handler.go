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

// ProposalReader is the read-only proposal repository subset.
type ProposalReader interface {
	ListByOpportunityID(ctx context.Context, opportunityID uuid.UUID) ([]*models.Proposal, error)
}

// ProposalHandler serves proposal submission and the terminal
// proposal transitions.
type ProposalHandler struct {
	Workflow      WorkflowService
	Opportunities OpportunityReader
	Proposals     ProposalReader
	Logger        *slog.Logger
}

type submitProposalRequest struct {
	CoverLetter       string `json:"cover_letter"`
	ProposedBudget    int    `json:"proposed_budget"`
	EstimatedDuration string `json:"estimated_duration"`
}

// Submit handles POST /api/v1/opportunities/{id}/proposals.
func (h *ProposalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	opportunityID, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid opportunity id"}`, http.StatusBadRequest)
		return
	}
	var req submitProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.ProposedBudget <= 0 {
		http.Error(w, `{"error":"proposed_budget must be > 0"}`, http.StatusBadRequest)
		return
	}

	prop, err := h.Workflow.SubmitProposal(r.Context(), services.Actor{ID: acc.ID, Role: acc.Role}, opportunityID, services.ProposalDetails{
		CoverLetter:       req.CoverLetter,
		ProposedBudget:    req.ProposedBudget,
		EstimatedDuration: req.EstimatedDuration,
	})
	if err != nil {
		writeDomainError(w, h.Logger, "submit proposal", err)
		return
	}
	writeJSON(w, http.StatusCreated, prop)
}

// ListByOpportunity handles GET /api/v1/opportunities/{id}/proposals.
// Only the posting client sees the proposal list.
func (h *ProposalHandler) ListByOpportunity(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	opportunityID, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid opportunity id"}`, http.StatusBadRequest)
		return
	}
	opp, err := h.Opportunities.GetByID(r.Context(), opportunityID)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("get opportunity", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if opp.ClientID != acc.ID {
		http.Error(w, `{"error":"not authorized"}`, http.StatusForbidden)
		return
	}
	list, err := h.Proposals.ListByOpportunityID(r.Context(), opportunityID)
	if err != nil {
		h.Logger.Error("list proposals", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Proposal{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Accept handles POST /api/v1/proposals/{id}/accept.
func (h *ProposalHandler) Accept(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	proposalID, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid proposal id"}`, http.StatusBadRequest)
		return
	}
	project, err := h.Workflow.AcceptProposal(r.Context(), services.Actor{ID: acc.ID, Role: acc.Role}, proposalID)
	if err != nil {
		writeDomainError(w, h.Logger, "accept proposal", err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// Reject handles POST /api/v1/proposals/{id}/reject.
func (h *ProposalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Workflow.RejectProposal, models.ProposalStatusRejected)
}

// Withdraw handles POST /api/v1/proposals/{id}/withdraw.
func (h *ProposalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Workflow.WithdrawProposal, models.ProposalStatusWithdrawn)
}

func (h *ProposalHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, services.Actor, uuid.UUID) error, status string) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	proposalID, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid proposal id"}`, http.StatusBadRequest)
		return
	}
	if err := op(r.Context(), services.Actor{ID: acc.ID, Role: acc.Role}, proposalID); err != nil {
		writeDomainError(w, h.Logger, "transition proposal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": proposalID.String(), "status": status})
}
