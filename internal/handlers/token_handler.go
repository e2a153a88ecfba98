package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kazihub/backend/internal/middleware"
	"github.com/kazihub/backend/internal/models"
	"github.com/kazihub/backend/internal/services"
)

// LedgerReader is the read-only ledger subset for the token endpoints.
type LedgerReader interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (int, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*models.TokenTransaction, error)
}

// Purchaser is the escrow coordinator subset for the token endpoints.
type Purchaser interface {
	CreatePurchaseRequest(ctx context.Context, accountID uuid.UUID, packageType, countryCode string) (*services.PurchaseRequest, error)
	ConfirmPurchase(ctx context.Context, transactionID uuid.UUID) (*models.TokenTransaction, error)
}

// TokenHandler serves /api/v1/tokens.
type TokenHandler struct {
	Ledger LedgerReader
	Escrow Purchaser
	Logger *slog.Logger
}

// Balance handles GET /api/v1/tokens/balance.
func (h *TokenHandler) Balance(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	tokens, err := h.Ledger.GetBalance(r.Context(), acc.ID)
	if err != nil {
		writeDomainError(w, h.Logger, "get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"tokens": tokens})
}

// Transactions handles GET /api/v1/tokens/transactions, newest first.
func (h *TokenHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.Ledger.ListTransactions(r.Context(), acc.ID)
	if err != nil {
		writeDomainError(w, h.Logger, "list transactions", err)
		return
	}
	if list == nil {
		list = []*models.TokenTransaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

type purchaseRequest struct {
	PackageType string `json:"package_type"`
	CountryCode string `json:"country_code"`
}

// Purchase handles POST /api/v1/tokens/purchase.
func (h *TokenHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.CountryCode == "" {
		req.CountryCode = acc.CountryCode
	}
	request, err := h.Escrow.CreatePurchaseRequest(r.Context(), acc.ID, req.PackageType, req.CountryCode)
	if err != nil {
		writeDomainError(w, h.Logger, "create purchase request", err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

// ConfirmPurchase handles POST /api/v1/tokens/purchase/{id}/confirm —
// the manual-verification collaborator's entry point.
func (h *TokenHandler) ConfirmPurchase(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(r)
	if !ok {
		http.Error(w, `{"error":"invalid transaction id"}`, http.StatusBadRequest)
		return
	}
	record, err := h.Escrow.ConfirmPurchase(r.Context(), transactionID)
	if err != nil {
		writeDomainError(w, h.Logger, "confirm purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
