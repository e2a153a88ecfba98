package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kazihub/backend/internal/ledger"
	"github.com/kazihub/backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the enumerated domain errors to status codes.
// Anything unrecognized is an internal failure: logged for the operator,
// generic for the user.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var compensation *services.CompensationFailedError
	if errors.As(err, &compensation) {
		logger.Error("compensation failed, manual reconciliation required",
			"op", op,
			"original_error", compensation.Original,
			"compensation_error", compensation.Compensation,
		)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	var insufficient *ledger.InsufficientTokensError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":     "insufficient tokens",
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.Is(err, services.ErrNotAuthorized):
		http.Error(w, `{"error":"not authorized"}`, http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrDuplicateProposal),
		errors.Is(err, services.ErrNoEscrowAccountAvailable),
		errors.Is(err, ledger.ErrAlreadyConfirmed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidPackage),
		errors.Is(err, services.ErrInvalidOpportunityType),
		errors.Is(err, ledger.ErrNonPositiveAmount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		logger.Error(op, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
