package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/kazihub/backend/internal/auth"
	"github.com/kazihub/backend/internal/handlers"
	"github.com/kazihub/backend/internal/middleware"
)

// RegisterRoutes adds all /api/v1 endpoints to the given mux.
// Middleware chain: JWTAuth -> handler, except the public auth routes
// and the verification-key-guarded purchase confirmation.
func RegisterRoutes(
	mux *http.ServeMux,
	authHandler *auth.Handler,
	opportunityHandler *handlers.OpportunityHandler,
	proposalHandler *handlers.ProposalHandler,
	tokenHandler *handlers.TokenHandler,
	projectHandler *handlers.ProjectHandler,
	notificationHandler *handlers.NotificationHandler,
	validator middleware.TokenValidator,
	accounts middleware.AccountLookup,
	verificationKey string,
) {
	authed := middleware.JWTAuth(validator, accounts)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("POST /api/v1/opportunities", authed(http.HandlerFunc(opportunityHandler.Create)))
	mux.Handle("GET /api/v1/opportunities", authed(http.HandlerFunc(opportunityHandler.List)))
	mux.Handle("GET /api/v1/opportunities/{id}", authed(http.HandlerFunc(opportunityHandler.Get)))
	mux.Handle("POST /api/v1/opportunities/{id}/cancel", authed(http.HandlerFunc(opportunityHandler.Cancel)))
	mux.Handle("POST /api/v1/opportunities/{id}/complete", authed(http.HandlerFunc(opportunityHandler.Complete)))

	mux.Handle("POST /api/v1/opportunities/{id}/proposals", authed(http.HandlerFunc(proposalHandler.Submit)))
	mux.Handle("GET /api/v1/opportunities/{id}/proposals", authed(http.HandlerFunc(proposalHandler.ListByOpportunity)))
	mux.Handle("POST /api/v1/proposals/{id}/accept", authed(http.HandlerFunc(proposalHandler.Accept)))
	mux.Handle("POST /api/v1/proposals/{id}/reject", authed(http.HandlerFunc(proposalHandler.Reject)))
	mux.Handle("POST /api/v1/proposals/{id}/withdraw", authed(http.HandlerFunc(proposalHandler.Withdraw)))

	mux.Handle("GET /api/v1/projects", authed(http.HandlerFunc(projectHandler.List)))
	mux.Handle("GET /api/v1/projects/{id}", authed(http.HandlerFunc(projectHandler.Get)))
	mux.Handle("GET /api/v1/notifications", authed(http.HandlerFunc(notificationHandler.List)))

	mux.Handle("GET /api/v1/tokens/balance", authed(http.HandlerFunc(tokenHandler.Balance)))
	mux.Handle("GET /api/v1/tokens/transactions", authed(http.HandlerFunc(tokenHandler.Transactions)))
	mux.Handle("POST /api/v1/tokens/purchase", authed(http.HandlerFunc(tokenHandler.Purchase)))

	// Payment verification is manual and out of band; the confirm
	// endpoint is guarded by a shared key instead of a user token.
	mux.Handle("POST /api/v1/tokens/purchase/{id}/confirm",
		verificationKeyOnly(verificationKey, http.HandlerFunc(tokenHandler.ConfirmPurchase)))
}

// verificationKeyOnly admits requests carrying the operator's
// verification key in X-Verification-Key. With no key configured the
// endpoint is disabled.
func verificationKeyOnly(key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key == "" {
			http.Error(w, `{"error":"verification disabled"}`, http.StatusForbidden)
			return
		}
		got := r.Header.Get("X-Verification-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			http.Error(w, `{"error":"invalid verification key"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
