package models

import (
	"time"

	"github.com/google/uuid"
)

// Opportunity types and statuses.
const (
	OpportunityTypeStandard = "standard"
	OpportunityTypePremium  = "premium"

	OpportunityStatusOpen       = "open"
	OpportunityStatusInProgress = "in_progress"
	OpportunityStatusCompleted  = "completed"
	OpportunityStatusCancelled  = "cancelled"
)

// Posting costs in tokens.
const (
	StandardOpportunityCost = 1
	PremiumOpportunityCost  = 2
	ProposalCost            = 1
)

type Opportunity struct {
	ID             uuid.UUID `json:"id"`
	ClientID       uuid.UUID `json:"client_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	BudgetMin      int       `json:"budget_min"`
	BudgetMax      int       `json:"budget_max"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	RequiredSkills []string  `json:"required_skills"`
	ProposalsCount int       `json:"proposals_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PostingCost returns the token cost of posting an opportunity of the
// given type.
func PostingCost(opportunityType string) int {
	if opportunityType == OpportunityTypePremium {
		return PremiumOpportunityCost
	}
	return StandardOpportunityCost
}
