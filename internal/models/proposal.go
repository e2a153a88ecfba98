package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal statuses. All transitions out of pending are terminal.
const (
	ProposalStatusPending   = "pending"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusRejected  = "rejected"
	ProposalStatusWithdrawn = "withdrawn"
)

type Proposal struct {
	ID                uuid.UUID `json:"id"`
	OpportunityID     uuid.UUID `json:"opportunity_id"`
	FreelancerID      uuid.UUID `json:"freelancer_id"`
	CoverLetter       string    `json:"cover_letter"`
	ProposedBudget    int       `json:"proposed_budget"`
	EstimatedDuration string    `json:"estimated_duration"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
