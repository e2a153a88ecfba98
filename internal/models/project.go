package models

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Project is created exactly once, when a proposal is accepted.
type Project struct {
	ID            uuid.UUID `json:"id"`
	OpportunityID uuid.UUID `json:"opportunity_id"`
	ProposalID    uuid.UUID `json:"proposal_id"`
	ClientID      uuid.UUID `json:"client_id"`
	FreelancerID  uuid.UUID `json:"freelancer_id"`
	Budget        int       `json:"budget"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
