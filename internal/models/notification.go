package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the workflow engine.
const (
	NotificationProposalReceived = "proposal_received"
	NotificationProposalAccepted = "proposal_accepted"
)

type Notification struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
