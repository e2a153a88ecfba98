package models

import (
	"time"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	Tokens       int       `json:"tokens"`
	CountryCode  string    `json:"country_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
