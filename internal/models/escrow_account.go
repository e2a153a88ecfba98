package models

import (
	"github.com/google/uuid"
)

// Escrow account types.
const (
	EscrowAccountBank   = "bank"
	EscrowAccountMobile = "mobile"
)

// EscrowAccount is an off-platform account (bank or mobile wallet) that
// receives manual token-purchase payments for a given country.
type EscrowAccount struct {
	ID            uuid.UUID `json:"id"`
	CountryCode   string    `json:"country_code"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	AccountType   string    `json:"account_type"`
	Provider      string    `json:"provider,omitempty"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	IsActive      bool      `json:"is_active"`
}

// Country holds the configuration the escrow coordinator needs to
// render payment instructions.
type Country struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	CurrencySymbol string `json:"currency_symbol"`
}
