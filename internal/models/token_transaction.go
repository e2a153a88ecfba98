package models

import (
	"time"

	"github.com/google/uuid"
)

// Token transaction kinds.
const (
	TokenTxPurchase = "purchase"
	TokenTxCredit   = "credit"
	TokenTxDebit    = "debit"
	TokenTxRefund   = "refund"
)

// TokenTransaction is an append-only ledger row. Amount is signed:
// debits are negative, credits positive. Rows with Pending set are
// excluded from the balance until confirmed.
type TokenTransaction struct {
	ID           uuid.UUID  `json:"id"`
	AccountID    uuid.UUID  `json:"account_id"`
	Amount       int        `json:"amount"`
	Kind         string     `json:"kind"`
	Description  string     `json:"description"`
	RelatedID    *uuid.UUID `json:"related_id,omitempty"`
	RelatedTxID  *uuid.UUID `json:"related_tx_id,omitempty"`
	Pending      bool       `json:"pending"`
	BalanceAfter *int       `json:"balance_after,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
