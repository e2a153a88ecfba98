package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kazihub/backend/internal/models"
)

// TokenPackage is an entry in the fixed purchase catalog.
type TokenPackage struct {
	Tokens     int
	PriceCents int64 // USD
}

// TokenPackages is the purchase catalog.
var TokenPackages = map[string]TokenPackage{
	"starter":  {Tokens: 10, PriceCents: 500},
	"standard": {Tokens: 25, PriceCents: 1000},
	"pro":      {Tokens: 60, PriceCents: 1800},
}

// processingFeePercent is added on top of the package price, rounded up
// to the cent.
const processingFeePercent = 3

// PurchaseLedger is the subset of the token ledger the escrow
// coordinator needs.
type PurchaseLedger interface {
	CreatePending(ctx context.Context, accountID uuid.UUID, tokens int, reason string) (*models.TokenTransaction, error)
	ConfirmPending(ctx context.Context, transactionID uuid.UUID) (*models.TokenTransaction, error)
}

// CountryStore supplies per-country escrow configuration maintained by
// an external collaborator.
type CountryStore interface {
	GetByCode(ctx context.Context, code string) (*models.Country, error)
	ListActiveEscrowAccounts(ctx context.Context, countryCode string) ([]*models.EscrowAccount, error)
}

// PurchaseRequest is what the buyer sees: a pending ledger transaction
// plus human-readable payment instructions for an off-platform escrow
// account.
type PurchaseRequest struct {
	TransactionID  uuid.UUID             `json:"transaction_id"`
	PackageType    string                `json:"package_type"`
	Tokens         int                   `json:"tokens"`
	AmountDueCents int64                 `json:"amount_due_cents"`
	CurrencySymbol string                `json:"currency_symbol"`
	Reference      string                `json:"reference"`
	Account        *models.EscrowAccount `json:"account"`
	Instructions   string                `json:"instructions"`
}

// EscrowCoordinator turns a token-package purchase intent into a
// pending ledger transaction and payment instructions. Settlement is
// manual: a human verifies the off-platform payment and confirms the
// transaction, which credits the balance.
type EscrowCoordinator struct {
	ledger    PurchaseLedger
	countries CountryStore
}

func NewEscrowCoordinator(ledgerSvc PurchaseLedger, countries CountryStore) *EscrowCoordinator {
	return &EscrowCoordinator{ledger: ledgerSvc, countries: countries}
}

func (c *EscrowCoordinator) CreatePurchaseRequest(ctx context.Context, accountID uuid.UUID, packageType, countryCode string) (*PurchaseRequest, error) {
	pkg, ok := TokenPackages[packageType]
	if !ok {
		return nil, ErrInvalidPackage
	}

	country, err := c.countries.GetByCode(ctx, countryCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoEscrowAccountAvailable
	}
	if err != nil {
		return nil, err
	}
	accounts, err := c.countries.ListActiveEscrowAccounts(ctx, countryCode)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNoEscrowAccountAvailable
	}
	account := accounts[0]

	record, err := c.ledger.CreatePending(ctx, accountID, pkg.Tokens, "token purchase ("+packageType+")")
	if err != nil {
		return nil, err
	}

	amountDue := pkg.PriceCents + processingFee(pkg.PriceCents)
	reference := PaymentReference(record.ID)
	return &PurchaseRequest{
		TransactionID:  record.ID,
		PackageType:    packageType,
		Tokens:         pkg.Tokens,
		AmountDueCents: amountDue,
		CurrencySymbol: country.CurrencySymbol,
		Reference:      reference,
		Account:        account,
		Instructions:   renderInstructions(account, country.CurrencySymbol, amountDue, reference),
	}, nil
}

// ConfirmPurchase posts the pending transaction after the escrow payment
// has been verified out of band. Idempotent on the transaction id.
func (c *EscrowCoordinator) ConfirmPurchase(ctx context.Context, transactionID uuid.UUID) (*models.TokenTransaction, error) {
	return c.ledger.ConfirmPending(ctx, transactionID)
}

// PaymentReference derives the deterministic payment reference from the
// pending transaction id.
func PaymentReference(transactionID uuid.UUID) string {
	return "KZH-" + strings.ToUpper(transactionID.String()[:8])
}

func processingFee(priceCents int64) int64 {
	return (priceCents*processingFeePercent + 99) / 100
}

func renderInstructions(account *models.EscrowAccount, symbol string, amountCents int64, reference string) string {
	amount := fmt.Sprintf("%s%d.%02d", symbol, amountCents/100, amountCents%100)
	if account.AccountType == models.EscrowAccountMobile {
		return fmt.Sprintf(
			"Send %s via %s to %s (%s). Use payment reference %s. Tokens are credited after the payment is verified.",
			amount, account.Provider, account.PhoneNumber, account.AccountName, reference)
	}
	return fmt.Sprintf(
		"Transfer %s to bank account %s (%s). Use payment reference %s. Tokens are credited after the payment is verified.",
		amount, account.AccountNumber, account.AccountName, reference)
}
