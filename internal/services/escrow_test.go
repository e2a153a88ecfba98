package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kazihub/backend/internal/ledger"
	"github.com/kazihub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// CountryStore mock
// ---------------------------------------------------------------------------

type mockCountries struct {
	countries map[string]*models.Country
	accounts  map[string][]*models.EscrowAccount
}

func newMockCountries() *mockCountries {
	return &mockCountries{
		countries: make(map[string]*models.Country),
		accounts:  make(map[string][]*models.EscrowAccount),
	}
}

func (m *mockCountries) GetByCode(_ context.Context, code string) (*models.Country, error) {
	c, ok := m.countries[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCountries) ListActiveEscrowAccounts(_ context.Context, countryCode string) ([]*models.EscrowAccount, error) {
	return m.accounts[countryCode], nil
}

func (m *mockCountries) add(country *models.Country, accounts ...*models.EscrowAccount) {
	m.countries[country.Code] = country
	m.accounts[country.Code] = accounts
}

func kenyaWithMobile() *mockCountries {
	m := newMockCountries()
	m.add(
		&models.Country{Code: "KE", Name: "Kenya", CurrencySymbol: "KSh"},
		&models.EscrowAccount{
			ID:          uuid.New(),
			CountryCode: "KE",
			AccountName: "KaziHub Escrow KE",
			AccountType: models.EscrowAccountMobile,
			Provider:    "M-Pesa",
			PhoneNumber: "+254700000001",
			IsActive:    true,
		},
	)
	return m
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCreatePurchaseRequest_Pricing(t *testing.T) {
	// Amount due is the package price plus a 3% processing fee rounded
	// up to the cent.
	cases := []struct {
		packageType string
		wantTokens  int
		wantCents   int64
	}{
		{"starter", 10, 515},
		{"standard", 25, 1030},
		{"pro", 60, 1854},
	}
	for _, tc := range cases {
		buyer := uuid.New()
		led := newFakeLedger()
		led.balances[buyer] = 0
		coord := NewEscrowCoordinator(led, kenyaWithMobile())

		req, err := coord.CreatePurchaseRequest(context.Background(), buyer, tc.packageType, "KE")
		if err != nil {
			t.Fatalf("%s: CreatePurchaseRequest: %v", tc.packageType, err)
		}
		if req.Tokens != tc.wantTokens {
			t.Errorf("%s: tokens: got %d, want %d", tc.packageType, req.Tokens, tc.wantTokens)
		}
		if req.AmountDueCents != tc.wantCents {
			t.Errorf("%s: amount due: got %d, want %d", tc.packageType, req.AmountDueCents, tc.wantCents)
		}

		// The purchase stays pending: no tokens until confirmation.
		if balance, _ := led.GetBalance(context.Background(), buyer); balance != 0 {
			t.Errorf("%s: balance before confirmation: got %d, want 0", tc.packageType, balance)
		}
	}
}

func TestCreatePurchaseRequest_Reference(t *testing.T) {
	buyer := uuid.New()
	led := newFakeLedger()
	coord := NewEscrowCoordinator(led, kenyaWithMobile())

	req, err := coord.CreatePurchaseRequest(context.Background(), buyer, "starter", "KE")
	if err != nil {
		t.Fatalf("CreatePurchaseRequest: %v", err)
	}

	want := "KZH-" + strings.ToUpper(req.TransactionID.String()[:8])
	if req.Reference != want {
		t.Errorf("reference: got %q, want %q", req.Reference, want)
	}
	if !strings.Contains(req.Instructions, req.Reference) {
		t.Error("instructions should quote the payment reference")
	}
}

func TestCreatePurchaseRequest_Instructions(t *testing.T) {
	buyer := uuid.New()

	mobile := kenyaWithMobile()
	coord := NewEscrowCoordinator(newFakeLedger(), mobile)
	req, err := coord.CreatePurchaseRequest(context.Background(), buyer, "starter", "KE")
	if err != nil {
		t.Fatalf("mobile: %v", err)
	}
	if !strings.Contains(req.Instructions, "M-Pesa") || !strings.Contains(req.Instructions, "+254700000001") {
		t.Errorf("mobile instructions should name provider and number, got: %q", req.Instructions)
	}
	if !strings.Contains(req.Instructions, "KSh5.15") {
		t.Errorf("instructions should state the amount due, got: %q", req.Instructions)
	}

	bank := newMockCountries()
	bank.add(
		&models.Country{Code: "TZ", Name: "Tanzania", CurrencySymbol: "TSh"},
		&models.EscrowAccount{
			ID:            uuid.New(),
			CountryCode:   "TZ",
			AccountName:   "KaziHub Escrow TZ",
			AccountNumber: "0123456789",
			AccountType:   models.EscrowAccountBank,
			IsActive:      true,
		},
	)
	coord = NewEscrowCoordinator(newFakeLedger(), bank)
	req, err = coord.CreatePurchaseRequest(context.Background(), buyer, "starter", "TZ")
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	if !strings.Contains(req.Instructions, "0123456789") {
		t.Errorf("bank instructions should name the account number, got: %q", req.Instructions)
	}
}

func TestCreatePurchaseRequest_Errors(t *testing.T) {
	buyer := uuid.New()
	ctx := context.Background()

	coord := NewEscrowCoordinator(newFakeLedger(), kenyaWithMobile())
	if _, err := coord.CreatePurchaseRequest(ctx, buyer, "mega", "KE"); !errors.Is(err, ErrInvalidPackage) {
		t.Errorf("unknown package: expected ErrInvalidPackage, got: %v", err)
	}
	if _, err := coord.CreatePurchaseRequest(ctx, buyer, "starter", "XX"); !errors.Is(err, ErrNoEscrowAccountAvailable) {
		t.Errorf("unknown country: expected ErrNoEscrowAccountAvailable, got: %v", err)
	}

	// A configured country with no active accounts is equally a dead end.
	empty := newMockCountries()
	empty.add(&models.Country{Code: "UG", Name: "Uganda", CurrencySymbol: "USh"})
	coord = NewEscrowCoordinator(newFakeLedger(), empty)
	if _, err := coord.CreatePurchaseRequest(ctx, buyer, "starter", "UG"); !errors.Is(err, ErrNoEscrowAccountAvailable) {
		t.Errorf("no accounts: expected ErrNoEscrowAccountAvailable, got: %v", err)
	}
}

func TestConfirmPurchase(t *testing.T) {
	buyer := uuid.New()
	led := newFakeLedger()
	led.balances[buyer] = 0
	coord := NewEscrowCoordinator(led, kenyaWithMobile())
	ctx := context.Background()

	req, err := coord.CreatePurchaseRequest(ctx, buyer, "standard", "KE")
	if err != nil {
		t.Fatalf("CreatePurchaseRequest: %v", err)
	}

	confirmed, err := coord.ConfirmPurchase(ctx, req.TransactionID)
	if err != nil {
		t.Fatalf("ConfirmPurchase: %v", err)
	}
	if confirmed.Pending {
		t.Error("confirmed transaction should not be pending")
	}
	if balance, _ := led.GetBalance(ctx, buyer); balance != 25 {
		t.Errorf("balance after confirmation: got %d, want 25", balance)
	}

	// Re-verifying the same payment must not credit twice.
	if _, err := coord.ConfirmPurchase(ctx, req.TransactionID); !errors.Is(err, ledger.ErrAlreadyConfirmed) {
		t.Errorf("double confirm: expected ErrAlreadyConfirmed, got: %v", err)
	}
	if balance, _ := led.GetBalance(ctx, buyer); balance != 25 {
		t.Errorf("balance after double confirm: got %d, want 25", balance)
	}
}
