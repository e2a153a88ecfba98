package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kazihub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockAccounts struct {
	byEmail map[string]*models.Account
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{byEmail: make(map[string]*models.Account)}
}

func (m *mockAccounts) Create(_ context.Context, a *models.Account) error {
	if _, exists := m.byEmail[a.Email]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	cp := *a
	m.byEmail[a.Email] = &cp
	return nil
}

func (m *mockAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

type mockBonusLedger struct {
	credits map[uuid.UUID]int
	err     error
}

func (m *mockBonusLedger) Credit(_ context.Context, accountID uuid.UUID, amount int, reason string, _ *uuid.UUID) (*models.TokenTransaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.credits == nil {
		m.credits = make(map[uuid.UUID]int)
	}
	m.credits[accountID] += amount
	balance := m.credits[accountID]
	return &models.TokenTransaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Amount:       amount,
		Kind:         models.TokenTxCredit,
		Description:  reason,
		BalanceAfter: &balance,
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRegister_WelcomeBonus(t *testing.T) {
	accounts := newMockAccounts()
	led := &mockBonusLedger{}
	svc := NewService(accounts, led, discardLogger())

	acc, err := svc.Register(context.Background(),
		"client@example.com", "hunter2!", "Test Client", models.RoleClient, "KE")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acc.Tokens != WelcomeTokens {
		t.Errorf("tokens after signup: got %d, want %d", acc.Tokens, WelcomeTokens)
	}
	// The bonus goes through the ledger, not a direct balance write.
	if got := led.credits[acc.ID]; got != WelcomeTokens {
		t.Errorf("ledger credit: got %d, want %d", got, WelcomeTokens)
	}
	if acc.PasswordHash == "hunter2!" {
		t.Error("password must be stored hashed")
	}
}

func TestRegister_BonusCreditFailure(t *testing.T) {
	accounts := newMockAccounts()
	led := &mockBonusLedger{err: errors.New("ledger down")}
	var logBuf bytes.Buffer
	svc := NewService(accounts, led, slog.New(slog.NewTextHandler(&logBuf, nil)))

	acc, err := svc.Register(context.Background(),
		"client@example.com", "hunter2!", "Test Client", models.RoleClient, "KE")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// The account exists but got no bonus; the failure must be logged
	// with the account id so an operator can grant it manually.
	if acc.Tokens != 0 {
		t.Errorf("tokens after failed bonus: got %d, want 0", acc.Tokens)
	}
	logged := logBuf.String()
	if !strings.Contains(logged, "welcome bonus credit failed") {
		t.Errorf("expected the bonus failure to be logged, got: %q", logged)
	}
	if !strings.Contains(logged, acc.ID.String()) {
		t.Errorf("log line should carry the account id, got: %q", logged)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockAccounts(), &mockBonusLedger{}, discardLogger())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "pw", "A", models.RoleClient, "KE"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "dup@example.com", "pw", "B", models.RoleFreelancer, "KE")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got: %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := NewService(newMockAccounts(), &mockBonusLedger{}, discardLogger())
	if _, err := svc.Register(context.Background(), "x@example.com", "pw", "X", "admin", "KE"); err == nil {
		t.Error("expected an error for an unknown role")
	}
}

func TestLoginAndValidateToken(t *testing.T) {
	svc := NewService(newMockAccounts(), &mockBonusLedger{}, discardLogger())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "dev@example.com", "s3cret", "Dev", models.RoleFreelancer, "TZ")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, acc, err := svc.Login(ctx, "dev@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if acc.ID != reg.ID {
		t.Error("login should return the registered account")
	}

	userID, role, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != reg.ID {
		t.Errorf("token subject: got %s, want %s", userID, reg.ID)
	}
	if role != models.RoleFreelancer {
		t.Errorf("token role: got %q, want freelancer", role)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := NewService(newMockAccounts(), &mockBonusLedger{}, discardLogger())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dev@example.com", "s3cret", "Dev", models.RoleClient, "KE"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "dev@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got: %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewService(newMockAccounts(), &mockBonusLedger{}, discardLogger())
	if _, _, err := svc.ValidateToken(context.Background(), "not-a-jwt"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}
