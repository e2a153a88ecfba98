package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kazihub/backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, name, role, password_hash, tokens, country_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, a.ID, a.Email, a.Name, a.Role, a.PasswordHash, a.Tokens, a.CountryCode).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, tokens, country_code, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.Tokens, &a.CountryCode, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, tokens, country_code, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.Tokens, &a.CountryCode, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetTokens returns the current token balance. pgx.ErrNoRows surfaces
// unchanged when the account does not exist.
func (r *AccountRepo) GetTokens(ctx context.Context, id uuid.UUID) (int, error) {
	var tokens int
	err := r.pool.QueryRow(ctx, `SELECT tokens FROM accounts WHERE id = $1`, id).Scan(&tokens)
	return tokens, err
}

// DeductTokens atomically deducts amount if tokens >= amount. Returns
// pgx.ErrNoRows when the balance is too low or the account is missing.
// Call within a transaction, paired with a ledger row insert.
func (r *AccountRepo) DeductTokens(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET tokens = tokens - $1, updated_at = now()
		WHERE id = $2 AND tokens >= $1
		RETURNING tokens
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// AddTokens adds amount to the account and returns the new balance.
func (r *AccountRepo) AddTokens(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET tokens = tokens + $1, updated_at = now()
		WHERE id = $2
		RETURNING tokens
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}
