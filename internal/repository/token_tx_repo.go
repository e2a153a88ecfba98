package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kazihub/backend/internal/models"
)

type TokenTxRepo struct {
	pool *pgxpool.Pool
}

func NewTokenTxRepo(pool *pgxpool.Pool) *TokenTxRepo {
	return &TokenTxRepo{pool: pool}
}

// CreateTx appends a ledger row inside the given transaction.
func (r *TokenTxRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *models.TokenTransaction) error {
	return tx.QueryRow(ctx, `
		INSERT INTO token_transactions (id, account_id, amount, kind, description, related_id, related_tx_id, pending, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, t.ID, t.AccountID, t.Amount, t.Kind, t.Description, t.RelatedID, t.RelatedTxID, t.Pending, t.BalanceAfter).Scan(&t.CreatedAt)
}

func (r *TokenTxRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TokenTransaction, error) {
	var t models.TokenTransaction
	err := r.pool.QueryRow(ctx, `
		SELECT id, account_id, amount, kind, description, related_id, related_tx_id, pending, balance_after, created_at
		FROM token_transactions WHERE id = $1
	`, id).Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.Description, &t.RelatedID, &t.RelatedTxID, &t.Pending, &t.BalanceAfter, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenTxRepo) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.TokenTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, amount, kind, description, related_id, related_tx_id, pending, balance_after, created_at
		FROM token_transactions WHERE account_id = $1 ORDER BY created_at DESC, id DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.TokenTransaction
	for rows.Next() {
		var t models.TokenTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.Description, &t.RelatedID, &t.RelatedTxID, &t.Pending, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// ConfirmPendingTx flips a pending purchase to posted and returns the
// updated row. The `AND pending` guard makes confirmation idempotent: a
// second call finds no row and returns pgx.ErrNoRows.
func (r *TokenTxRepo) ConfirmPendingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.TokenTransaction, error) {
	var t models.TokenTransaction
	err := tx.QueryRow(ctx, `
		UPDATE token_transactions SET pending = FALSE
		WHERE id = $1 AND pending
		RETURNING id, account_id, amount, kind, description, related_id, related_tx_id, pending, balance_after, created_at
	`, id).Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.Description, &t.RelatedID, &t.RelatedTxID, &t.Pending, &t.BalanceAfter, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
