package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kazihub/backend/internal/models"
)

// Service is the authoritative owner of token balances and the
// append-only transaction log. Every balance mutation commits together
// with its ledger row, so balance == sum of non-pending amounts holds
// after every successful call.
type Service interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (int, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (*models.TokenTransaction, error)
	Debit(ctx context.Context, accountID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (*models.TokenTransaction, error)
	Reverse(ctx context.Context, transactionID uuid.UUID) (*models.TokenTransaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*models.TokenTransaction, error)

	// CreatePending records a purchase-kind transaction that does not
	// count toward the balance until ConfirmPending posts it.
	CreatePending(ctx context.Context, accountID uuid.UUID, tokens int, reason string) (*models.TokenTransaction, error)
	ConfirmPending(ctx context.Context, transactionID uuid.UUID) (*models.TokenTransaction, error)
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccountStore is the minimal account repository interface for the ledger.
type AccountStore interface {
	GetTokens(ctx context.Context, id uuid.UUID) (int, error)
	DeductTokens(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error)
	AddTokens(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error)
}

// TransactionStore is the minimal ledger-row repository interface.
type TransactionStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.TokenTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TokenTransaction, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.TokenTransaction, error)
	ConfirmPendingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.TokenTransaction, error)
}

type service struct {
	db       TxBeginner
	accounts AccountStore
	txs      TransactionStore
}

func NewService(db TxBeginner, accounts AccountStore, txs TransactionStore) Service {
	return &service{db: db, accounts: accounts, txs: txs}
}

var _ Service = (*service)(nil)

func (s *service) GetBalance(ctx context.Context, accountID uuid.UUID) (int, error) {
	tokens, err := s.accounts.GetTokens(ctx, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return tokens, err
}

func (s *service) Credit(ctx context.Context, accountID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (*models.TokenTransaction, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	newBalance, err := s.accounts.AddTokens(ctx, tx, accountID, amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	record := &models.TokenTransaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Amount:       amount,
		Kind:         models.TokenTxCredit,
		Description:  reason,
		RelatedID:    relatedID,
		BalanceAfter: &newBalance,
	}
	if err := s.txs.CreateTx(ctx, tx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}
	return record, nil
}

// Debit deducts amount with a single conditional update: the balance
// check and the decrement are one statement, so two concurrent debits
// against one remaining token cannot both succeed.
func (s *service) Debit(ctx context.Context, accountID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (*models.TokenTransaction, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	newBalance, err := s.accounts.DeductTokens(ctx, tx, accountID, amount)
	if errors.Is(err, pgx.ErrNoRows) {
		available, availErr := s.accounts.GetTokens(ctx, accountID)
		if errors.Is(availErr, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		if availErr != nil {
			return nil, availErr
		}
		return nil, &InsufficientTokensError{Required: amount, Available: available}
	}
	if err != nil {
		return nil, err
	}
	record := &models.TokenTransaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Amount:       -amount,
		Kind:         models.TokenTxDebit,
		Description:  reason,
		RelatedID:    relatedID,
		BalanceAfter: &newBalance,
	}
	if err := s.txs.CreateTx(ctx, tx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}
	return record, nil
}

// Reverse appends an equal-and-opposite transaction referencing the
// original. The original row is never touched.
func (s *service) Reverse(ctx context.Context, transactionID uuid.UUID) (*models.TokenTransaction, error) {
	orig, err := s.txs.GetByID(ctx, transactionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	if orig.Pending {
		return nil, ErrTransactionPending
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	delta := -orig.Amount
	var newBalance int
	if delta >= 0 {
		newBalance, err = s.accounts.AddTokens(ctx, tx, orig.AccountID, delta)
	} else {
		newBalance, err = s.accounts.DeductTokens(ctx, tx, orig.AccountID, -delta)
		if errors.Is(err, pgx.ErrNoRows) {
			available, availErr := s.accounts.GetTokens(ctx, orig.AccountID)
			if availErr != nil {
				return nil, availErr
			}
			return nil, &InsufficientTokensError{Required: -delta, Available: available}
		}
	}
	if err != nil {
		return nil, err
	}

	record := &models.TokenTransaction{
		ID:           uuid.New(),
		AccountID:    orig.AccountID,
		Amount:       delta,
		Kind:         reversalKind(orig.Kind),
		Description:  "reversal of " + orig.Description,
		RelatedID:    orig.RelatedID,
		RelatedTxID:  &orig.ID,
		BalanceAfter: &newBalance,
	}
	if err := s.txs.CreateTx(ctx, tx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}
	return record, nil
}

func (s *service) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*models.TokenTransaction, error) {
	return s.txs.ListByAccountID(ctx, accountID)
}

func (s *service) CreatePending(ctx context.Context, accountID uuid.UUID, tokens int, reason string) (*models.TokenTransaction, error) {
	if tokens <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if _, err := s.accounts.GetTokens(ctx, accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	record := &models.TokenTransaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Amount:      tokens,
		Kind:        models.TokenTxPurchase,
		Description: reason,
		Pending:     true,
	}
	if err := s.txs.CreateTx(ctx, tx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}
	return record, nil
}

// ConfirmPending posts a pending purchase: the pending flag flips and
// the balance is credited in one atomic unit. The flip is guarded on
// pending=TRUE, so confirming twice for the same external payment
// cannot double-credit. The flip returns the updated row, so a
// committed confirmation never depends on a follow-up read.
func (s *service) ConfirmPending(ctx context.Context, transactionID uuid.UUID) (*models.TokenTransaction, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	record, err := s.txs.ConfirmPendingTx(ctx, tx, transactionID)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := s.txs.GetByID(ctx, transactionID); getErr != nil {
			if errors.Is(getErr, pgx.ErrNoRows) {
				return nil, ErrTransactionNotFound
			}
			return nil, getErr
		}
		return nil, ErrAlreadyConfirmed
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.accounts.AddTokens(ctx, tx, record.AccountID, record.Amount); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}
	return record, nil
}

// reversalKind maps a transaction kind to the kind of its reversal.
// Reversed debits are refunds; reversing anything that added tokens
// produces a debit.
func reversalKind(kind string) string {
	if kind == models.TokenTxDebit {
		return models.TokenTxRefund
	}
	return models.TokenTxDebit
}
