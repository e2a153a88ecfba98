package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kazihub/backend/internal/models"
)

type OpportunityRepo struct {
	pool *pgxpool.Pool
}

func NewOpportunityRepo(pool *pgxpool.Pool) *OpportunityRepo {
	return &OpportunityRepo{pool: pool}
}

func (r *OpportunityRepo) CreateTx(ctx context.Context, tx pgx.Tx, o *models.Opportunity) error {
	return tx.QueryRow(ctx, `
		INSERT INTO opportunities (id, client_id, title, description, category, budget_min, budget_max, type, status, required_skills, proposals_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, o.ID, o.ClientID, o.Title, o.Description, o.Category, o.BudgetMin, o.BudgetMax, o.Type, o.Status, o.RequiredSkills, o.ProposalsCount).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *OpportunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	var o models.Opportunity
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_id, title, description, category, budget_min, budget_max, type, status, required_skills, proposals_count, created_at, updated_at
		FROM opportunities WHERE id = $1
	`, id).Scan(&o.ID, &o.ClientID, &o.Title, &o.Description, &o.Category, &o.BudgetMin, &o.BudgetMax, &o.Type, &o.Status, &o.RequiredSkills, &o.ProposalsCount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OpportunityRepo) ListOpen(ctx context.Context) ([]*models.Opportunity, error) {
	return r.list(ctx, `
		SELECT id, client_id, title, description, category, budget_min, budget_max, type, status, required_skills, proposals_count, created_at, updated_at
		FROM opportunities WHERE status = 'open' ORDER BY created_at DESC
	`)
}

func (r *OpportunityRepo) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*models.Opportunity, error) {
	return r.list(ctx, `
		SELECT id, client_id, title, description, category, budget_min, budget_max, type, status, required_skills, proposals_count, created_at, updated_at
		FROM opportunities WHERE client_id = $1 ORDER BY created_at DESC
	`, clientID)
}

func (r *OpportunityRepo) list(ctx context.Context, query string, args ...any) ([]*models.Opportunity, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Opportunity
	for rows.Next() {
		var o models.Opportunity
		if err := rows.Scan(&o.ID, &o.ClientID, &o.Title, &o.Description, &o.Category, &o.BudgetMin, &o.BudgetMax, &o.Type, &o.Status, &o.RequiredSkills, &o.ProposalsCount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// TransitionStatus moves the opportunity from one status to another
// with a compare-and-set guard. Returns false when the opportunity was
// not in the expected status.
func (r *OpportunityRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE opportunities SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

// TransitionStatusTx moves the opportunity from one status to another
// with a compare-and-set guard. Returns false when the opportunity was
// not in the expected status, making concurrent transitions exactly-once.
func (r *OpportunityRepo) TransitionStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error) {
	result, err := tx.Exec(ctx, `
		UPDATE opportunities SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *OpportunityRepo) IncrementProposalsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE opportunities SET proposals_count = proposals_count + 1, updated_at = now() WHERE id = $1
	`, id)
	return err
}
