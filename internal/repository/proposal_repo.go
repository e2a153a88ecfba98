package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kazihub/backend/internal/models"
)

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

// CreateTx inserts a proposal inside the given transaction. A partial
// unique index on (opportunity_id, freelancer_id) WHERE status <>
// 'withdrawn' backs the one-active-proposal invariant; violations
// surface as pgconn.PgError 23505.
func (r *ProposalRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *models.Proposal) error {
	return tx.QueryRow(ctx, `
		INSERT INTO proposals (id, opportunity_id, freelancer_id, cover_letter, proposed_budget, estimated_duration, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.OpportunityID, p.FreelancerID, p.CoverLetter, p.ProposedBudget, p.EstimatedDuration, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	err := r.pool.QueryRow(ctx, `
		SELECT id, opportunity_id, freelancer_id, cover_letter, proposed_budget, estimated_duration, status, created_at, updated_at
		FROM proposals WHERE id = $1
	`, id).Scan(&p.ID, &p.OpportunityID, &p.FreelancerID, &p.CoverLetter, &p.ProposedBudget, &p.EstimatedDuration, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProposalRepo) ListByOpportunityID(ctx context.Context, opportunityID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, opportunity_id, freelancer_id, cover_letter, proposed_budget, estimated_duration, status, created_at, updated_at
		FROM proposals WHERE opportunity_id = $1 ORDER BY created_at DESC
	`, opportunityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.OpportunityID, &p.FreelancerID, &p.CoverLetter, &p.ProposedBudget, &p.EstimatedDuration, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// HasActiveByFreelancer reports whether the freelancer already holds a
// non-withdrawn proposal on the opportunity.
func (r *ProposalRepo) HasActiveByFreelancer(ctx context.Context, opportunityID, freelancerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM proposals
			WHERE opportunity_id = $1 AND freelancer_id = $2 AND status <> 'withdrawn'
		)
	`, opportunityID, freelancerID).Scan(&exists)
	return exists, err
}

// TransitionStatus moves the proposal from one status to another with a
// compare-and-set guard. Returns false when the proposal was not in the
// expected status.
func (r *ProposalRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE proposals SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

// TransitionStatusTx is TransitionStatus inside the caller's transaction.
func (r *ProposalRepo) TransitionStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error) {
	result, err := tx.Exec(ctx, `
		UPDATE proposals SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
