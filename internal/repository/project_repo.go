package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kazihub/backend/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *models.Project) error {
	return tx.QueryRow(ctx, `
		INSERT INTO projects (id, opportunity_id, proposal_id, client_id, freelancer_id, budget, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.OpportunityID, p.ProposalID, p.ClientID, p.FreelancerID, p.Budget, p.Status).Scan(&p.CreatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.pool.QueryRow(ctx, `
		SELECT id, opportunity_id, proposal_id, client_id, freelancer_id, budget, status, created_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.OpportunityID, &p.ProposalID, &p.ClientID, &p.FreelancerID, &p.Budget, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByAccountID returns projects where the account is either side of
// the engagement.
func (r *ProjectRepo) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, opportunity_id, proposal_id, client_id, freelancer_id, budget, status, created_at
		FROM projects WHERE client_id = $1 OR freelancer_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.OpportunityID, &p.ProposalID, &p.ClientID, &p.FreelancerID, &p.Budget, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
