package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kazihub/backend/internal/ledger"
	"github.com/kazihub/backend/internal/models"
	"github.com/kazihub/backend/internal/notify"
)

// Actor is the authenticated caller as reported by the auth layer.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// OpportunityDetails is the client-supplied part of a new opportunity.
type OpportunityDetails struct {
	Title          string
	Description    string
	Category       string
	BudgetMin      int
	BudgetMax      int
	Type           string
	RequiredSkills []string
}

// ProposalDetails is the freelancer-supplied part of a new proposal.
type ProposalDetails struct {
	CoverLetter       string
	ProposedBudget    int
	EstimatedDuration string
}

// OpportunityStore is the minimal opportunity repository interface for
// the workflow engine.
type OpportunityStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, o *models.Opportunity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	TransitionStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error)
	IncrementProposalsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// ProposalStore is the minimal proposal repository interface.
type ProposalStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	HasActiveByFreelancer(ctx context.Context, opportunityID, freelancerID uuid.UUID) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	TransitionStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error)
}

// ProjectStore is the minimal project repository interface.
type ProjectStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Project) error
}

// NotificationStore is the minimal notification repository interface.
type NotificationStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, n *models.Notification) error
}

// Workflow is the opportunity/proposal/project state machine. Token
// movements go through the ledger, which is its own atomic unit;
// domain writes run in a workflow transaction, and a debit that ends
// up orphaned by a failed domain write is undone with exactly one
// compensating reversal.
type Workflow struct {
	db            ledger.TxBeginner
	ledger        ledger.Service
	opportunities OpportunityStore
	proposals     ProposalStore
	projects      ProjectStore
	notifications NotificationStore
	enqueueNotify notify.InsertTxFunc
	logger        *slog.Logger
}

func NewWorkflow(
	db ledger.TxBeginner,
	ledgerSvc ledger.Service,
	opportunities OpportunityStore,
	proposals ProposalStore,
	projects ProjectStore,
	notifications NotificationStore,
	enqueueNotify notify.InsertTxFunc,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		db:            db,
		ledger:        ledgerSvc,
		opportunities: opportunities,
		proposals:     proposals,
		projects:      projects,
		notifications: notifications,
		enqueueNotify: enqueueNotify,
		logger:        logger,
	}
}

// PostOpportunity debits the posting cost, then inserts the opportunity.
// Debit-first keeps the compensating action a single reversal with no
// partial opportunity to clean up.
func (w *Workflow) PostOpportunity(ctx context.Context, actor Actor, details OpportunityDetails) (*models.Opportunity, error) {
	if actor.Role != models.RoleClient {
		return nil, ErrNotAuthorized
	}
	if details.Type == "" {
		details.Type = models.OpportunityTypeStandard
	}
	if details.Type != models.OpportunityTypeStandard && details.Type != models.OpportunityTypePremium {
		return nil, ErrInvalidOpportunityType
	}

	cost := models.PostingCost(details.Type)
	debit, err := w.ledger.Debit(ctx, actor.ID, cost, "opportunity creation", nil)
	if err != nil {
		return nil, err
	}

	opp := &models.Opportunity{
		ID:             uuid.New(),
		ClientID:       actor.ID,
		Title:          details.Title,
		Description:    details.Description,
		Category:       details.Category,
		BudgetMin:      details.BudgetMin,
		BudgetMax:      details.BudgetMax,
		Type:           details.Type,
		Status:         models.OpportunityStatusOpen,
		RequiredSkills: details.RequiredSkills,
	}
	if err := w.insertOpportunity(ctx, opp); err != nil {
		return nil, w.compensate(ctx, debit.ID, err)
	}
	return opp, nil
}

func (w *Workflow) insertOpportunity(ctx context.Context, opp *models.Opportunity) error {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := w.opportunities.CreateTx(ctx, tx, opp); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SubmitProposal debits the submission cost, then inserts the proposal,
// bumps the opportunity's proposal counter, and queues a notification
// for the client — all in one transaction. A failure after the debit
// reverses it.
func (w *Workflow) SubmitProposal(ctx context.Context, actor Actor, opportunityID uuid.UUID, details ProposalDetails) (*models.Proposal, error) {
	if actor.Role != models.RoleFreelancer {
		return nil, ErrNotAuthorized
	}
	opp, err := w.opportunities.GetByID(ctx, opportunityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if opp.Status != models.OpportunityStatusOpen {
		return nil, ErrInvalidState
	}
	dup, err := w.proposals.HasActiveByFreelancer(ctx, opportunityID, actor.ID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateProposal
	}

	debit, err := w.ledger.Debit(ctx, actor.ID, models.ProposalCost, "proposal submission", &opportunityID)
	if err != nil {
		return nil, err
	}

	prop := &models.Proposal{
		ID:                uuid.New(),
		OpportunityID:     opportunityID,
		FreelancerID:      actor.ID,
		CoverLetter:       details.CoverLetter,
		ProposedBudget:    details.ProposedBudget,
		EstimatedDuration: details.EstimatedDuration,
		Status:            models.ProposalStatusPending,
	}
	if err := w.insertProposal(ctx, prop, opp); err != nil {
		// The unique index catches a duplicate racing past the pre-check.
		if isUniqueViolation(err) {
			err = ErrDuplicateProposal
		}
		return nil, w.compensate(ctx, debit.ID, err)
	}
	return prop, nil
}

func (w *Workflow) insertProposal(ctx context.Context, prop *models.Proposal, opp *models.Opportunity) error {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := w.proposals.CreateTx(ctx, tx, prop); err != nil {
		return err
	}
	if err := w.opportunities.IncrementProposalsTx(ctx, tx, opp.ID); err != nil {
		return err
	}
	if err := w.queueNotification(ctx, tx, opp.ClientID, models.NotificationProposalReceived,
		"New proposal", fmt.Sprintf("%q received a new proposal", opp.Title)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AcceptProposal turns a pending proposal into a project. The
// opportunity's open -> in_progress transition is a compare-and-set, so
// two clients racing to accept proposals on the same opportunity
// produce exactly one project. No tokens move on acceptance.
func (w *Workflow) AcceptProposal(ctx context.Context, actor Actor, proposalID uuid.UUID) (*models.Project, error) {
	if actor.Role != models.RoleClient {
		return nil, ErrNotAuthorized
	}
	prop, err := w.proposals.GetByID(ctx, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	opp, err := w.opportunities.GetByID(ctx, prop.OpportunityID)
	if err != nil {
		return nil, err
	}
	if opp.ClientID != actor.ID {
		return nil, ErrNotAuthorized
	}
	if prop.Status != models.ProposalStatusPending || opp.Status != models.OpportunityStatusOpen {
		return nil, ErrInvalidState
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	moved, err := w.opportunities.TransitionStatusTx(ctx, tx, opp.ID,
		models.OpportunityStatusOpen, models.OpportunityStatusInProgress)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrInvalidState
	}
	moved, err = w.proposals.TransitionStatusTx(ctx, tx, prop.ID,
		models.ProposalStatusPending, models.ProposalStatusAccepted)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrInvalidState
	}

	project := &models.Project{
		ID:            uuid.New(),
		OpportunityID: opp.ID,
		ProposalID:    prop.ID,
		ClientID:      opp.ClientID,
		FreelancerID:  prop.FreelancerID,
		Budget:        prop.ProposedBudget,
		Status:        models.ProjectStatusActive,
	}
	if err := w.projects.CreateTx(ctx, tx, project); err != nil {
		return nil, err
	}
	if err := w.queueNotification(ctx, tx, prop.FreelancerID, models.NotificationProposalAccepted,
		"Proposal accepted", fmt.Sprintf("your proposal on %q was accepted", opp.Title)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return project, nil
}

// RejectProposal is a pure status transition; submission tokens are not
// refunded.
func (w *Workflow) RejectProposal(ctx context.Context, actor Actor, proposalID uuid.UUID) error {
	if actor.Role != models.RoleClient {
		return ErrNotAuthorized
	}
	prop, err := w.proposals.GetByID(ctx, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	opp, err := w.opportunities.GetByID(ctx, prop.OpportunityID)
	if err != nil {
		return err
	}
	if opp.ClientID != actor.ID {
		return ErrNotAuthorized
	}
	return w.transitionProposal(ctx, proposalID, models.ProposalStatusRejected)
}

// WithdrawProposal is a pure status transition; submission tokens are
// not refunded.
func (w *Workflow) WithdrawProposal(ctx context.Context, actor Actor, proposalID uuid.UUID) error {
	if actor.Role != models.RoleFreelancer {
		return ErrNotAuthorized
	}
	prop, err := w.proposals.GetByID(ctx, proposalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if prop.FreelancerID != actor.ID {
		return ErrNotAuthorized
	}
	return w.transitionProposal(ctx, proposalID, models.ProposalStatusWithdrawn)
}

// CancelOpportunity cancels an opportunity that has not progressed.
func (w *Workflow) CancelOpportunity(ctx context.Context, actor Actor, opportunityID uuid.UUID) error {
	return w.transitionOpportunity(ctx, actor, opportunityID,
		models.OpportunityStatusOpen, models.OpportunityStatusCancelled)
}

// CompleteOpportunity marks an in-progress opportunity completed.
func (w *Workflow) CompleteOpportunity(ctx context.Context, actor Actor, opportunityID uuid.UUID) error {
	return w.transitionOpportunity(ctx, actor, opportunityID,
		models.OpportunityStatusInProgress, models.OpportunityStatusCompleted)
}

func (w *Workflow) transitionOpportunity(ctx context.Context, actor Actor, opportunityID uuid.UUID, from, to string) error {
	if actor.Role != models.RoleClient {
		return ErrNotAuthorized
	}
	opp, err := w.opportunities.GetByID(ctx, opportunityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if opp.ClientID != actor.ID {
		return ErrNotAuthorized
	}
	moved, err := w.opportunities.TransitionStatus(ctx, opportunityID, from, to)
	if err != nil {
		return err
	}
	if !moved {
		return ErrInvalidState
	}
	return nil
}

func (w *Workflow) transitionProposal(ctx context.Context, proposalID uuid.UUID, to string) error {
	moved, err := w.proposals.TransitionStatus(ctx, proposalID, models.ProposalStatusPending, to)
	if err != nil {
		return err
	}
	if !moved {
		return ErrInvalidState
	}
	return nil
}

// queueNotification writes the notification row and enqueues its
// delivery job in the same transaction.
func (w *Workflow) queueNotification(ctx context.Context, tx pgx.Tx, userID uuid.UUID, kind, title, message string) error {
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := w.notifications.CreateTx(ctx, tx, n); err != nil {
		return err
	}
	if w.enqueueNotify == nil {
		return nil
	}
	return w.enqueueNotify(ctx, tx, notify.DeliverNotificationArgs{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
	})
}

// compensate reverses the debit left orphaned by a failed domain write
// and returns the original error. A failed reversal is fatal for the
// request and flagged for operator reconciliation.
func (w *Workflow) compensate(ctx context.Context, debitTxID uuid.UUID, original error) error {
	if _, revErr := w.ledger.Reverse(ctx, debitTxID); revErr != nil {
		w.logger.Error("ledger compensation failed",
			"transaction_id", debitTxID,
			"original_error", original,
			"error", revErr,
		)
		return &CompensationFailedError{Original: original, Compensation: revErr}
	}
	return original
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
