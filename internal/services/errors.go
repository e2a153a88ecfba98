package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthorized is returned when the caller's role or identity does
	// not permit the operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound is returned when the referenced opportunity or proposal
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when the entity is not in the status the
	// requested transition expects.
	ErrInvalidState = errors.New("invalid state for requested transition")

	// ErrDuplicateProposal is returned when a freelancer already holds a
	// non-withdrawn proposal on the opportunity.
	ErrDuplicateProposal = errors.New("freelancer already has a proposal on this opportunity")

	// ErrInvalidOpportunityType is returned for unknown opportunity types.
	ErrInvalidOpportunityType = errors.New("invalid opportunity type")

	// ErrInvalidPackage is returned for unknown token package types.
	ErrInvalidPackage = errors.New("unknown token package")

	// ErrNoEscrowAccountAvailable is returned when the country has no
	// active escrow account configured.
	ErrNoEscrowAccountAvailable = errors.New("no escrow account available for country")
)

// CompensationFailedError is returned when a multi-step operation failed
// after its debit AND the compensating reversal also failed. The ledger
// and the domain state disagree; an operator must reconcile manually.
type CompensationFailedError struct {
	Original     error
	Compensation error
}

func (e *CompensationFailedError) Error() string {
	return fmt.Sprintf("compensation failed: %v (original error: %v)", e.Compensation, e.Original)
}

func (e *CompensationFailedError) Unwrap() error { return e.Original }
