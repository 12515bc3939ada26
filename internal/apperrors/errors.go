package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not allowed")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Policy violations: the request is well-formed but breaks a product rule.
// Callers must change the request, not retry it as-is.
var (
	// ErrInvalidProduct indicates the requested parameters violate the
	// product's constraints (amount outside min/max, term out of bounds,
	// too few guarantors).
	ErrInvalidProduct = errors.New("product constraints violated")

	// ErrBelowMinimumBalance indicates a withdrawal would drop a savings
	// account below its product's minimum balance.
	ErrBelowMinimumBalance = errors.New("balance would fall below product minimum")

	// ErrAccountInactive indicates the account or its owning member is not
	// in a state that permits new transactions.
	ErrAccountInactive = errors.New("account does not accept transactions")
)

// Concurrency conflicts: the caller should re-read and retry the cycle.
var (
	// ErrAlreadyDecided indicates another reviewer committed a decision on
	// the item first. Exactly one decision ever wins.
	ErrAlreadyDecided = errors.New("item already decided")

	// ErrAccountBusy indicates the per-account lock could not be acquired
	// before the lock timeout elapsed.
	ErrAccountBusy = errors.New("account is busy, try again")

	// ErrInvalidTransition indicates a loan state transition that the
	// lifecycle state machine does not permit from the current state.
	ErrInvalidTransition = errors.New("invalid loan state transition")
)

// ErrLedgerInconsistency indicates a folded balance does not match the
// snapshot on the most recent ledger entry. Never expected in correct
// operation; surfaced to an operator, never silently retried.
var ErrLedgerInconsistency = errors.New("ledger inconsistency detected")
