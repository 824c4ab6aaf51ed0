package claim

import "errors"

// Sentinel errors shared by the status machine and its callers. Detect with
// errors.Is rather than string comparison.
var (
	// ErrInvalidTransition is returned when a requested status change is not
	// an edge of the transition table.
	ErrInvalidTransition = errors.New("claim: invalid status transition")

	// ErrInvalidStatus indicates a value outside the Status enumeration.
	ErrInvalidStatus = errors.New("claim: invalid status value")

	// ErrCaseCorrelated is returned on an attempt to rebind a claim to a
	// different case instance; the correlation id is set at most once.
	ErrCaseCorrelated = errors.New("claim: case instance already correlated")

	// ErrNotAssignable indicates the claim status does not permit assignment.
	ErrNotAssignable = errors.New("claim: not assignable in current status")
)
