package orchestrator

import "errors"

var (
	// ErrClaimNotFound is returned when the claim reference is unknown.
	ErrClaimNotFound = errors.New("orchestrator: claim not found")

	// ErrPolicyNotFound is returned when the referenced policy is unknown.
	ErrPolicyNotFound = errors.New("orchestrator: policy not found")

	// ErrUserNotFound is returned when the referenced user is unknown.
	ErrUserNotFound = errors.New("orchestrator: user not found")

	// ErrInvalidState is returned when the operation is not legal for the
	// claim's current status. No state change happens.
	ErrInvalidState = errors.New("orchestrator: operation invalid for current status")
)
