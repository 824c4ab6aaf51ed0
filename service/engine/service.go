// Package engine abstracts the external case/process orchestration engine.
// The engine owns workflow run-time state; claimflow only starts instances,
// completes tasks with computed variables and terminates instances. All
// calls either complete or fail atomically from the caller's perspective;
// none are cancellable mid-flight.
package engine

import (
	"context"
	"errors"
)

// Case and task definition keys of the claims workflow.
const (
	CaseDefinitionKey = "insuranceClaimCase"

	TaskReviewClaim    = "taskReviewClaim"
	TaskFinalApproval  = "taskFinalApproval"
	TaskProcessPayment = "taskProcessPayment"
)

// Variable names of the engine contract.
const (
	VarClaimCaseID    = "claimCaseId"
	VarClaimNumber    = "claimNumber"
	VarPolicyID       = "policyId"
	VarClaimedAmount  = "claimedAmount"
	VarCoverageAmount = "coverageAmount"
	VarClaimType      = "claimType"
	VarSeverity       = "severity"
	VarPolicyType     = "policyType"

	VarClaimAdjuster  = "claimAdjuster"
	VarDamageAssessor = "damageAssessor"
	VarApproverGroup  = "approverGroup"
	VarPaymentOfficer = "paymentOfficer"
	VarPaymentManager = "paymentManager"

	VarClaimComplexity = "claimComplexity"
	VarApproved        = "approved"
	VarPaymentStatus   = "paymentStatus"
)

var (
	// ErrNoActiveTask is returned by CompleteTask when the case instance has
	// no active task matching the supplied task definition key. Callers that
	// treat the domain-side write as authoritative log it and proceed.
	ErrNoActiveTask = errors.New("engine: no active task")

	// ErrInstanceNotFound is returned when the run id does not identify a
	// live case instance.
	ErrInstanceNotFound = errors.New("engine: case instance not found")
)

// Service is the surface of the external orchestration engine consumed by
// the orchestrator and listeners.
type Service interface {
	// StartCaseInstance starts a new run of the case definition and returns
	// its run id. Variables become instance scoped; keys present with nil
	// values are placeholders the engine populates later.
	StartCaseInstance(ctx context.Context, definitionKey, businessKey string, variables map[string]interface{}) (string, error)

	// CompleteTask completes the single active task with the given task
	// definition key on the run, passing the supplied variables. Fails with
	// ErrNoActiveTask when nothing matches.
	CompleteTask(ctx context.Context, runID, taskDefinitionKey string, variables map[string]interface{}) error

	// SetVariables updates instance-scoped variables on a live run.
	SetVariables(ctx context.Context, runID string, variables map[string]interface{}) error

	// TerminateCaseInstance terminates a live run. Callers use it
	// best-effort; failures are logged, never propagated into claim state.
	TerminateCaseInstance(ctx context.Context, runID string) error
}
