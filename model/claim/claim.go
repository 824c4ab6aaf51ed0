// Package claim defines the claim aggregate and its legal status machine.
// It is pure domain logic with no I/O; persistence and engine interaction
// live in the service packages.
package claim

import (
	"fmt"
	"time"

	"github.com/viant/claimflow/internal/clock"
)

// Claim is the aggregate root of the claims domain. Version implements
// per-record optimistic concurrency: every mutation bumps it and the DAO
// rejects saves whose version does not match the stored record.
type Claim struct {
	ID          string `json:"id"`
	ClaimNumber string `json:"claimNumber"`
	PolicyID    string `json:"policyId"`

	// CaseInstanceID correlates the claim to the externally running case
	// instance; empty until the engine instance starts, set exactly once.
	CaseInstanceID string `json:"caseInstanceId,omitempty"`

	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`

	ClaimType string   `json:"claimType"`
	Severity  Severity `json:"severity"`

	ClaimedAmount  float64    `json:"claimedAmount"`
	ApprovedAmount *float64   `json:"approvedAmount,omitempty"`
	PaidAmount     *float64   `json:"paidAmount,omitempty"`
	TransactionID  string     `json:"transactionId,omitempty"`
	PaymentDate    *time.Time `json:"paymentDate,omitempty"`

	ClaimantName  string `json:"claimantName"`
	ClaimantEmail string `json:"claimantEmail,omitempty"`
	ClaimantPhone string `json:"claimantPhone,omitempty"`

	IncidentDate        time.Time `json:"incidentDate"`
	IncidentLocation    string    `json:"incidentLocation,omitempty"`
	IncidentDescription string    `json:"incidentDescription,omitempty"`

	AssignedTo string `json:"assignedTo,omitempty"`
	CreatedBy  string `json:"createdBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`

	History []HistoryEntry `json:"history,omitempty"`
}

// New creates a claim in the initial DRAFT status with a CREATED audit entry.
func New(id, claimNumber, policyID string) *Claim {
	now := clock.Now()
	c := &Claim{
		ID:          id,
		ClaimNumber: claimNumber,
		PolicyID:    policyID,
		Status:      StatusDraft,
		Severity:    SeverityLow,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	c.AddHistory(ActionCreated, "Claim created", "")
	return c
}

// Transition moves the claim to target along a legal edge. A target equal to
// the current status is treated as success without a duplicate history
// entry. Entering PAYMENT_PROCESSING resets the payment status to
// PROCESSING.
func (c *Claim) Transition(target Status, description, actor string) error {
	if c.Status == target {
		return nil
	}
	if !c.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, c.Status, target)
	}
	old := c.Status
	c.Status = target
	if target == StatusPaymentProcessing {
		c.PaymentStatus = PaymentProcessing
	}
	c.AddHistory(ActionStatusChanged,
		fmt.Sprintf("Status changed from %v to %v: %s", old, target, description), actor)
	c.touch()
	return nil
}

// CorrelateCase binds the claim to its engine case instance. The binding is
// stable for the claim's lifetime; rebinding to a different run fails.
func (c *Claim) CorrelateCase(runID string) error {
	if c.CaseInstanceID == runID {
		return nil
	}
	if c.CaseInstanceID != "" {
		return fmt.Errorf("%w: %v", ErrCaseCorrelated, c.CaseInstanceID)
	}
	c.CaseInstanceID = runID
	c.touch()
	return nil
}

// AssignTo assigns the claim to a user, provided the current status permits
// assignment.
func (c *Claim) AssignTo(username, fullName string) error {
	if !c.CanAssign() {
		return fmt.Errorf("%w: %v", ErrNotAssignable, c.Status)
	}
	c.AssignedTo = username
	c.AddHistory(ActionAssigned, "Claim assigned to "+fullName, username)
	c.touch()
	return nil
}

// AddHistory appends an audit entry. It does not bump the version; mutators
// that call it do.
func (c *Claim) AddHistory(action, description, actor string) {
	c.History = append(c.History, HistoryEntry{
		Action:      action,
		Description: description,
		Actor:       actor,
		CreatedAt:   clock.Now(),
	})
}

func (c *Claim) touch() {
	c.UpdatedAt = clock.Now()
	c.Version++
}

// Touch bumps version and update time for mutations applied outside the
// aggregate's own methods (payment field updates by listeners).
func (c *Claim) Touch() { c.touch() }

// CanAssign reports whether the claim may be assigned in its current status.
func (c *Claim) CanAssign() bool {
	return c.Status == StatusSubmitted || c.Status == StatusUnderReview ||
		c.Status == StatusInvestigating
}

// CanUpdate reports whether claimant-supplied fields may still change.
func (c *Claim) CanUpdate() bool { return c.Status == StatusDraft }

// CanApprove reports whether an approval decision is acceptable now.
func (c *Claim) CanApprove() bool {
	return c.Status == StatusUnderReview || c.Status == StatusInvestigating
}

// CanReject reports whether a rejection decision is acceptable now.
func (c *Claim) CanReject() bool {
	return c.Status == StatusUnderReview || c.Status == StatusInvestigating
}

// CanClose reports whether the claim may be closed.
func (c *Claim) CanClose() bool {
	return c.Status == StatusPaid || c.Status == StatusRejected
}

// CanCancel reports whether the claim may still be cancelled.
func (c *Claim) CanCancel() bool {
	return c.Status != StatusClosed && c.Status != StatusCancelled
}

// Clone returns a deep copy safe for mutation outside the owning store.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	out := *c
	if c.ApprovedAmount != nil {
		v := *c.ApprovedAmount
		out.ApprovedAmount = &v
	}
	if c.PaidAmount != nil {
		v := *c.PaidAmount
		out.PaidAmount = &v
	}
	if c.PaymentDate != nil {
		v := *c.PaymentDate
		out.PaymentDate = &v
	}
	if len(c.History) > 0 {
		out.History = make([]HistoryEntry, len(c.History))
		copy(out.History, c.History)
	}
	return &out
}
