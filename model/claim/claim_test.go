package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/claimflow/internal/clock"
)

func TestNew_Timestamps(t *testing.T) {
	fixed := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	defer clock.Stub(fixed)()

	aClaim := New("c-1", "CLM202608310001", "p-1")
	assert.Equal(t, fixed, aClaim.CreatedAt)
	assert.Equal(t, fixed, aClaim.UpdatedAt)
	assert.Equal(t, fixed, aClaim.History[0].CreatedAt)
}

func TestClaim_Transition(t *testing.T) {
	aClaim := New("c-1", "CLM202601010001", "p-1")
	assert.Equal(t, StatusDraft, aClaim.Status)
	assert.Equal(t, 1, aClaim.Version)
	assert.Len(t, aClaim.History, 1)

	err := aClaim.Transition(StatusSubmitted, "submitted", "alice")
	assert.Nil(t, err)
	assert.Equal(t, StatusSubmitted, aClaim.Status)
	assert.Equal(t, 2, aClaim.Version)
	assert.Len(t, aClaim.History, 2)

	// Same-status request is a success no-op without a history entry.
	err = aClaim.Transition(StatusSubmitted, "submitted again", "alice")
	assert.Nil(t, err)
	assert.Equal(t, 2, aClaim.Version)
	assert.Len(t, aClaim.History, 2)

	// Illegal edge leaves the claim untouched.
	err = aClaim.Transition(StatusPaid, "paid", "alice")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusSubmitted, aClaim.Status)
	assert.Equal(t, 2, aClaim.Version)
	assert.Len(t, aClaim.History, 2)
}

func TestClaim_Transition_PaymentProcessing(t *testing.T) {
	aClaim := New("c-1", "CLM202601010001", "p-1")
	aClaim.Status = StatusApproved

	err := aClaim.Transition(StatusPaymentProcessing, "payment started", "bob")
	assert.Nil(t, err)
	assert.Equal(t, PaymentProcessing, aClaim.PaymentStatus)
}

func TestClaim_CorrelateCase(t *testing.T) {
	aClaim := New("c-1", "CLM202601010001", "p-1")

	assert.Nil(t, aClaim.CorrelateCase("run-1"))
	assert.Equal(t, "run-1", aClaim.CaseInstanceID)

	// Rebinding to the same run is a no-op.
	assert.Nil(t, aClaim.CorrelateCase("run-1"))

	err := aClaim.CorrelateCase("run-2")
	assert.ErrorIs(t, err, ErrCaseCorrelated)
	assert.Equal(t, "run-1", aClaim.CaseInstanceID)
}

func TestClaim_AssignTo(t *testing.T) {
	aClaim := New("c-1", "CLM202601010001", "p-1")

	err := aClaim.AssignTo("alice", "Alice Smith")
	assert.ErrorIs(t, err, ErrNotAssignable)

	aClaim.Status = StatusSubmitted
	err = aClaim.AssignTo("alice", "Alice Smith")
	assert.Nil(t, err)
	assert.Equal(t, "alice", aClaim.AssignedTo)
}

func TestClaim_Clone(t *testing.T) {
	aClaim := New("c-1", "CLM202601010001", "p-1")
	amount := 100.0
	aClaim.ApprovedAmount = &amount

	clone := aClaim.Clone()
	*clone.ApprovedAmount = 200.0
	clone.History[0].Description = "mutated"

	assert.Equal(t, 100.0, *aClaim.ApprovedAmount)
	assert.Equal(t, "Claim created", aClaim.History[0].Description)
}
