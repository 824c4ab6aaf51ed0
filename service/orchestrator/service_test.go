package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/model/policy"
	"github.com/viant/claimflow/model/user"
	claimmem "github.com/viant/claimflow/service/dao/claim/memory"
	policymem "github.com/viant/claimflow/service/dao/policy/memory"
	usermem "github.com/viant/claimflow/service/dao/user/memory"
	"github.com/viant/claimflow/service/engine"
	enginemem "github.com/viant/claimflow/service/engine/memory"
)

type fixture struct {
	claims  *claimmem.Service
	engine  *enginemem.Service
	service *Service
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	claims := claimmem.New()
	policies := policymem.New()
	users := usermem.New()
	engineSvc := enginemem.New()

	assert.Nil(t, policies.Save(ctx, &policy.Policy{
		ID:             "p-1",
		PolicyNumber:   "POL-2026-0001",
		PolicyType:     "AUTO",
		HolderName:     "John Doe",
		CoverageAmount: 200000,
	}))
	assert.Nil(t, users.Save(ctx, &user.User{ID: "u-1", Username: "alice", FullName: "Alice Smith"}))
	assert.Nil(t, users.Save(ctx, &user.User{ID: "u-2", Username: "bob", FullName: "Bob Jones"}))

	return &fixture{
		claims:  claims,
		engine:  engineSvc,
		service: New(claims, policies, users, engineSvc, DefaultRouting()),
	}
}

func (f *fixture) createInput() *CreateInput {
	return &CreateInput{
		PolicyID:            "p-1",
		ClaimType:           claim.TypeVehicle,
		Severity:            claim.SeverityMedium,
		ClaimedAmount:       5000,
		ClaimantName:        "John Doe",
		IncidentDate:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		IncidentLocation:    "Springfield",
		IncidentDescription: "Rear-end collision",
		CreatedBy:           "u-1",
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	assert.Equal(t, claim.StatusDraft, aClaim.Status)
	assert.NotEmpty(t, aClaim.CaseInstanceID)
	assert.Regexp(t, `^CLM\d{8}0001$`, aClaim.ClaimNumber)
	assert.Equal(t, "alice", aClaim.CreatedBy)

	instance := f.engine.Instance(aClaim.CaseInstanceID)
	if !assert.NotNil(t, instance) {
		return
	}
	assert.Equal(t, engine.CaseDefinitionKey, instance.DefinitionKey)
	assert.Equal(t, aClaim.ClaimNumber, instance.BusinessKey)
	assert.Equal(t, aClaim.ID, instance.Variables[engine.VarClaimCaseID])
	assert.Equal(t, 5000.0, instance.Variables[engine.VarClaimedAmount])
	assert.Equal(t, 200000.0, instance.Variables[engine.VarCoverageAmount])
	// Output placeholders are present with nil values.
	for _, key := range []string{engine.VarClaimComplexity, engine.VarApproved, engine.VarPaymentStatus} {
		value, ok := instance.Variables[key]
		assert.True(t, ok, key)
		assert.Nil(t, value, key)
	}

	// Daily sequence increments.
	second, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	assert.Regexp(t, `^CLM\d{8}0002$`, second.ClaimNumber)
}

func TestService_Create_UnknownPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	input := f.createInput()
	input.PolicyID = "missing"
	_, err := f.service.Create(ctx, input)
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestService_Create_EngineStartFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.engine.FailStart(assert.AnError)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.NotNil(t, err)
	if !assert.NotNil(t, aClaim) {
		return
	}
	// The claim stays persisted without a case instance.
	persisted, loadErr := f.claims.Load(ctx, aClaim.ID)
	assert.Nil(t, loadErr)
	assert.Equal(t, "", persisted.CaseInstanceID)
}

func TestService_Assign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)

	// DRAFT claims are not assignable.
	_, err = f.service.Assign(ctx, aClaim.ID, "u-2")
	assert.ErrorIs(t, err, ErrInvalidState)

	f.setStatus(t, aClaim.ID, claim.StatusSubmitted)
	updated, err := f.service.Assign(ctx, aClaim.ID, "u-2")
	assert.Nil(t, err)
	assert.Equal(t, "bob", updated.AssignedTo)
	assert.Equal(t, "bob", f.engine.Instance(aClaim.CaseInstanceID).Variables[engine.VarClaimAdjuster])

	_, err = f.service.Assign(ctx, aClaim.ID, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_CompleteReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	f.setStatus(t, aClaim.ID, claim.StatusSubmitted)

	updated, err := f.service.CompleteReview(ctx, aClaim.ID, "u-1", "looks complete")
	assert.Nil(t, err)
	assert.Equal(t, claim.StatusUnderReview, updated.Status)

	completions := f.engine.CompletionsOf(engine.TaskReviewClaim)
	if !assert.Len(t, completions, 1) {
		return
	}
	variables := completions[0].Variables
	assert.Equal(t, "AUTO", variables[engine.VarPolicyType])
	assert.Equal(t, 5000.0, variables[engine.VarClaimedAmount])
	assert.Equal(t, 200000.0, variables[engine.VarCoverageAmount])
	assert.Equal(t, claim.TypeVehicle, variables[engine.VarClaimType])
	assert.Equal(t, string(claim.SeverityMedium), variables[engine.VarSeverity])
}

func TestService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	f.setStatus(t, aClaim.ID, claim.StatusUnderReview)

	updated, err := f.service.Approve(ctx, aClaim.ID, "u-2", 4500, "within coverage")
	assert.Nil(t, err)
	assert.Equal(t, claim.StatusApproved, updated.Status)
	if assert.NotNil(t, updated.ApprovedAmount) {
		assert.Equal(t, 4500.0, *updated.ApprovedAmount)
	}

	completions := f.engine.CompletionsOf(engine.TaskFinalApproval)
	if !assert.Len(t, completions, 1) {
		return
	}
	variables := completions[0].Variables
	assert.Equal(t, true, variables[engine.VarApproved])
	assert.Equal(t, 4500.0, variables["approvedAmount"])
	assert.Regexp(t, `^PAY-`, variables["paymentReference"])
}

func TestService_Reject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	f.setStatus(t, aClaim.ID, claim.StatusUnderReview)

	updated, err := f.service.Reject(ctx, aClaim.ID, "insufficient documentation")
	assert.Nil(t, err)
	assert.Equal(t, claim.StatusRejected, updated.Status)

	completions := f.engine.CompletionsOf(engine.TaskFinalApproval)
	if !assert.Len(t, completions, 1) {
		return
	}
	assert.Equal(t, false, completions[0].Variables[engine.VarApproved])
	assert.Equal(t, "insufficient documentation", completions[0].Variables["rejectReason"])
}

func TestService_Pay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)

	input := &PayInput{
		Amount:    4500,
		Date:      time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Method:    "BANK_TRANSFER",
		Reference: "TXN-20260830-0001",
	}

	// Payment requires APPROVED exactly.
	f.setStatus(t, aClaim.ID, claim.StatusSubmitted)
	_, err = f.service.Pay(ctx, aClaim.ID, "u-2", input)
	assert.ErrorIs(t, err, ErrInvalidState)
	persisted, _ := f.claims.Load(ctx, aClaim.ID)
	assert.Equal(t, claim.PaymentStatus(""), persisted.PaymentStatus)

	f.setStatus(t, aClaim.ID, claim.StatusApproved)
	updated, err := f.service.Pay(ctx, aClaim.ID, "u-2", input)
	assert.Nil(t, err)
	assert.Equal(t, claim.StatusPaid, updated.Status)
	if assert.NotNil(t, updated.PaidAmount) {
		assert.Equal(t, 4500.0, *updated.PaidAmount)
	}
	assert.Equal(t, "TXN-20260830-0001", updated.TransactionID)
	assert.NotNil(t, updated.PaymentDate)

	completions := f.engine.CompletionsOf(engine.TaskProcessPayment)
	assert.Len(t, completions, 1)
}

func TestService_Pay_EngineFailureKeepsProcessing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	f.setStatus(t, aClaim.ID, claim.StatusApproved)
	f.engine.FailCompleteTask(assert.AnError)

	_, err = f.service.Pay(ctx, aClaim.ID, "u-2", &PayInput{Amount: 4500, Date: time.Now(), Method: "BANK_TRANSFER", Reference: "TXN-1"})
	assert.NotNil(t, err)

	persisted, _ := f.claims.Load(ctx, aClaim.ID)
	assert.Equal(t, claim.StatusPaymentProcessing, persisted.Status)
	assert.Nil(t, persisted.PaidAmount)
}

func TestService_Pay_NoActiveTaskProceeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	f.setStatus(t, aClaim.ID, claim.StatusApproved)
	// Strict task tracking: only the review task is active, so completing the
	// payment task reports no active task.
	f.engine.ActivateTask(aClaim.CaseInstanceID, engine.TaskReviewClaim)

	updated, err := f.service.Pay(ctx, aClaim.ID, "u-2", &PayInput{Amount: 4500, Date: time.Now(), Method: "BANK_TRANSFER", Reference: "TXN-1"})
	assert.Nil(t, err)
	assert.Equal(t, claim.StatusPaid, updated.Status)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aClaim, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)

	assert.Nil(t, f.service.Delete(ctx, aClaim.ID))
	assert.True(t, f.engine.Instance(aClaim.CaseInstanceID).Terminated)

	err = f.service.Delete(ctx, aClaim.ID)
	assert.ErrorIs(t, err, ErrClaimNotFound)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	second, err := f.service.Create(ctx, f.createInput())
	assert.Nil(t, err)
	f.setStatus(t, first.ID, claim.StatusSubmitted)
	f.setStatus(t, second.ID, claim.StatusUnderReview)

	stats, err := f.service.Stats(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 2, stats.TotalClaims)
	assert.Equal(t, 2, stats.PendingClaims)
	assert.Equal(t, 10000.0, stats.TotalAmount)
}

// setStatus force-sets a claim status to stage a scenario.
func (f *fixture) setStatus(t *testing.T, claimID string, status claim.Status) {
	ctx := context.Background()
	aClaim, err := f.claims.Load(ctx, claimID)
	assert.Nil(t, err)
	aClaim.Status = status
	aClaim.Touch()
	assert.Nil(t, f.claims.Save(ctx, aClaim))
}
