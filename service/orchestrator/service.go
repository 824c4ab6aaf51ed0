// Package orchestrator implements the write-side claim operations invoked
// by the application's outer layers. Each operation is a unit: mutate the
// claim, persist, then drive the external engine. The persisted record is
// the source of truth; engine calls that fail after the domain-side write
// has committed are surfaced (or logged for best-effort calls) without
// rolling the claim back.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/viant/claimflow/internal/clock"
	"github.com/viant/claimflow/internal/idgen"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/model/policy"
	"github.com/viant/claimflow/model/user"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/engine"
	"github.com/viant/claimflow/tracing"
)

// ClaimStore is the claim persistence surface the orchestrator needs.
type ClaimStore interface {
	Load(ctx context.Context, id string) (*claim.Claim, error)
	Save(ctx context.Context, c *claim.Claim) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*claim.Claim, error)
	CountByStatus(ctx context.Context, status claim.Status) (int, error)
	CountCreatedAfter(ctx context.Context, after time.Time) (int, error)
}

// Service coordinates claim mutations with the external engine.
type Service struct {
	claims   ClaimStore
	policies dao.Service[string, policy.Policy]
	users    dao.Service[string, user.User]
	engine   engine.Service
	routing  Routing
}

// New constructor.
func New(claims ClaimStore, policies dao.Service[string, policy.Policy],
	users dao.Service[string, user.User], engineSvc engine.Service, routing Routing) *Service {
	return &Service{
		claims:   claims,
		policies: policies,
		users:    users,
		engine:   engineSvc,
		routing:  routing,
	}
}

// CreateInput carries the claimant-supplied fields of a new claim.
type CreateInput struct {
	PolicyID            string
	ClaimType           string
	Severity            claim.Severity
	ClaimedAmount       float64
	ClaimantName        string
	ClaimantEmail       string
	ClaimantPhone       string
	IncidentDate        time.Time
	IncidentLocation    string
	IncidentDescription string
	CreatedBy           string
}

// Create persists a new claim in DRAFT and starts the external case
// instance. When the engine start fails the claim stays persisted without a
// case instance id and the failure is returned alongside the claim, to be
// reconciled later.
func (s *Service) Create(ctx context.Context, input *CreateInput) (*claim.Claim, error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.create", "INTERNAL")
	aClaim, err := s.create(ctx, input)
	tracing.EndSpan(span, err)
	return aClaim, err
}

func (s *Service) create(ctx context.Context, input *CreateInput) (*claim.Claim, error) {
	aPolicy, err := s.policies.Load(ctx, input.PolicyID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPolicyNotFound, input.PolicyID)
		}
		return nil, err
	}

	var createdBy *user.User
	if input.CreatedBy != "" {
		if createdBy, err = s.users.Load(ctx, input.CreatedBy); err != nil && !errors.Is(err, dao.ErrNotFound) {
			return nil, err
		}
	}

	claimNumber, err := s.nextClaimNumber(ctx)
	if err != nil {
		return nil, err
	}

	aClaim := claim.New(idgen.New(), claimNumber, aPolicy.ID)
	aClaim.ClaimType = input.ClaimType
	if input.Severity != "" {
		aClaim.Severity = input.Severity
	}
	aClaim.ClaimedAmount = input.ClaimedAmount
	aClaim.ClaimantName = input.ClaimantName
	aClaim.ClaimantEmail = input.ClaimantEmail
	aClaim.ClaimantPhone = input.ClaimantPhone
	aClaim.IncidentDate = input.IncidentDate
	aClaim.IncidentLocation = input.IncidentLocation
	aClaim.IncidentDescription = input.IncidentDescription
	if createdBy != nil {
		aClaim.CreatedBy = createdBy.Username
	}

	if err = s.claims.Save(ctx, aClaim); err != nil {
		return nil, err
	}

	runID, err := s.engine.StartCaseInstance(ctx, engine.CaseDefinitionKey, claimNumber,
		s.startVariables(aClaim, aPolicy, createdBy))
	if err != nil {
		// The claim exists without a live case instance; surfaced for later
		// reconciliation, creation is not rolled back.
		return aClaim, fmt.Errorf("failed to start case instance for claim %v: %w", aClaim.ID, err)
	}

	if err = aClaim.CorrelateCase(runID); err != nil {
		return aClaim, err
	}
	if err = s.claims.Save(ctx, aClaim); err != nil {
		return aClaim, err
	}
	log.Printf("orchestrator: started case instance %v for claim %v", runID, aClaim.ID)
	return aClaim, nil
}

// startVariables assembles the correlation-and-context variable set passed
// at case start. Output placeholders are present with nil values so the
// engine scopes them to the instance rather than an individual task.
func (s *Service) startVariables(aClaim *claim.Claim, aPolicy *policy.Policy, createdBy *user.User) map[string]interface{} {
	adjuster := s.routing.DefaultAdjuster
	if createdBy != nil {
		adjuster = createdBy.Username
	}
	return map[string]interface{}{
		engine.VarClaimCaseID:     aClaim.ID,
		engine.VarClaimNumber:     aClaim.ClaimNumber,
		engine.VarPolicyID:        aPolicy.ID,
		engine.VarClaimedAmount:   aClaim.ClaimedAmount,
		engine.VarCoverageAmount:  aPolicy.CoverageAmount,
		engine.VarClaimType:       aClaim.ClaimType,
		engine.VarSeverity:        string(aClaim.Severity),
		"claimantName":            aClaim.ClaimantName,
		"incidentDate":            aClaim.IncidentDate.Format(time.DateOnly),
		"incidentLocation":        aClaim.IncidentLocation,
		"incidentDescription":     aClaim.IncidentDescription,
		engine.VarClaimAdjuster:   adjuster,
		engine.VarDamageAssessor:  s.routing.DamageAssessor,
		engine.VarApproverGroup:   s.routing.ApproverGroup,
		engine.VarPaymentOfficer:  s.routing.PaymentOfficer,
		engine.VarPaymentManager:  s.routing.PaymentManager,
		engine.VarClaimComplexity: nil,
		engine.VarApproved:        nil,
		engine.VarPaymentStatus:   nil,
	}
}

// Assign assigns the claim to a user, provided the status permits it.
func (s *Service) Assign(ctx context.Context, claimID, userID string) (*claim.Claim, error) {
	aClaim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err = aClaim.AssignTo(assignee.Username, assignee.FullName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, aClaim.Status)
	}
	if err = s.claims.Save(ctx, aClaim); err != nil {
		return nil, err
	}
	if aClaim.CaseInstanceID != "" {
		// Keep the run's adjuster routing in line with the assignment.
		if err := s.engine.SetVariables(ctx, aClaim.CaseInstanceID, map[string]interface{}{
			engine.VarClaimAdjuster: assignee.Username,
		}); err != nil {
			log.Printf("orchestrator: failed to update adjuster on case instance %v: %v", aClaim.CaseInstanceID, err)
		}
	}
	return aClaim, nil
}

// CompleteReview completes the engine's review task with the decision-table
// input variables. Only a SUBMITTED claim additionally moves to
// UNDER_REVIEW; once review has progressed past that point the engine's own
// notifications are the authority and the operation just records history.
func (s *Service) CompleteReview(ctx context.Context, claimID, actorID, comments string) (*claim.Claim, error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.completeReview", "INTERNAL")
	aClaim, err := s.completeReview(ctx, claimID, actorID, comments)
	tracing.EndSpan(span, err)
	return aClaim, err
}

func (s *Service) completeReview(ctx context.Context, claimID, actorID, comments string) (*claim.Claim, error) {
	aClaim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	aPolicy, err := s.policies.Load(ctx, aClaim.PolicyID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPolicyNotFound, aClaim.PolicyID)
		}
		return nil, err
	}

	description := "Review completed by " + actor.FullName
	if comments != "" {
		description += " - " + comments
	}
	if aClaim.Status == claim.StatusSubmitted {
		if err = aClaim.Transition(claim.StatusUnderReview, description, actor.Username); err != nil {
			return nil, err
		}
	} else {
		aClaim.AddHistory(claim.ActionReviewed, description, actor.Username)
		aClaim.Touch()
	}
	if err = s.claims.Save(ctx, aClaim); err != nil {
		return nil, err
	}

	variables := map[string]interface{}{
		engine.VarPolicyType:     aPolicy.PolicyType,
		engine.VarClaimedAmount:  aClaim.ClaimedAmount,
		engine.VarCoverageAmount: aPolicy.CoverageAmount,
		engine.VarClaimType:      aClaim.ClaimType,
		engine.VarSeverity:       string(aClaim.Severity),
		"reviewedBy":             actor.Username,
		"reviewDate":             clock.Now().Format(time.RFC3339),
		"reviewComments":         comments,
	}
	if err = s.completeEngineTask(ctx, aClaim, engine.TaskReviewClaim, variables); err != nil {
		return aClaim, err
	}
	return aClaim, nil
}

// Approve records the approval decision and completes the engine's final
// approval task with the decision, payment routing identities and a freshly
// generated payment reference.
func (s *Service) Approve(ctx context.Context, claimID, actorID string, approvedAmount float64, comments string) (*claim.Claim, error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.approve", "INTERNAL")
	aClaim, err := s.approve(ctx, claimID, actorID, approvedAmount, comments)
	tracing.EndSpan(span, err)
	return aClaim, err
}

func (s *Service) approve(ctx context.Context, claimID, actorID string, approvedAmount float64, comments string) (*claim.Claim, error) {
	aClaim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	approver, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	description := "Claim approved by " + approver.FullName
	if comments != "" {
		description += " - " + comments
	}
	aClaim.ApprovedAmount = &approvedAmount
	if err = aClaim.Transition(claim.StatusApproved, description, approver.Username); err != nil {
		return nil, err
	}
	if err = s.claims.Save(ctx, aClaim); err != nil {
		return nil, err
	}

	variables := map[string]interface{}{
		engine.VarApproved:       true,
		"approvedBy":             approver.Username,
		"approvedDate":           clock.Now().Format(time.RFC3339),
		"approvedAmount":         approvedAmount,
		engine.VarPaymentOfficer: s.routing.PaymentOfficer,
		engine.VarPaymentManager: s.routing.PaymentManager,
		"paymentReference":       "PAY-" + idgen.Short(8),
	}
	if err = s.completeEngineTask(ctx, aClaim, engine.TaskFinalApproval, variables); err != nil {
		return aClaim, err
	}
	return aClaim, nil
}

// Reject records the rejection decision and completes the engine's final
// approval task with a negative decision and the reason.
func (s *Service) Reject(ctx context.Context, claimID, reason string) (*claim.Claim, error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.reject", "INTERNAL")
	aClaim, err := s.reject(ctx, claimID, reason)
	tracing.EndSpan(span, err)
	return aClaim, err
}

func (s *Service) reject(ctx context.Context, claimID, reason string) (*claim.Claim, error) {
	aClaim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err = aClaim.Transition(claim.StatusRejected, reason, aClaim.CreatedBy); err != nil {
		return nil, err
	}
	if err = s.claims.Save(ctx, aClaim); err != nil {
		return nil, err
	}

	variables := map[string]interface{}{
		engine.VarApproved: false,
		"rejectReason":     reason,
	}
	if err = s.completeEngineTask(ctx, aClaim, engine.TaskFinalApproval, variables); err != nil {
		return aClaim, err
	}
	return aClaim, nil
}

// PayInput carries the payment execution details.
type PayInput struct {
	Amount    float64
	Date      time.Time
	Method    string
	Reference string
}

// Pay requires the claim to be exactly APPROVED. It transitions to
// PAYMENT_PROCESSING, persists that intermediate state, completes the
// engine's process-payment task, then transitions to PAID recording the
// payment fields. When the engine call fails the second transition does not
// happen and the claim stays in PAYMENT_PROCESSING.
func (s *Service) Pay(ctx context.Context, claimID, actorID string, input *PayInput) (*claim.Claim, error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.pay", "INTERNAL")
	aClaim, err := s.pay(ctx, claimID, actorID, input)
	tracing.EndSpan(span, err)
	return aClaim, err
}

func (s *Service) pay(ctx context.Context, claimID, actorID string, input *PayInput) (*claim.Claim, error) {
	aClaim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	payer, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if aClaim.Status != claim.StatusApproved {
		return nil, fmt.Errorf("%w: payment requires APPROVED, current %v", ErrInvalidState, aClaim.Status)
	}

	if err = aClaim.Transition(claim.StatusPaymentProcessing, "Payment initiated by "+payer.FullName, payer.Username); err != nil {
		return nil, err
	}
	if err = s.claims.Save(ctx, aClaim); err != nil {
		return nil, err
	}

	variables := map[string]interface{}{
		"caseInstanceId":   aClaim.CaseInstanceID,
		"paymentAmount":    input.Amount,
		"amount":           input.Amount,
		"paymentDate":      input.Date.Format(time.DateOnly),
		"paymentMethod":    input.Method,
		"paymentReference": input.Reference,
		"paidBy":           payer.Username,
		"paidDate":         clock.Now().Format(time.RFC3339),
	}
	if err = s.completeEngineTask(ctx, aClaim, engine.TaskProcessPayment, variables); err != nil {
		return aClaim, err
	}

	description := fmt.Sprintf("Payment processed: Amount=%v, Method=%v, Reference=%v",
		input.Amount, input.Method, input.Reference)
	if err = aClaim.Transition(claim.StatusPaid, description, payer.Username); err != nil {
		return aClaim, err
	}
	amount := input.Amount
	date := input.Date
	aClaim.PaidAmount = &amount
	aClaim.PaymentDate = &date
	aClaim.TransactionID = input.Reference
	if err = s.claims.Save(ctx, aClaim); err != nil {
		return aClaim, err
	}
	return aClaim, nil
}

// Delete removes a claim, best-effort terminating its case instance first.
func (s *Service) Delete(ctx context.Context, claimID string) error {
	aClaim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if aClaim.CaseInstanceID != "" {
		if err := s.engine.TerminateCaseInstance(ctx, aClaim.CaseInstanceID); err != nil {
			log.Printf("orchestrator: failed to terminate case instance %v: %v", aClaim.CaseInstanceID, err)
		}
	}
	return s.claims.Delete(ctx, claimID)
}

// Statistics aggregates claim counts and amounts.
type Statistics struct {
	TotalClaims    int     `json:"totalClaims"`
	PendingClaims  int     `json:"pendingClaims"`
	ApprovedClaims int     `json:"approvedClaims"`
	RejectedClaims int     `json:"rejectedClaims"`
	TotalAmount    float64 `json:"totalAmount"`
}

// Stats returns aggregate claim statistics.
func (s *Service) Stats(ctx context.Context) (*Statistics, error) {
	all, err := s.claims.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Statistics{TotalClaims: len(all)}
	for _, c := range all {
		stats.TotalAmount += c.ClaimedAmount
		switch c.Status {
		case claim.StatusSubmitted, claim.StatusUnderReview:
			stats.PendingClaims++
		case claim.StatusApproved:
			stats.ApprovedClaims++
		case claim.StatusRejected:
			stats.RejectedClaims++
		}
	}
	return stats, nil
}

// completeEngineTask completes the single active engine task matching the
// task definition key. A missing active task is logged and treated as a
// no-op: completing a task that already progressed or was never created must
// not abort a domain-side state change already committed.
func (s *Service) completeEngineTask(ctx context.Context, aClaim *claim.Claim, taskDefinitionKey string, variables map[string]interface{}) error {
	if aClaim.CaseInstanceID == "" {
		log.Printf("orchestrator: claim %v has no case instance, skipping %v completion", aClaim.ID, taskDefinitionKey)
		return nil
	}
	err := s.engine.CompleteTask(ctx, aClaim.CaseInstanceID, taskDefinitionKey, variables)
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrNoActiveTask) {
		log.Printf("orchestrator: no active %v task on case instance %v, continuing", taskDefinitionKey, aClaim.CaseInstanceID)
		return nil
	}
	return fmt.Errorf("failed to complete %v task: %w", taskDefinitionKey, err)
}

// nextClaimNumber produces CLM + yyyyMMdd + a 4-digit daily sequence.
func (s *Service) nextClaimNumber(ctx context.Context) (string, error) {
	now := clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := s.claims.CountCreatedAfter(ctx, midnight)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CLM%v%04d", now.Format("20060102"), count+1), nil
}

func (s *Service) loadClaim(ctx context.Context, claimID string) (*claim.Claim, error) {
	aClaim, err := s.claims.Load(ctx, claimID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrClaimNotFound, claimID)
		}
		return nil, err
	}
	return aClaim, nil
}

func (s *Service) loadUser(ctx context.Context, userID string) (*user.User, error) {
	aUser, err := s.users.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUserNotFound, userID)
		}
		return nil, err
	}
	return aUser, nil
}
