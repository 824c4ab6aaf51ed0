package claim

import "fmt"

// Status represents the lifecycle state of a claim. Transitions are only
// legal along the edges encoded in CanTransitionTo; callers must check the
// predicate (or use Claim.Transition) rather than assigning the field
// directly.
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusSubmitted         Status = "SUBMITTED"
	StatusUnderReview       Status = "UNDER_REVIEW"
	StatusInvestigating     Status = "INVESTIGATING"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusPaymentProcessing Status = "PAYMENT_PROCESSING"
	StatusPaid              Status = "PAID"
	StatusClosed            Status = "CLOSED"
	StatusCancelled         Status = "CANCELLED"
)

// ParseStatus converts a raw value into a Status or fails with
// ErrInvalidStatus when the value is not a recognized member.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusInvestigating,
		StatusApproved, StatusRejected, StatusPaymentProcessing, StatusPaid,
		StatusClosed, StatusCancelled:
		return Status(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// CanTransitionTo reports whether the edge from s to target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSubmitted || target == StatusCancelled
	case StatusSubmitted:
		return target == StatusUnderReview || target == StatusCancelled
	case StatusUnderReview:
		return target == StatusInvestigating || target == StatusApproved ||
			target == StatusRejected || target == StatusCancelled
	case StatusInvestigating:
		return target == StatusApproved || target == StatusRejected ||
			target == StatusCancelled
	case StatusApproved:
		return target == StatusPaymentProcessing || target == StatusCancelled
	case StatusPaymentProcessing:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusClosed
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusClosed || s == StatusCancelled
}

// PaymentStatus tracks the nested payment sub-workflow independently of the
// claim status. It is meaningful only once the claim has entered
// PAYMENT_PROCESSING.
type PaymentStatus string

const (
	PaymentNotStarted PaymentStatus = "NOT_STARTED"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentPaid       PaymentStatus = "PAID"
	PaymentRejected   PaymentStatus = "PAYMENT_REJECTED"
	PaymentFailed     PaymentStatus = "PAYMENT_FAILED"
	PaymentDisputed   PaymentStatus = "DISPUTED"
)

// Severity classifies how urgent a claim is; it is one of the decision-table
// inputs consumed by the engine's complexity assessment.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Claim type constants.
const (
	TypeVehicle        = "VEHICLE"
	TypeProperty       = "PROPERTY"
	TypePersonalInjury = "PERSONAL_INJURY"
	TypeMedical        = "MEDICAL"
	TypeTravel         = "TRAVEL"
	TypeOther          = "OTHER"
)
