// Package lifecycle defines the notification payloads emitted by the
// external orchestration engine. Delivery is at-least-once and unordered;
// consumers must treat notifications as idempotent updates.
package lifecycle

import "time"

// Variable keys shared across the engine contract.
const (
	VarClaimCaseID    = "claimCaseId"
	VarCaseInstanceID = "caseInstanceId"
	VarPaymentStatus  = "paymentStatus"
	VarTransactionID  = "transactionId"
	VarAmount         = "amount"
	VarRejectReason   = "rejectionReason"
)

// PlanItemTransition notifies a case-side plan item state change.
// StatusExpr, when non-empty, is the configured target-status expression;
// transitions without one do not drive claim status.
type PlanItemTransition struct {
	RunID       string                 `json:"runId"`
	ElementName string                 `json:"elementName,omitempty"`
	OldState    string                 `json:"oldState"`
	NewState    string                 `json:"newState"`
	StatusExpr  string                 `json:"statusExpr,omitempty"`
	Variables   map[string]interface{} `json:"variables,omitempty"`
	OccurredAt  time.Time              `json:"occurredAt,omitempty"`
}

// Activity event names on the payment sub-workflow.
const (
	EventStart = "start"
	EventEnd   = "end"
)

// Payment sub-workflow activity identifiers.
const (
	ActivityPaymentStart    = "startEvent_paymentStart"
	ActivityValidatePayment = "userTask_validatePayment"
	ActivityExecutePayment  = "serviceTask_executePayment"
	ActivityConfirmPayment  = "userTask_confirmPayment"
	ActivityPaymentRejected = "userTask_paymentRejected"
	ActivityHandleDispute   = "userTask_handleDispute"
	ActivityPaymentSuccess  = "endEvent_paymentSuccess"
	ActivityPaymentFailed   = "endEvent_paymentFailed"
)

// ActivityEvent notifies a start/end event on the nested payment process.
// The owning case instance id travels as a process variable because the
// sub-workflow runs under its own process id.
type ActivityEvent struct {
	ProcessID  string                 `json:"processId"`
	EventName  string                 `json:"eventName"`
	ActivityID string                 `json:"activityId"`
	Variables  map[string]interface{} `json:"variables,omitempty"`
	OccurredAt time.Time              `json:"occurredAt,omitempty"`
}

// CaseInstanceID extracts the correlation variable carried by the
// sub-workflow, or empty when absent.
func (e *ActivityEvent) CaseInstanceID() string {
	if e == nil || e.Variables == nil {
		return ""
	}
	if v, ok := e.Variables[VarCaseInstanceID]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
