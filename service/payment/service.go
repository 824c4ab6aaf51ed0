// Package payment reconciles activity events of the nested payment process
// into claim payment status. The sub-workflow runs under its own process id
// and carries the owning case instance id as a variable, so resolution is
// strict: no correlation, no update.
package payment

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/viant/claimflow/internal/clock"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/model/lifecycle"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/resolver"
	"github.com/viant/structology/conv"
	"github.com/viant/toolbox"
)

const listenerActor = "payment-engine"

// saveAttempts bounds version-conflict retries; redelivery covers the rest.
const saveAttempts = 2

// ClaimStore is the store surface the listener needs.
type ClaimStore interface {
	Load(ctx context.Context, id string) (*claim.Claim, error)
	Save(ctx context.Context, c *claim.Claim) error
}

// Service applies payment activity events to claims.
type Service struct {
	claims    ClaimStore
	resolver  *resolver.Service
	converter *conv.Converter
}

// New constructor.
func New(claims ClaimStore, resolverSvc *resolver.Service) *Service {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	return &Service{
		claims:    claims,
		resolver:  resolverSvc,
		converter: conv.NewConverter(options),
	}
}

// outcome is the typed view of the sub-workflow's output variables.
type outcome struct {
	TransactionID string  `json:"transactionId"`
	PaymentDate   string  `json:"paymentDate"`
	Amount        float64 `json:"amount"`
	PaymentStatus string  `json:"paymentStatus"`
	RejectReason  string  `json:"rejectionReason"`
}

// Handle processes a single activity event. Unresolved correlation is logged
// and dropped; a non-nil error signals an infrastructure failure worth
// redelivery.
func (s *Service) Handle(ctx context.Context, event *lifecycle.ActivityEvent) error {
	if event == nil {
		return nil
	}
	caseInstanceID := event.CaseInstanceID()
	resolved, err := s.resolver.ResolveByCaseInstanceID(ctx, caseInstanceID)
	if err != nil {
		if errors.Is(err, resolver.ErrUnresolved) {
			log.Printf("payment: no claim for case instance %q, dropping %v %v", caseInstanceID, event.EventName, event.ActivityID)
			return nil
		}
		return err
	}

	switch event.EventName {
	case lifecycle.EventStart:
		return s.onActivityStart(ctx, resolved, event)
	case lifecycle.EventEnd:
		return s.onActivityEnd(ctx, resolved, event)
	}
	return nil
}

// onActivityStart tracks progress through the sub-workflow. Entering a
// handling activity for rejection or dispute flips the payment status;
// everything else keeps it at PROCESSING.
func (s *Service) onActivityStart(ctx context.Context, current *claim.Claim, event *lifecycle.ActivityEvent) error {
	var target claim.PaymentStatus
	switch event.ActivityID {
	case lifecycle.ActivityPaymentStart, lifecycle.ActivityValidatePayment,
		lifecycle.ActivityExecutePayment, lifecycle.ActivityConfirmPayment:
		target = claim.PaymentProcessing
	case lifecycle.ActivityPaymentRejected:
		target = claim.PaymentRejected
	case lifecycle.ActivityHandleDispute:
		target = claim.PaymentDisputed
	default:
		return nil
	}
	return s.apply(ctx, current, func(c *claim.Claim) bool {
		if c.PaymentStatus == target {
			return false
		}
		c.PaymentStatus = target
		c.Touch()
		return true
	})
}

// onActivityEnd applies the terminal branching of the sub-workflow.
func (s *Service) onActivityEnd(ctx context.Context, current *claim.Claim, event *lifecycle.ActivityEvent) error {
	switch event.ActivityID {
	case lifecycle.ActivityPaymentSuccess:
		return s.onSuccess(ctx, current, event)
	case lifecycle.ActivityPaymentFailed:
		return s.onFailure(ctx, current, event)
	}
	return nil
}

// onSuccess marks the claim paid, capturing the transaction reference,
// payment date and paid amount reported by the sub-workflow.
func (s *Service) onSuccess(ctx context.Context, current *claim.Claim, event *lifecycle.ActivityEvent) error {
	result := s.bind(event.Variables)
	return s.apply(ctx, current, func(c *claim.Claim) bool {
		if c.PaymentStatus == claim.PaymentPaid && c.Status == claim.StatusPaid {
			return false
		}
		c.PaymentStatus = claim.PaymentPaid
		if c.Status != claim.StatusPaid {
			if err := c.Transition(claim.StatusPaid, "Payment completed by sub-workflow", listenerActor); err != nil {
				log.Printf("payment: dropping PAID for claim %v: %v", c.ID, err)
				return false
			}
		} else {
			c.Touch()
		}
		if result.TransactionID != "" {
			c.TransactionID = result.TransactionID
		}
		if date, ok := parseDate(result.PaymentDate); ok {
			c.PaymentDate = &date
		} else if c.PaymentDate == nil {
			now := clock.Now()
			c.PaymentDate = &now
		}
		if result.Amount > 0 {
			amount := result.Amount
			c.PaidAmount = &amount
		}
		return true
	})
}

// onFailure branches on the paymentStatus output variable. A rejected
// payment is authoritative about the claim outcome and forces REJECTED even
// though the machine has no PAYMENT_PROCESSING edge there; dispute and
// unclassified failures only update the payment status and leave the claim
// in PAYMENT_PROCESSING for manual follow-up.
func (s *Service) onFailure(ctx context.Context, current *claim.Claim, event *lifecycle.ActivityEvent) error {
	result := s.bind(event.Variables)
	switch result.PaymentStatus {
	case "rejected":
		return s.apply(ctx, current, func(c *claim.Claim) bool {
			if c.PaymentStatus == claim.PaymentRejected && c.Status == claim.StatusRejected {
				return false
			}
			c.PaymentStatus = claim.PaymentRejected
			if c.Status != claim.StatusRejected {
				reason := result.RejectReason
				if reason == "" {
					reason = "Payment rejected by sub-workflow"
				}
				c.Status = claim.StatusRejected
				c.AddHistory(claim.ActionPaymentRejected, reason, listenerActor)
			}
			c.Touch()
			return true
		})
	case "disputed":
		return s.apply(ctx, current, func(c *claim.Claim) bool {
			if c.PaymentStatus == claim.PaymentDisputed {
				return false
			}
			c.PaymentStatus = claim.PaymentDisputed
			c.Touch()
			return true
		})
	default:
		return s.apply(ctx, current, func(c *claim.Claim) bool {
			if c.PaymentStatus == claim.PaymentFailed {
				return false
			}
			c.PaymentStatus = claim.PaymentFailed
			c.Touch()
			return true
		})
	}
}

// apply runs the guarded read-modify-write. mutate returns false when the
// event was already applied; the record is re-read before each retry so a
// duplicate or stale event cannot undo a newer state.
func (s *Service) apply(ctx context.Context, current *claim.Claim, mutate func(c *claim.Claim) bool) error {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		if attempt > 0 {
			reread, err := s.claims.Load(ctx, current.ID)
			if err != nil {
				return err
			}
			current = reread
		}
		if !mutate(current) {
			return nil
		}
		err := s.claims.Save(ctx, current)
		if err == nil {
			return nil
		}
		if errors.Is(err, dao.ErrVersionConflict) {
			continue
		}
		return err
	}
	log.Printf("payment: giving up on claim %v after version conflicts", current.ID)
	return nil
}

// bind converts the loosely typed variable bag into the outcome view.
func (s *Service) bind(variables map[string]interface{}) *outcome {
	result := &outcome{}
	if len(variables) == 0 {
		return result
	}
	if err := s.converter.Convert(variables, result); err != nil {
		// Fall back to per-key coercion; a single malformed value must not
		// discard the rest of the outcome.
		if v, ok := variables[lifecycle.VarTransactionID]; ok && v != nil {
			result.TransactionID = toolbox.AsString(v)
		}
		if v, ok := variables["paymentDate"]; ok && v != nil {
			result.PaymentDate = toolbox.AsString(v)
		}
		if v, ok := variables[lifecycle.VarAmount]; ok && v != nil {
			result.Amount = toolbox.AsFloat(v)
		}
		if v, ok := variables[lifecycle.VarPaymentStatus]; ok && v != nil {
			result.PaymentStatus = toolbox.AsString(v)
		}
		if v, ok := variables[lifecycle.VarRejectReason]; ok && v != nil {
			result.RejectReason = toolbox.AsString(v)
		}
	}
	return result
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
