// Package sync translates engine plan-item lifecycle notifications into
// claim status updates. The listener is a stateless translator invoked once
// per notification; all coordination happens through the claim store's
// per-record version check, so concurrent delivery for the same run is safe.
package sync

import (
	"context"
	"errors"
	"log"

	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/model/lifecycle"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/engine"
	"github.com/viant/claimflow/service/resolver"
	"github.com/viant/claimflow/service/sync/expression"
)

// engineActor marks history entries produced by engine-driven transitions.
const engineActor = "engine"

// saveAttempts bounds version-conflict retries of the read-modify-write
// cycle; delivery is at-least-once so a dropped notification redelivers.
const saveAttempts = 2

// ClaimStore is the store surface the listener needs.
type ClaimStore interface {
	Load(ctx context.Context, id string) (*claim.Claim, error)
	Save(ctx context.Context, c *claim.Claim) error
}

// Service applies lifecycle notifications to claims.
type Service struct {
	claims   ClaimStore
	resolver *resolver.Service
	engine   engine.Service
}

// New constructor.
func New(claims ClaimStore, resolverSvc *resolver.Service, engineSvc engine.Service) *Service {
	return &Service{claims: claims, resolver: resolverSvc, engine: engineSvc}
}

// Handle processes a single plan-item transition. Notifications that cannot
// be applied (unresolved identity, invalid status value, illegal edge) are
// logged and dropped; there is no caller to surface them to. A non-nil
// error signals an infrastructure failure worth redelivery.
func (s *Service) Handle(ctx context.Context, transition *lifecycle.PlanItemTransition) error {
	if transition == nil || transition.StatusExpr == "" {
		// This state change is not configured to drive claim status.
		return nil
	}

	value, err := expression.Evaluate(transition.StatusExpr, transition.Variables)
	if err != nil || value == "" {
		log.Printf("sync: unusable status expression %q on run %v: %v", transition.StatusExpr, transition.RunID, err)
		return nil
	}
	target, err := claim.ParseStatus(value)
	if err != nil {
		log.Printf("sync: invalid status value %q on run %v (element %v)", value, transition.RunID, transition.ElementName)
		return nil
	}

	resolved, err := s.resolver.Resolve(ctx, transition.RunID, transition.Variables)
	if err != nil {
		if errors.Is(err, resolver.ErrUnresolved) {
			log.Printf("sync: no claim resolved for run %v, dropping %v notification", transition.RunID, target)
			return nil
		}
		return err
	}

	return s.apply(ctx, resolved, target, transition)
}

// apply performs the guarded read-modify-write. The claim status is re-read
// immediately before each write so a stale or duplicate notification cannot
// retroactively undo a newer state.
func (s *Service) apply(ctx context.Context, current *claim.Claim, target claim.Status, transition *lifecycle.PlanItemTransition) error {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		if attempt > 0 {
			reread, err := s.claims.Load(ctx, current.ID)
			if err != nil {
				return err
			}
			current = reread
		}

		if current.Status == target {
			// Duplicate delivery; already applied.
			return nil
		}
		if err := current.Transition(target, "Engine element "+transition.ElementName, engineActor); err != nil {
			log.Printf("sync: dropping %v -> %v for claim %v: %v", current.Status, target, current.ID, err)
			return nil
		}

		err := s.claims.Save(ctx, current)
		if err == nil {
			s.afterApply(ctx, current, target)
			return nil
		}
		if errors.Is(err, dao.ErrVersionConflict) {
			continue
		}
		return err
	}
	log.Printf("sync: giving up on %v for claim %v after version conflicts", target, current.ID)
	return nil
}

// afterApply runs side effects bundled with a committed status change.
func (s *Service) afterApply(ctx context.Context, updated *claim.Claim, target claim.Status) {
	if target != claim.StatusClosed || updated.CaseInstanceID == "" {
		return
	}
	// Best effort: the claim is closed regardless of engine teardown.
	if err := s.engine.TerminateCaseInstance(ctx, updated.CaseInstanceID); err != nil {
		log.Printf("sync: failed to terminate case instance %v: %v", updated.CaseInstanceID, err)
	}
}
