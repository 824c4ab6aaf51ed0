// Package resolver maps engine run identifiers to persisted claims.
//
// Engine notifications may arrive before the orchestrator has written back
// the case instance id (a race inherent to starting an external run and
// persisting its id), so resolution is a two-step lookup: primary
// correlation by case instance id, then the claimCaseId variable carried on
// the run from the moment of start.
package resolver

import (
	"context"
	"errors"

	"github.com/viant/claimflow/internal/idgen"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/model/lifecycle"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/toolbox"
)

// ErrUnresolved is returned when neither lookup path identifies a claim.
// Callers log and drop the notification; some notifications legitimately
// precede correlation, so this is not fatal.
var ErrUnresolved = errors.New("resolver: claim unresolved")

// ClaimFinder is the store surface resolution needs.
type ClaimFinder interface {
	Load(ctx context.Context, id string) (*claim.Claim, error)
	FindByCaseInstanceID(ctx context.Context, caseInstanceID string) (*claim.Claim, error)
}

// Service resolves notifications to claims.
type Service struct {
	claims ClaimFinder
}

// New constructor.
func New(claims ClaimFinder) *Service {
	return &Service{claims: claims}
}

// Resolve returns the claim owning the notification, trying the case
// instance id first and falling back to the claimCaseId run variable.
func (s *Service) Resolve(ctx context.Context, runID string, variables map[string]interface{}) (*claim.Claim, error) {
	if runID != "" {
		resolved, err := s.claims.FindByCaseInstanceID(ctx, runID)
		if err == nil {
			return resolved, nil
		}
		if !errors.Is(err, dao.ErrNotFound) {
			return nil, err
		}
	}

	value, ok := variables[lifecycle.VarClaimCaseID]
	if !ok || value == nil {
		return nil, ErrUnresolved
	}
	claimID := toolbox.AsString(value)
	if !idgen.Parse(claimID) {
		return nil, ErrUnresolved
	}

	resolved, err := s.claims.Load(ctx, claimID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, ErrUnresolved
		}
		return nil, err
	}
	return resolved, nil
}

// ResolveByCaseInstanceID resolves strictly by the primary correlation id,
// with no variable fallback. The payment sub-workflow always starts with
// the correlation already known, so a miss there is simply unresolved.
func (s *Service) ResolveByCaseInstanceID(ctx context.Context, caseInstanceID string) (*claim.Claim, error) {
	if caseInstanceID == "" {
		return nil, ErrUnresolved
	}
	resolved, err := s.claims.FindByCaseInstanceID(ctx, caseInstanceID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, ErrUnresolved
		}
		return nil, err
	}
	return resolved, nil
}
