// Package memory provides the in-memory claim store used by default wiring
// and tests. Saves are guarded by a per-record version check so that a
// listener and an orchestrator operation racing on the same claim cannot
// silently overwrite each other.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/dao/criteria"
)

// Service implements an in-memory claim storage.  All operations are
// thread-safe and return **copies** of the underlying objects to prevent
// data races when callers mutate the returned instances.
type Service struct {
	claims map[string]*claim.Claim
	mux    sync.RWMutex
}

// Compile-time check that Service implements the generic DAO interface.
var _ dao.Service[string, claim.Claim] = (*Service)(nil)

// Save persists (a clone of) the supplied claim. A record whose version does
// not match the stored one fails with dao.ErrVersionConflict; the stored
// version is bumped on success so the caller's copy stays current via the
// claim's own Version field.
func (s *Service) Save(_ context.Context, c *claim.Claim) error {
	if c == nil {
		return dao.ErrNilEntity
	}
	if c.ID == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if existing, ok := s.claims[c.ID]; ok && existing.Version >= c.Version {
		return dao.ErrVersionConflict
	}
	s.claims[c.ID] = c.Clone()
	return nil
}

// Load retrieves a copy of the claim or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, id string) (*claim.Claim, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	c, ok := s.claims[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return c.Clone(), nil
}

// Delete removes a claim.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.claims[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.claims, id)
	return nil
}

// List returns copies of all claims, optionally filtered by a Status
// parameter.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*claim.Claim, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*claim.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		if !criteria.FilterByStatus(string(c.Status), parameters) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out, nil
}

// FindByCaseInstanceID returns the claim correlated with the supplied engine
// run, or dao.ErrNotFound when no claim carries that correlation yet.
func (s *Service) FindByCaseInstanceID(_ context.Context, caseInstanceID string) (*claim.Claim, error) {
	if caseInstanceID == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	defer s.mux.RUnlock()

	for _, c := range s.claims {
		if c.CaseInstanceID == caseInstanceID {
			return c.Clone(), nil
		}
	}
	return nil, dao.ErrNotFound
}

// FindByClaimNumber returns the claim with the supplied business identifier.
func (s *Service) FindByClaimNumber(_ context.Context, claimNumber string) (*claim.Claim, error) {
	if claimNumber == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	defer s.mux.RUnlock()

	for _, c := range s.claims {
		if c.ClaimNumber == claimNumber {
			return c.Clone(), nil
		}
	}
	return nil, dao.ErrNotFound
}

// CountByStatus returns the number of claims currently in the given status.
func (s *Service) CountByStatus(_ context.Context, status claim.Status) (int, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	count := 0
	for _, c := range s.claims {
		if c.Status == status {
			count++
		}
	}
	return count, nil
}

// CountCreatedAfter returns the number of claims created at or after the
// supplied instant; the orchestrator uses it for daily claim-number
// sequencing.
func (s *Service) CountCreatedAfter(_ context.Context, after time.Time) (int, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	count := 0
	for _, c := range s.claims {
		if !c.CreatedAt.Before(after) {
			count++
		}
	}
	return count, nil
}

// New constructor.
func New() *Service {
	return &Service{claims: map[string]*claim.Claim{}}
}
