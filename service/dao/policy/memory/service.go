// Package memory provides the in-memory policy store.
package memory

import (
	"context"

	"github.com/viant/claimflow/model/policy"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/dao/store"
)

// Service stores policies in memory. Policies are read-only decision inputs,
// so no version guard is needed.
type Service struct {
	*store.MemoryStore[string, policy.Policy]
}

var _ dao.Service[string, policy.Policy] = (*Service)(nil)

// FindByNumber returns the policy with the supplied policy number.
func (s *Service) FindByNumber(ctx context.Context, policyNumber string) (*policy.Policy, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.PolicyNumber == policyNumber {
			return p, nil
		}
	}
	return nil, dao.ErrNotFound
}

// New constructor.
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, policy.Policy](func(p *policy.Policy) string {
		return p.ID
	})}
}
