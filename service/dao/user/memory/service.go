// Package memory provides the in-memory user store.
package memory

import (
	"context"

	"github.com/viant/claimflow/model/user"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/dao/store"
)

// Service stores users in memory.
type Service struct {
	*store.MemoryStore[string, user.User]
}

var _ dao.Service[string, user.User] = (*Service)(nil)

// FindByUsername returns the user with the supplied username.
func (s *Service) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, dao.ErrNotFound
}

// New constructor.
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, user.User](func(u *user.User) string {
		return u.ID
	})}
}
