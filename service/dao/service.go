// Package dao defines the persistence abstraction shared by all entity
// stores. Implementations must be safe for concurrent use and return copies
// of stored entities so callers can mutate results freely.
package dao

import (
	"context"
)

type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
