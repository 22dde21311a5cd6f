// Package identity maintains the bijection between external identity tokens
// (national ids) and accounts. A binding is created once and never reassigned
// on either side.
package identity

import (
	"context"

	"vitalis/pkg/domain"
)

// Binding pairs an external identity with its owning account.
type Binding struct {
	NationalID domain.NationalID
	Account    domain.AccountID
}

// Store persists bindings. Insert must reject, with sentinel.ErrConflict, any
// write that would break the bijection; the check and the insert must be
// atomic with respect to concurrent inserts.
type Store interface {
	Insert(ctx context.Context, b Binding) error
	FindByNationalID(ctx context.Context, nid domain.NationalID) (Binding, error)
	FindByAccount(ctx context.Context, account domain.AccountID) (Binding, error)
}
