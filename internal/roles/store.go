// Package roles holds the named permission grants every other component
// consults. Authorization decisions themselves live in the ledger facade;
// this package owns the grant set and its one structural invariant: the
// administrator role is never left empty.
package roles

import (
	"context"

	"vitalis/pkg/domain"
)

// Store persists (role, account) grants. Implementations must make Add
// idempotent and Remove a no-op for grants that do not exist; the registry
// layers the invariant checks on top.
type Store interface {
	Add(ctx context.Context, role domain.Role, account domain.AccountID) error
	Remove(ctx context.Context, role domain.Role, account domain.AccountID) error
	Has(ctx context.Context, role domain.Role, account domain.AccountID) (bool, error)
	Count(ctx context.Context, role domain.Role) (int, error)
}
