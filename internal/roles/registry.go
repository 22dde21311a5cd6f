package roles

import (
	"context"

	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
)

// Registry wraps a Store with the grant semantics the ledger relies on:
// granting an already-held role is a no-op, revoking an absent grant is a
// no-op, and the last administrator grant can never be revoked. Caller
// authorization is the facade's job, not this package's.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Grant adds a (role, account) pair. Idempotent.
func (r *Registry) Grant(ctx context.Context, role domain.Role, account domain.AccountID) error {
	if err := validate(role, account); err != nil {
		return err
	}
	if err := r.store.Add(ctx, role, account); err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "grant role", err)
	}
	return nil
}

// Revoke removes a (role, account) pair. Revoking the last administrator
// grant fails: the system must never be left without an administrator.
func (r *Registry) Revoke(ctx context.Context, role domain.Role, account domain.AccountID) error {
	if err := validate(role, account); err != nil {
		return err
	}
	if role == domain.RoleAdministrator {
		held, err := r.store.Has(ctx, role, account)
		if err != nil {
			return domainerrors.Wrap(domainerrors.CodeInternal, "revoke role", err)
		}
		if held {
			n, err := r.store.Count(ctx, role)
			if err != nil {
				return domainerrors.Wrap(domainerrors.CodeInternal, "revoke role", err)
			}
			if n <= 1 {
				return domainerrors.New(domainerrors.CodeInvariantViolation,
					"cannot revoke the last administrator")
			}
		}
	}
	if err := r.store.Remove(ctx, role, account); err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "revoke role", err)
	}
	return nil
}

// Has reports whether account holds role. Pure lookup, no side effects.
func (r *Registry) Has(ctx context.Context, role domain.Role, account domain.AccountID) (bool, error) {
	held, err := r.store.Has(ctx, role, account)
	if err != nil {
		return false, domainerrors.Wrap(domainerrors.CodeInternal, "check role", err)
	}
	return held, nil
}

func validate(role domain.Role, account domain.AccountID) error {
	if !domain.KnownRole(role) {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "unknown role %q", role)
	}
	if account.IsNil() {
		return domainerrors.New(domainerrors.CodeInvalidInput, "account is required")
	}
	return nil
}
