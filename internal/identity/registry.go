package identity

import (
	"context"
	"errors"

	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
	"vitalis/pkg/platform/sentinel"
)

// Registry exposes the binding operations over a Store. Once either side of
// a binding is set it can never be reassigned; there is no unbind in the
// base design.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Bind durably associates nid with account. Fails with AlreadyBound when
// either side of the bijection is taken.
func (r *Registry) Bind(ctx context.Context, nid domain.NationalID, account domain.AccountID) error {
	if nid.IsEmpty() {
		return domainerrors.New(domainerrors.CodeInvalidInput, "national id is required")
	}
	if account.IsNil() {
		return domainerrors.New(domainerrors.CodeInvalidInput, "account is required")
	}
	err := r.store.Insert(ctx, Binding{NationalID: nid, Account: account})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return domainerrors.New(domainerrors.CodeAlreadyBound,
				"identity or account is already bound")
		}
		return domainerrors.Wrap(domainerrors.CodeInternal, "bind identity", err)
	}
	return nil
}

// LookupAccount resolves the account bound to nid.
func (r *Registry) LookupAccount(ctx context.Context, nid domain.NationalID) (domain.AccountID, error) {
	b, err := r.store.FindByNationalID(ctx, nid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.NilAccount, domainerrors.New(domainerrors.CodeNotFound, "identity is not bound")
		}
		return domain.NilAccount, domainerrors.Wrap(domainerrors.CodeInternal, "lookup account", err)
	}
	return b.Account, nil
}

// LookupNationalID resolves the external identity bound to account.
func (r *Registry) LookupNationalID(ctx context.Context, account domain.AccountID) (domain.NationalID, error) {
	b, err := r.store.FindByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", domainerrors.New(domainerrors.CodeNotFound, "account has no bound identity")
		}
		return "", domainerrors.Wrap(domainerrors.CodeInternal, "lookup national id", err)
	}
	return b.NationalID, nil
}
