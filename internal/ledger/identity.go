package ledger

import (
	"context"

	"vitalis/internal/audit"
	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
)

// Bind durably associates an external identity with an account. Caller must
// hold verified-issuer or administrator. Neither side of the bijection can
// ever be reassigned.
func (s *Service) Bind(ctx context.Context, caller domain.AccountID, nid domain.NationalID, account domain.AccountID) error {
	err := s.mutate(ctx, "ledger.bind", func(ctx context.Context) error {
		perms, err := s.permissionsFor(ctx, caller, nil)
		if err != nil {
			return err
		}
		if !perms[PermBindIdentity] {
			return domainerrors.New(domainerrors.CodeNotAuthorized,
				"caller is neither a verified issuer nor an administrator")
		}
		return s.identity.Bind(ctx, nid, account)
	})
	if err != nil {
		return err
	}
	s.metrics.IdentitiesBound.Inc()
	s.publisher.Emit(ctx, audit.OpIdentityBound, nid.String(), caller)
	return nil
}

// LookupAccount resolves the account bound to an external identity.
func (s *Service) LookupAccount(ctx context.Context, nid domain.NationalID) (domain.AccountID, error) {
	return s.identity.LookupAccount(ctx, nid)
}

// LookupNationalID resolves the external identity bound to an account.
func (s *Service) LookupNationalID(ctx context.Context, account domain.AccountID) (domain.NationalID, error) {
	return s.identity.LookupNationalID(ctx, account)
}
