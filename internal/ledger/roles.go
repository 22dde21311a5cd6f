package ledger

import (
	"context"

	"vitalis/internal/audit"
	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
)

// GrantRole grants role to account. Caller must hold administrator. Granting
// an already-held role is a no-op, not an error, so caller-side retries are
// safe.
func (s *Service) GrantRole(ctx context.Context, caller domain.AccountID, role domain.Role, account domain.AccountID) error {
	err := s.mutate(ctx, "ledger.grant_role", func(ctx context.Context) error {
		perms, err := s.permissionsFor(ctx, caller, nil)
		if err != nil {
			return err
		}
		if !perms[PermManageRoles] {
			return domainerrors.New(domainerrors.CodeNotAuthorized, "caller is not an administrator")
		}
		return s.roles.Grant(ctx, role, account)
	})
	if err != nil {
		return err
	}
	s.publisher.Emit(ctx, audit.OpRoleGranted, string(role)+"/"+account.String(), caller)
	return nil
}

// RevokeRole revokes role from account. Caller must hold administrator;
// revoking the last administrator fails with InvariantViolation.
func (s *Service) RevokeRole(ctx context.Context, caller domain.AccountID, role domain.Role, account domain.AccountID) error {
	err := s.mutate(ctx, "ledger.revoke_role", func(ctx context.Context) error {
		perms, err := s.permissionsFor(ctx, caller, nil)
		if err != nil {
			return err
		}
		if !perms[PermManageRoles] {
			return domainerrors.New(domainerrors.CodeNotAuthorized, "caller is not an administrator")
		}
		return s.roles.Revoke(ctx, role, account)
	})
	if err != nil {
		return err
	}
	s.publisher.Emit(ctx, audit.OpRoleRevoked, string(role)+"/"+account.String(), caller)
	return nil
}

// HasRole reports whether account holds role. Pure lookup; no authorization
// required.
func (s *Service) HasRole(ctx context.Context, role domain.Role, account domain.AccountID) (bool, error) {
	return s.roles.Has(ctx, role, account)
}
