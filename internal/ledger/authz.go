package ledger

import (
	"context"

	"vitalis/internal/record"
	"vitalis/pkg/domain"
)

// Permission names one gated ledger operation.
type Permission string

const (
	PermManageRoles    Permission = "manage-roles"
	PermBindIdentity   Permission = "bind-identity"
	PermVerifyRecord   Permission = "verify-record"
	PermAttachMemorial Permission = "attach-memorial"
)

// PermissionSet is the evaluated authorization of one caller against one
// (optional) record.
type PermissionSet map[Permission]bool

// permissionsFor is the single authorization predicate: it evaluates the
// caller's roles and, when a record is supplied, ownership and authorship,
// and returns the operations the caller may perform. All gated facade
// operations consult this and nothing else.
func (s *Service) permissionsFor(ctx context.Context, caller domain.AccountID, rec *record.Record) (PermissionSet, error) {
	admin, err := s.roles.Has(ctx, domain.RoleAdministrator, caller)
	if err != nil {
		return nil, err
	}
	issuer, err := s.roles.Has(ctx, domain.RoleVerifiedIssuer, caller)
	if err != nil {
		return nil, err
	}
	verifier, err := s.roles.Has(ctx, domain.RoleDAOVerifier, caller)
	if err != nil {
		return nil, err
	}

	perms := PermissionSet{
		PermManageRoles:  admin,
		PermBindIdentity: issuer || admin,
		PermVerifyRecord: verifier || issuer,
	}
	if rec != nil {
		perms[PermAttachMemorial] = issuer || caller == rec.Owner || caller == rec.Author
	}
	return perms, nil
}
