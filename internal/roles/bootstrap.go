package roles

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
)

// Bootstrap lists the initial role grants applied at system initialization.
// It must name at least one administrator; the ledger refuses to start
// without one, and refuses to re-apply a bootstrap once administrators exist.
type Bootstrap struct {
	Administrators  []string `yaml:"administrators"`
	VerifiedIssuers []string `yaml:"verified_issuers"`
	DAOVerifiers    []string `yaml:"dao_verifiers"`
}

// LoadBootstrap reads and parses a bootstrap grants file.
func LoadBootstrap(path string) (Bootstrap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Bootstrap{}, fmt.Errorf("read bootstrap file: %w", err)
	}
	var b Bootstrap
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return Bootstrap{}, fmt.Errorf("parse bootstrap file: %w", err)
	}
	return b, nil
}

// ApplyBootstrap grants the initial roles exactly once. If any administrator
// grant already exists the bootstrap was applied before and this call is a
// no-op, so restarts are safe.
func (r *Registry) ApplyBootstrap(ctx context.Context, b Bootstrap) error {
	if len(b.Administrators) == 0 {
		return domainerrors.New(domainerrors.CodeInvalidInput,
			"bootstrap must name at least one administrator")
	}
	n, err := r.store.Count(ctx, domain.RoleAdministrator)
	if err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "bootstrap", err)
	}
	if n > 0 {
		return nil
	}
	for role, accounts := range map[domain.Role][]string{
		domain.RoleAdministrator:  b.Administrators,
		domain.RoleVerifiedIssuer: b.VerifiedIssuers,
		domain.RoleDAOVerifier:    b.DAOVerifiers,
	} {
		for _, raw := range accounts {
			account, err := domain.ParseAccountID(raw)
			if err != nil {
				return domainerrors.Newf(domainerrors.CodeInvalidInput,
					"bootstrap %s grant: %v", role, err)
			}
			if err := r.Grant(ctx, role, account); err != nil {
				return err
			}
		}
	}
	return nil
}
