package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewRegistry(NewInMemoryStore())
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) TestGrant() {
	ctx := context.Background()
	account := domain.NewAccountID()

	s.Run("grant then has", func() {
		s.Require().NoError(s.registry.Grant(ctx, domain.RoleVerifiedIssuer, account))

		held, err := s.registry.Has(ctx, domain.RoleVerifiedIssuer, account)
		s.Require().NoError(err)
		s.True(held)
	})

	s.Run("granting an already-held role is a no-op", func() {
		s.Require().NoError(s.registry.Grant(ctx, domain.RoleVerifiedIssuer, account))
		s.Require().NoError(s.registry.Grant(ctx, domain.RoleVerifiedIssuer, account))

		held, err := s.registry.Has(ctx, domain.RoleVerifiedIssuer, account)
		s.Require().NoError(err)
		s.True(held)
	})

	s.Run("unknown role is rejected", func() {
		err := s.registry.Grant(ctx, domain.Role("superuser"), account)
		s.Require().ErrorIs(err, domainerrors.New(domainerrors.CodeInvalidInput, ""))
	})

	s.Run("nil account is rejected", func() {
		err := s.registry.Grant(ctx, domain.RoleAdministrator, domain.NilAccount)
		s.Require().ErrorIs(err, domainerrors.New(domainerrors.CodeInvalidInput, ""))
	})
}

func (s *RegistrySuite) TestRevoke() {
	ctx := context.Background()

	s.Run("revoking a held role removes it", func() {
		account := domain.NewAccountID()
		s.Require().NoError(s.registry.Grant(ctx, domain.RoleDAOVerifier, account))
		s.Require().NoError(s.registry.Revoke(ctx, domain.RoleDAOVerifier, account))

		held, err := s.registry.Has(ctx, domain.RoleDAOVerifier, account)
		s.Require().NoError(err)
		s.False(held)
	})

	s.Run("revoking an absent grant is a no-op", func() {
		s.Require().NoError(s.registry.Revoke(ctx, domain.RoleDAOVerifier, domain.NewAccountID()))
	})

	s.Run("last administrator cannot be revoked", func() {
		admin := domain.NewAccountID()
		s.Require().NoError(s.registry.Grant(ctx, domain.RoleAdministrator, admin))

		err := s.registry.Revoke(ctx, domain.RoleAdministrator, admin)
		s.Require().ErrorIs(err, domainerrors.New(domainerrors.CodeInvariantViolation, ""))

		held, hasErr := s.registry.Has(ctx, domain.RoleAdministrator, admin)
		s.Require().NoError(hasErr)
		s.True(held)
	})

	s.Run("an administrator can be revoked while another remains", func() {
		first := domain.NewAccountID()
		second := domain.NewAccountID()
		s.Require().NoError(s.registry.Grant(ctx, domain.RoleAdministrator, first))
		s.Require().NoError(s.registry.Grant(ctx, domain.RoleAdministrator, second))

		s.Require().NoError(s.registry.Revoke(ctx, domain.RoleAdministrator, second))

		held, err := s.registry.Has(ctx, domain.RoleAdministrator, first)
		s.Require().NoError(err)
		s.True(held)
	})
}

func (s *RegistrySuite) TestBootstrap() {
	ctx := context.Background()
	admin := domain.NewAccountID()
	issuer := domain.NewAccountID()

	s.Run("applies initial grants", func() {
		b := Bootstrap{
			Administrators:  []string{admin.String()},
			VerifiedIssuers: []string{issuer.String()},
		}
		s.Require().NoError(s.registry.ApplyBootstrap(ctx, b))

		held, err := s.registry.Has(ctx, domain.RoleAdministrator, admin)
		s.Require().NoError(err)
		s.True(held)
		held, err = s.registry.Has(ctx, domain.RoleVerifiedIssuer, issuer)
		s.Require().NoError(err)
		s.True(held)
	})

	s.Run("second application is a no-op", func() {
		other := domain.NewAccountID()
		b := Bootstrap{Administrators: []string{other.String()}}
		s.Require().NoError(s.registry.ApplyBootstrap(ctx, b))

		held, err := s.registry.Has(ctx, domain.RoleAdministrator, other)
		s.Require().NoError(err)
		s.False(held)
	})

	s.Run("requires at least one administrator", func() {
		registry := NewRegistry(NewInMemoryStore())
		err := registry.ApplyBootstrap(ctx, Bootstrap{})
		s.Require().ErrorIs(err, domainerrors.New(domainerrors.CodeInvalidInput, ""))
	})
}
