package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"vitalis/internal/audit"
	"vitalis/internal/identity"
	"vitalis/internal/ledger"
	"vitalis/internal/ledger/metrics"
	"vitalis/internal/memorial"
	"vitalis/internal/proof"
	"vitalis/internal/record"
	"vitalis/internal/roles"
	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
)

var frozenNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite

	svc      *ledger.Service
	auditLog *audit.InMemoryStore
	records  *record.InMemoryStore

	cancelWorker context.CancelFunc
	workerDone   chan struct{}

	admin    domain.AccountID
	issuer   domain.AccountID
	verifier domain.AccountID
	owner    domain.AccountID
	outsider domain.AccountID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.auditLog = audit.NewInMemoryStore()
	s.records = record.NewInMemoryStore()

	publisher := audit.NewPublisher(64, logger)
	worker := audit.NewWorker(s.auditLog, nil, publisher.Events(), logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	s.cancelWorker = cancel
	s.workerDone = make(chan struct{})
	go func() {
		defer close(s.workerDone)
		_ = worker.Run(workerCtx)
	}()

	s.svc = ledger.New(ledger.Params{
		Roles:     roles.NewRegistry(roles.NewInMemoryStore()),
		Identity:  identity.NewRegistry(identity.NewInMemoryStore()),
		Proofs:    proof.NewInMemoryStore(),
		Records:   s.records,
		Memorials: memorial.NewInMemoryStore(),
		AuditLog:  s.auditLog,
		Publisher: publisher,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Logger:    logger,
		Clock:     func() time.Time { return frozenNow },
	})

	s.admin = domain.NewAccountID()
	s.issuer = domain.NewAccountID()
	s.verifier = domain.NewAccountID()
	s.owner = domain.NewAccountID()
	s.outsider = domain.NewAccountID()

	ctx := context.Background()
	s.Require().NoError(s.svc.Bootstrap(ctx, roles.Bootstrap{
		Administrators: []string{s.admin.String()},
	}))
	s.Require().NoError(s.svc.GrantRole(ctx, s.admin, domain.RoleVerifiedIssuer, s.issuer))
	s.Require().NoError(s.svc.GrantRole(ctx, s.admin, domain.RoleDAOVerifier, s.verifier))
}

func (s *ServiceSuite) TearDownTest() {
	s.cancelWorker()
	<-s.workerDone
}

func (s *ServiceSuite) createInput(commitment domain.ProofCommitment) ledger.CreateRecordInput {
	return ledger.CreateRecordInput{
		SubjectName: "Maria Silva",
		EventStart:  time.Date(1938, 2, 12, 0, 0, 0, 0, time.UTC),
		EventEnd:    time.Date(2021, 9, 3, 0, 0, 0, 0, time.UTC),
		Location:    "Porto",
		Proof:       commitment,
		Owner:       s.owner,
	}
}

// waitForAudit blocks until the worker has persisted at least n events.
func (s *ServiceSuite) waitForAudit(n int) []audit.Event {
	var events []audit.Event
	s.Require().Eventually(func() bool {
		listed, err := s.auditLog.List(context.Background(), 0)
		if err != nil || len(listed) < n {
			return false
		}
		events = listed
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return events
}

func (s *ServiceSuite) TestCreateAndGet() {
	ctx := context.Background()

	id, err := s.svc.CreateRecord(ctx, s.outsider, s.createInput("proof-1"))
	s.Require().NoError(err)
	s.Equal(domain.RecordID(1), id)

	got, err := s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.Equal("Maria Silva", got.SubjectName)
	s.Equal(time.Date(1938, 2, 12, 0, 0, 0, 0, time.UTC), got.EventStart)
	s.Equal(time.Date(2021, 9, 3, 0, 0, 0, 0, time.UTC), got.EventEnd)
	s.Equal("Porto", got.Location)
	s.Equal(s.outsider, got.Author)
	s.Equal(s.owner, got.Owner)
	s.Equal(frozenNow, got.CreatedAt)
	s.False(got.Verified, "author without verified-issuer role")

	id2, err := s.svc.CreateRecord(ctx, s.issuer, s.createInput("proof-2"))
	s.Require().NoError(err)
	s.Equal(domain.RecordID(2), id2)

	got2, err := s.svc.GetRecord(ctx, id2)
	s.Require().NoError(err)
	s.True(got2.Verified, "verified-issuer author verifies at creation")
}

func (s *ServiceSuite) TestGetRecordMissing() {
	_, err := s.svc.GetRecord(context.Background(), 42)
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func (s *ServiceSuite) TestCreateValidation() {
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*ledger.CreateRecordInput)
	}{
		{"empty subject name", func(in *ledger.CreateRecordInput) { in.SubjectName = "" }},
		{"empty proof", func(in *ledger.CreateRecordInput) { in.Proof = "" }},
		{"nil owner", func(in *ledger.CreateRecordInput) { in.Owner = domain.NilAccount }},
		{"zero start", func(in *ledger.CreateRecordInput) { in.EventStart = time.Time{} }},
		{"zero end", func(in *ledger.CreateRecordInput) { in.EventEnd = time.Time{} }},
		{"end before start", func(in *ledger.CreateRecordInput) {
			in.EventEnd = in.EventStart.Add(-time.Hour)
		}},
		{"end in the future", func(in *ledger.CreateRecordInput) {
			in.EventEnd = frozenNow.Add(time.Hour)
		}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := s.createInput("proof-validation")
			tc.mutate(&in)
			_, err := s.svc.CreateRecord(ctx, s.issuer, in)
			s.Equal(domainerrors.CodeInvalidInput, domainerrors.CodeOf(err))
		})
	}

	// None of the rejected inputs consumed the proof commitment.
	_, err := s.svc.CreateRecord(ctx, s.issuer, s.createInput("proof-validation"))
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestDuplicateProofRejected() {
	ctx := context.Background()

	_, err := s.svc.CreateRecord(ctx, s.issuer, s.createInput("proof-once"))
	s.Require().NoError(err)

	_, err = s.svc.CreateRecord(ctx, s.outsider, s.createInput("proof-once"))
	s.Equal(domainerrors.CodeDuplicateProof, domainerrors.CodeOf(err))

	count, err := s.svc.Count(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), count, "the rejected create left no record behind")
}

func (s *ServiceSuite) TestTransferAlwaysForbidden() {
	ctx := context.Background()

	id, err := s.svc.CreateRecord(ctx, s.issuer, s.createInput("proof-transfer"))
	s.Require().NoError(err)

	for name, caller := range map[string]domain.AccountID{
		"owner":         s.owner,
		"author":        s.issuer,
		"administrator": s.admin,
		"outsider":      s.outsider,
	} {
		err := s.svc.Transfer(ctx, caller, id, s.outsider)
		s.Equal(domainerrors.CodeTransferForbidden, domainerrors.CodeOf(err), name)
	}

	// Even a self-transfer to the current owner is rejected.
	err = s.svc.Transfer(ctx, s.owner, id, s.owner)
	s.Equal(domainerrors.CodeTransferForbidden, domainerrors.CodeOf(err))

	got, err := s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.Equal(s.owner, got.Owner)
}

func (s *ServiceSuite) TestTransferMissingRecord() {
	err := s.svc.Transfer(context.Background(), s.owner, 42, s.outsider)
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func (s *ServiceSuite) TestIsLocked() {
	ctx := context.Background()

	id, err := s.svc.CreateRecord(ctx, s.issuer, s.createInput("proof-locked"))
	s.Require().NoError(err)

	locked, err := s.svc.IsLocked(ctx, id)
	s.Require().NoError(err)
	s.True(locked)

	s.Require().NoError(s.svc.Verify(ctx, s.verifier, id))
	locked, err = s.svc.IsLocked(ctx, id)
	s.Require().NoError(err)
	s.True(locked, "locked status never changes")

	_, err = s.svc.IsLocked(ctx, 42)
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func (s *ServiceSuite) TestVerify() {
	ctx := context.Background()

	id, err := s.svc.CreateRecord(ctx, s.outsider, s.createInput("proof-verify"))
	s.Require().NoError(err)

	err = s.svc.Verify(ctx, s.outsider, id)
	s.Equal(domainerrors.CodeNotAuthorized, domainerrors.CodeOf(err))
	got, err := s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.False(got.Verified)

	s.Require().NoError(s.svc.Verify(ctx, s.verifier, id))
	got, err = s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.True(got.Verified)

	// Idempotent: a second verify succeeds without another audit event.
	// Two setup grants, one create and one verify have been emitted so far.
	before := s.waitForAudit(4)
	s.Require().NoError(s.svc.Verify(ctx, s.issuer, id))
	after, err := s.auditLog.List(ctx, 0)
	s.Require().NoError(err)
	s.Len(after, len(before))

	err = s.svc.Verify(ctx, s.verifier, 42)
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func (s *ServiceSuite) TestRoleManagement() {
	ctx := context.Background()
	recruit := domain.NewAccountID()

	err := s.svc.GrantRole(ctx, s.issuer, domain.RoleVerifiedIssuer, recruit)
	s.Equal(domainerrors.CodeNotAuthorized, domainerrors.CodeOf(err))

	s.Require().NoError(s.svc.GrantRole(ctx, s.admin, domain.RoleVerifiedIssuer, recruit))
	has, err := s.svc.HasRole(ctx, domain.RoleVerifiedIssuer, recruit)
	s.Require().NoError(err)
	s.True(has)

	s.Require().NoError(s.svc.RevokeRole(ctx, s.admin, domain.RoleVerifiedIssuer, recruit))
	has, err = s.svc.HasRole(ctx, domain.RoleVerifiedIssuer, recruit)
	s.Require().NoError(err)
	s.False(has)
}

func (s *ServiceSuite) TestLastAdministratorCannotBeRevoked() {
	ctx := context.Background()

	err := s.svc.RevokeRole(ctx, s.admin, domain.RoleAdministrator, s.admin)
	s.Equal(domainerrors.CodeInvariantViolation, domainerrors.CodeOf(err))

	second := domain.NewAccountID()
	s.Require().NoError(s.svc.GrantRole(ctx, s.admin, domain.RoleAdministrator, second))
	s.Require().NoError(s.svc.RevokeRole(ctx, second, domain.RoleAdministrator, s.admin))

	has, err := s.svc.HasRole(ctx, domain.RoleAdministrator, s.admin)
	s.Require().NoError(err)
	s.False(has)
}

func (s *ServiceSuite) TestBindBijection() {
	ctx := context.Background()
	account := domain.NewAccountID()

	err := s.svc.Bind(ctx, s.outsider, "PT-100", account)
	s.Equal(domainerrors.CodeNotAuthorized, domainerrors.CodeOf(err))

	s.Require().NoError(s.svc.Bind(ctx, s.issuer, "PT-100", account))

	resolved, err := s.svc.LookupAccount(ctx, "PT-100")
	s.Require().NoError(err)
	s.Equal(account, resolved)
	nid, err := s.svc.LookupNationalID(ctx, account)
	s.Require().NoError(err)
	s.Equal(domain.NationalID("PT-100"), nid)

	// Neither side of an existing binding can be reassigned.
	err = s.svc.Bind(ctx, s.admin, "PT-100", domain.NewAccountID())
	s.Equal(domainerrors.CodeAlreadyBound, domainerrors.CodeOf(err))
	err = s.svc.Bind(ctx, s.admin, "PT-200", account)
	s.Equal(domainerrors.CodeAlreadyBound, domainerrors.CodeOf(err))

	_, err = s.svc.LookupAccount(ctx, "PT-999")
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func (s *ServiceSuite) TestCreateIdentityRecord() {
	ctx := context.Background()
	account := domain.NewAccountID()
	s.Require().NoError(s.svc.Bind(ctx, s.issuer, "PT-300", account))

	in := ledger.CreateIdentityRecordInput{
		SubjectName:  "Joao Costa",
		EventStart:   time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		EventEnd:     time.Date(2019, 4, 20, 0, 0, 0, 0, time.UTC),
		Location:     "Faro",
		Proof:        "proof-identity",
		NationalID:   "PT-300",
		AuxiliaryRef: "ipfs://certificate-scan",
	}
	id, err := s.svc.CreateIdentityRecord(ctx, s.issuer, in)
	s.Require().NoError(err)

	got, err := s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.Equal(account, got.Owner, "owner resolved through the binding")
	s.Equal(domain.NationalID("PT-300"), got.NationalID)
	s.Equal("ipfs://certificate-scan", got.AuxiliaryRef)
	s.True(got.Verified)

	// One record per bound identity.
	in.Proof = "proof-identity-2"
	_, err = s.svc.CreateIdentityRecord(ctx, s.issuer, in)
	s.Equal(domainerrors.CodeAlreadyRecorded, domainerrors.CodeOf(err))

	in.Proof = "proof-identity-3"
	in.NationalID = "PT-unbound"
	_, err = s.svc.CreateIdentityRecord(ctx, s.issuer, in)
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func (s *ServiceSuite) TestIdentityRecordFailureConsumesNothing() {
	ctx := context.Background()

	in := ledger.CreateIdentityRecordInput{
		SubjectName: "Joao Costa",
		EventStart:  time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		EventEnd:    time.Date(2019, 4, 20, 0, 0, 0, 0, time.UTC),
		Proof:       "proof-shared",
		NationalID:  "PT-unbound",
	}
	_, err := s.svc.CreateIdentityRecord(ctx, s.issuer, in)
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))

	// The proof commitment is only consumed after the binding lookup passes,
	// so the same commitment is still usable.
	created := s.createInput("proof-shared")
	_, err = s.svc.CreateRecord(ctx, s.issuer, created)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestSearchFoldsASCIICase() {
	ctx := context.Background()

	in := s.createInput("proof-search-1")
	in.SubjectName = "MARIA SILVA"
	first, err := s.svc.CreateRecord(ctx, s.issuer, in)
	s.Require().NoError(err)

	in = s.createInput("proof-search-2")
	in.SubjectName = "Joao Costa"
	_, err = s.svc.CreateRecord(ctx, s.issuer, in)
	s.Require().NoError(err)

	in = s.createInput("proof-search-3")
	in.SubjectName = "maria silva"
	third, err := s.svc.CreateRecord(ctx, s.issuer, in)
	s.Require().NoError(err)

	ids, err := s.svc.Search(ctx, "Maria SILVA")
	s.Require().NoError(err)
	s.Equal([]domain.RecordID{first, third}, ids, "creation order")

	none, err := s.svc.Search(ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *ServiceSuite) TestAttachMemorial() {
	ctx := context.Background()

	id, err := s.svc.CreateRecord(ctx, s.outsider, s.createInput("proof-memorial"))
	s.Require().NoError(err)

	// A record starts with empty memorial content, not an error.
	content, err := s.svc.GetMemorial(ctx, id)
	s.Require().NoError(err)
	s.Equal(id, content.RecordID)
	s.Empty(content.Title)
	s.False(content.HasRichMedia())

	in := ledger.AttachMemorialInput{
		Title:       "In Memoriam",
		Description: "A life well lived.",
		References:  []string{"ipfs://photo-1", "ipfs://letter-2"},
	}
	s.Require().NoError(s.svc.AttachMemorial(ctx, s.owner, id, in))

	content, err = s.svc.GetMemorial(ctx, id)
	s.Require().NoError(err)
	s.Equal("In Memoriam", content.Title)
	s.Equal(in.References, content.References)
	s.Equal(frozenNow, content.UpdatedAt)

	// The first reference became the record's auxiliary reference.
	got, err := s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.Equal("ipfs://photo-1", got.AuxiliaryRef)

	// Re-attachment replaces the content wholesale and moves the reference.
	s.Require().NoError(s.svc.AttachMemorial(ctx, s.outsider, id, ledger.AttachMemorialInput{
		Title:      "Revised",
		References: []string{"ipfs://photo-9"},
	}))
	content, err = s.svc.GetMemorial(ctx, id)
	s.Require().NoError(err)
	s.Equal("Revised", content.Title)
	s.Empty(content.Description)
	got, err = s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.Equal("ipfs://photo-9", got.AuxiliaryRef)
}

func (s *ServiceSuite) TestAttachMemorialAuthorization() {
	ctx := context.Background()

	id, err := s.svc.CreateRecord(ctx, s.issuer, s.createInput("proof-memorial-authz"))
	s.Require().NoError(err)

	stranger := domain.NewAccountID()
	err = s.svc.AttachMemorial(ctx, stranger, id, ledger.AttachMemorialInput{Title: "nope"})
	s.Equal(domainerrors.CodeNotAuthorized, domainerrors.CodeOf(err))

	content, err := s.svc.GetMemorial(ctx, id)
	s.Require().NoError(err)
	s.Empty(content.Title, "rejected attach left no content behind")

	err = s.svc.AttachMemorial(ctx, s.owner, 42, ledger.AttachMemorialInput{Title: "x"})
	s.Equal(domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func (s *ServiceSuite) TestAuditTrail() {
	ctx := context.Background()

	// SetupTest already emitted two role grants.
	base := s.waitForAudit(2)

	id, err := s.svc.CreateRecord(ctx, s.issuer, s.createInput("proof-audit"))
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Verify(ctx, s.verifier, id))
	s.Require().NoError(s.svc.Bind(ctx, s.issuer, "PT-audit", domain.NewAccountID()))
	s.Require().NoError(s.svc.AttachMemorial(ctx, s.owner, id, ledger.AttachMemorialInput{Title: "t"}))

	events := s.waitForAudit(len(base) + 4)
	tail := events[len(base):]

	s.Equal(audit.OpRecordCreated, tail[0].Operation)
	s.Equal(id.String(), tail[0].Subject)
	s.Equal(s.issuer, tail[0].Actor)

	s.Equal(audit.OpRecordVerified, tail[1].Operation)
	s.Equal(s.verifier, tail[1].Actor)

	s.Equal(audit.OpIdentityBound, tail[2].Operation)
	s.Equal("PT-audit", tail[2].Subject)

	s.Equal(audit.OpMemorialAttached, tail[3].Operation)
	s.Equal(s.owner, tail[3].Actor)

	// Sequence numbers are strictly increasing across the whole stream.
	for i := 1; i < len(events); i++ {
		s.Greater(events[i].Seq, events[i-1].Seq)
	}

	listed, err := s.svc.AuditEvents(ctx, 2)
	s.Require().NoError(err)
	s.Len(listed, 2)
	s.Equal(audit.OpMemorialAttached, listed[1].Operation)
}

// TestFullLifecycle walks a certificate through its whole life: issuer
// grant, verified creation, duplicate-proof rejection, memorial attachment
// and the auxiliary reference that follows it.
func (s *ServiceSuite) TestFullLifecycle() {
	ctx := context.Background()

	registrar := domain.NewAccountID()
	s.Require().NoError(s.svc.GrantRole(ctx, s.admin, domain.RoleVerifiedIssuer, registrar))

	in := s.createInput("proof-lifecycle")
	in.SubjectName = "Ana Pereira"
	id, err := s.svc.CreateRecord(ctx, registrar, in)
	s.Require().NoError(err)

	got, err := s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.True(got.Verified)

	_, err = s.svc.CreateRecord(ctx, registrar, s.createInput("proof-lifecycle"))
	s.Equal(domainerrors.CodeDuplicateProof, domainerrors.CodeOf(err))

	s.Require().NoError(s.svc.AttachMemorial(ctx, registrar, id, ledger.AttachMemorialInput{
		Title:      "Ana Pereira, 1938-2021",
		References: []string{"ipfs://obituary"},
	}))

	got, err = s.svc.GetRecord(ctx, id)
	s.Require().NoError(err)
	s.Equal("ipfs://obituary", got.AuxiliaryRef)

	ids, err := s.svc.Search(ctx, "ANA PEREIRA")
	s.Require().NoError(err)
	s.Equal([]domain.RecordID{id}, ids)
}
