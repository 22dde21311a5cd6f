// Package ledger is the facade over every registry. All mutating calls enter
// here: the facade authorizes the caller, checks domain invariants, applies
// the change atomically and emits one audit event per successful mutation.
package ledger

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vitalis/internal/audit"
	"vitalis/internal/identity"
	"vitalis/internal/ledger/metrics"
	"vitalis/internal/memorial"
	"vitalis/internal/proof"
	"vitalis/internal/record"
	"vitalis/internal/roles"
	domainerrors "vitalis/pkg/domain-errors"
	txcontext "vitalis/pkg/platform/tx"
)

// Params wires the facade's collaborators. DB is optional: when set, every
// mutating operation runs inside one serializable SQL transaction threaded to
// the stores through context; without it the stores are in-memory and the
// facade mutex alone provides the single-sequencer contract.
type Params struct {
	Roles     *roles.Registry
	Identity  *identity.Registry
	Proofs    proof.Store
	Records   record.Store
	Memorials memorial.Store
	AuditLog  audit.Store
	Publisher *audit.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	DB        *sql.DB
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Service is the ledger facade.
type Service struct {
	mu sync.Mutex

	roles     *roles.Registry
	identity  *identity.Registry
	proofs    proof.Store
	records   record.Store
	memorials memorial.Store
	auditLog  audit.Store
	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	db        *sql.DB
	tracer    trace.Tracer
	now       func() time.Time
}

func New(p Params) *Service {
	now := p.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		roles:     p.Roles,
		identity:  p.Identity,
		proofs:    p.Proofs,
		records:   p.Records,
		memorials: p.Memorials,
		auditLog:  p.AuditLog,
		publisher: p.Publisher,
		metrics:   p.Metrics,
		logger:    p.Logger,
		db:        p.DB,
		tracer:    otel.Tracer("vitalis/ledger"),
		now:       now,
	}
}

// mutate serializes a mutating operation and, when a database is configured,
// wraps it in a serializable transaction so a failure at any step leaves no
// registry mutated.
func (s *Service) mutate(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	if s.db == nil {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "begin transaction", err)
	}
	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "operation", op, "err", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "commit transaction", err)
	}
	return nil
}

// Bootstrap applies the initial role grants. It must run exactly once before
// the facade serves any other mutating call; restarts are no-ops.
func (s *Service) Bootstrap(ctx context.Context, b roles.Bootstrap) error {
	return s.mutate(ctx, "ledger.bootstrap", func(ctx context.Context) error {
		return s.roles.ApplyBootstrap(ctx, b)
	})
}

// AuditEvents returns the most recent audit events for reporting consumers.
func (s *Service) AuditEvents(ctx context.Context, limit int) ([]audit.Event, error) {
	events, err := s.auditLog.List(ctx, limit)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "list audit events", err)
	}
	return events, nil
}
