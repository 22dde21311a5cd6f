package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"vitalis/pkg/domain"
	"vitalis/pkg/platform/sentinel"
	txcontext "vitalis/pkg/platform/tx"
)

// Schema is the DDL for the identity binding table. Unique constraints on
// both columns enforce the bijection at the database level.
const Schema = `
CREATE TABLE IF NOT EXISTS identity_bindings (
    national_id TEXT        NOT NULL PRIMARY KEY,
    account     UUID        NOT NULL UNIQUE,
    bound_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists identity bindings in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Insert(ctx context.Context, b Binding) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO identity_bindings (national_id, account) VALUES ($1, $2)`,
		b.NationalID.String(), b.Account.String())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert identity binding: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByNationalID(ctx context.Context, nid domain.NationalID) (Binding, error) {
	return s.find(ctx, `SELECT national_id, account FROM identity_bindings WHERE national_id = $1`, nid.String())
}

func (s *PostgresStore) FindByAccount(ctx context.Context, account domain.AccountID) (Binding, error) {
	return s.find(ctx, `SELECT national_id, account FROM identity_bindings WHERE account = $1`, account.String())
}

func (s *PostgresStore) find(ctx context.Context, query string, arg any) (Binding, error) {
	var (
		nid     string
		account string
	)
	err := s.q(ctx).QueryRowContext(ctx, query, arg).Scan(&nid, &account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Binding{}, sentinel.ErrNotFound
		}
		return Binding{}, fmt.Errorf("find identity binding: %w", err)
	}
	acct, err := domain.ParseAccountID(account)
	if err != nil {
		return Binding{}, fmt.Errorf("find identity binding: %w", err)
	}
	return Binding{NationalID: domain.NationalID(nid), Account: acct}, nil
}
