package roles

import (
	"context"
	"database/sql"
	"fmt"

	"vitalis/pkg/domain"
	txcontext "vitalis/pkg/platform/tx"
)

// Schema is the DDL for the role grant table.
const Schema = `
CREATE TABLE IF NOT EXISTS role_grants (
    role       TEXT        NOT NULL,
    account    UUID        NOT NULL,
    granted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (role, account)
)`

// PostgresStore persists role grants in PostgreSQL.
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

func (s *PostgresStore) Add(ctx context.Context, role domain.Role, account domain.AccountID) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO role_grants (role, account) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		string(role), account.String())
	if err != nil {
		return fmt.Errorf("add role grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, role domain.Role, account domain.AccountID) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM role_grants WHERE role = $1 AND account = $2`,
		string(role), account.String())
	if err != nil {
		return fmt.Errorf("remove role grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Has(ctx context.Context, role domain.Role, account domain.AccountID) (bool, error) {
	var held bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_grants WHERE role = $1 AND account = $2)`,
		string(role), account.String()).Scan(&held)
	if err != nil {
		return false, fmt.Errorf("check role grant: %w", err)
	}
	return held, nil
}

func (s *PostgresStore) Count(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM role_grants WHERE role = $1`, string(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count role grants: %w", err)
	}
	return n, nil
}
