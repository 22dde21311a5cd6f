package proof

import (
	"context"
	"database/sql"
	"fmt"

	"vitalis/pkg/domain"
	txcontext "vitalis/pkg/platform/tx"
)

// Schema is the DDL for the consumed commitment table.
const Schema = `
CREATE TABLE IF NOT EXISTS proof_commitments (
    commitment  TEXT        NOT NULL PRIMARY KEY,
    consumed_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore implements the dedup set on PostgreSQL. The primary key plus
// ON CONFLICT DO NOTHING makes the insert the atomic check-and-set; when it
// runs inside the facade transaction a failed record creation rolls the
// consumption back with everything else.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) TryConsume(ctx context.Context, commitment domain.ProofCommitment) (bool, error) {
	var execer interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	} = s.db
	if tx, ok := txcontext.From(ctx); ok {
		execer = tx
	}
	res, err := execer.ExecContext(ctx,
		`INSERT INTO proof_commitments (commitment) VALUES ($1) ON CONFLICT DO NOTHING`,
		commitment.String())
	if err != nil {
		return false, fmt.Errorf("consume proof commitment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume proof commitment: %w", err)
	}
	return n == 1, nil
}
