package memorial

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

// Schema is the DDL for the memorial content table. One row per record;
// upsert implements the wholesale overwrite.
const Schema = `
CREATE TABLE IF NOT EXISTS memorials (
    record_id   BIGINT      NOT NULL PRIMARY KEY,
    title       TEXT        NOT NULL,
    description TEXT        NOT NULL,
    refs        TEXT[]      NOT NULL DEFAULT '{}',
    updated_at  TIMESTAMPTZ NOT NULL
)`

// PostgresStore persists memorial content in PostgreSQL.
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

func (s *PostgresStore) Put(ctx context.Context, c Content) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO memorials (record_id, title, description, refs, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (record_id) DO UPDATE SET
		    title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    refs = EXCLUDED.refs,
		    updated_at = EXCLUDED.updated_at`,
		uint64(c.RecordID), c.Title, c.Description, pq.Array(c.References), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put memorial: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.RecordID) (Content, error) {
	c := Content{RecordID: id}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT title, description, refs, updated_at
		FROM memorials WHERE record_id = $1`, uint64(id)).
		Scan(&c.Title, &c.Description, pq.Array(&c.References), &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Content{}, sentinel.ErrNotFound
		}
		return Content{}, fmt.Errorf("find memorial: %w", err)
	}
	return c, nil
}
