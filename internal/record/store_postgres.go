package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vitalis/pkg/domain"
	"vitalis/pkg/platform/sentinel"
	txcontext "vitalis/pkg/platform/tx"
)

// Schema is the DDL for the record table. Ids are allocated by the insert
// itself (max+1) rather than a sequence so identifiers stay gapless; the
// facade serializes mutations, so the allocation never races.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
    id              BIGINT      NOT NULL PRIMARY KEY,
    subject_name    TEXT        NOT NULL,
    normalized_name TEXT        NOT NULL,
    event_start     TIMESTAMPTZ NOT NULL,
    event_end       TIMESTAMPTZ NOT NULL,
    location        TEXT        NOT NULL,
    auxiliary_ref   TEXT        NOT NULL DEFAULT '',
    national_id     TEXT        NOT NULL DEFAULT '',
    author          UUID        NOT NULL,
    owner           UUID        NOT NULL,
    verified        BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS records_normalized_name_idx ON records (normalized_name, id);
CREATE UNIQUE INDEX IF NOT EXISTS records_national_id_idx ON records (national_id) WHERE national_id <> ''`

// PostgresStore persists records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Insert(ctx context.Context, r Record) (domain.RecordID, error) {
	var id uint64
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO records
		    (id, subject_name, normalized_name, event_start, event_end, location,
		     auxiliary_ref, national_id, author, owner, verified, created_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		FROM records
		RETURNING id`,
		r.SubjectName, NormalizeName(r.SubjectName), r.EventStart, r.EventEnd,
		r.Location, r.AuxiliaryRef, r.NationalID.String(),
		r.Author.String(), r.Owner.String(), r.Verified, r.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return domain.RecordID(id), nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.RecordID) (Record, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, subject_name, event_start, event_end, location,
		       auxiliary_ref, national_id, author, owner, verified, created_at
		FROM records WHERE id = $1`, uint64(id))
	return scanRecord(row)
}

func (s *PostgresStore) SetVerified(ctx context.Context, id domain.RecordID) error {
	return s.update(ctx, `UPDATE records SET verified = TRUE WHERE id = $1`, uint64(id))
}

func (s *PostgresStore) SetAuxiliaryRef(ctx context.Context, id domain.RecordID, ref string) error {
	return s.update(ctx, `UPDATE records SET auxiliary_ref = $2 WHERE id = $1`, uint64(id), ref)
}

func (s *PostgresStore) update(ctx context.Context, query string, args ...any) error {
	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SearchName(ctx context.Context, normalized string) ([]domain.RecordID, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id FROM records WHERE normalized_name = $1 ORDER BY id`, normalized)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	ids := []domain.RecordID{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("search records: %w", err)
		}
		ids = append(ids, domain.RecordID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) HasForNationalID(ctx context.Context, nid domain.NationalID) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE national_id = $1)`, nid.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check national id record: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func scanRecord(row *sql.Row) (Record, error) {
	var (
		r          Record
		id         uint64
		nationalID string
		author     string
		owner      string
		createdAt  time.Time
	)
	err := row.Scan(&id, &r.SubjectName, &r.EventStart, &r.EventEnd, &r.Location,
		&r.AuxiliaryRef, &nationalID, &author, &owner, &r.Verified, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	r.ID = domain.RecordID(id)
	r.NationalID = domain.NationalID(nationalID)
	r.CreatedAt = createdAt
	if r.Author, err = domain.ParseAccountID(author); err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	if r.Owner, err = domain.ParseAccountID(owner); err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	return r, nil
}
