package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vitalis/pkg/domain"
)

// Schema is the DDL for the audit event table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    seq       BIGINT      NOT NULL PRIMARY KEY,
    id        UUID        NOT NULL,
    ts        TIMESTAMPTZ NOT NULL,
    operation TEXT        NOT NULL,
    subject   TEXT        NOT NULL,
    actor     UUID        NOT NULL
)`

// PostgresStore persists audit events in PostgreSQL. The audit worker is the
// only writer, so appends run outside the facade transaction on purpose:
// audit persistence failing must not fail the mutation it describes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (seq, id, ts, operation, subject, actor)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.Seq, event.ID, event.Timestamp, string(event.Operation),
		event.Subject, event.Actor.String())
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, ts, operation, subject, actor
		FROM (
		    SELECT * FROM audit_events ORDER BY seq DESC LIMIT $1
		) latest ORDER BY seq`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e     Event
			op    string
			actor uuid.UUID
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.Timestamp, &op, &e.Subject, &actor); err != nil {
			return nil, fmt.Errorf("list audit events: %w", err)
		}
		e.Operation = Operation(op)
		e.Actor = domain.AccountID(actor)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
