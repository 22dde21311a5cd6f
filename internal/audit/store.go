package audit

import "context"

// Store is the append-only event log backing the audit stream.
type Store interface {
	Append(ctx context.Context, event Event) error
	// List returns the most recent events in sequence order, at most limit.
	List(ctx context.Context, limit int) ([]Event, error)
}
