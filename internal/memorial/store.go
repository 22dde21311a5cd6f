// Package memorial holds the mutable content attached to existing records.
// Re-attaching replaces the previous content wholesale; no history is kept.
// That last-write-wins policy is inherited behavior, kept deliberately (see
// DESIGN.md) rather than hardened into versioned history.
package memorial

import (
	"context"
	"time"

	"vitalis/pkg/domain"
)

// Content is the memorial attached to one record.
type Content struct {
	RecordID    domain.RecordID
	Title       string
	Description string
	References  []string
	UpdatedAt   time.Time
}

// HasRichMedia reports whether any external content references are attached.
func (c Content) HasRichMedia() bool {
	return len(c.References) > 0
}

// Store persists memorial content keyed by record id. Put overwrites any
// previous content for the same record. Find returns sentinel.ErrNotFound
// when nothing was ever attached; the facade maps that to an empty default,
// since absence of a memorial is a normal state, not a fault.
type Store interface {
	Put(ctx context.Context, c Content) error
	Find(ctx context.Context, id domain.RecordID) (Content, error)
}
