package record

import (
	"context"

	"vitalis/pkg/domain"
)

// Store persists records and the secondary indexes over them. Insert assigns
// the next sequential id (starting at 1) and indexes the normalized subject
// name; the input record's ID field is ignored. The only permitted mutations
// after insert are SetVerified and SetAuxiliaryRef.
type Store interface {
	Insert(ctx context.Context, r Record) (domain.RecordID, error)
	Get(ctx context.Context, id domain.RecordID) (Record, error)
	SetVerified(ctx context.Context, id domain.RecordID) error
	SetAuxiliaryRef(ctx context.Context, id domain.RecordID, ref string) error
	// SearchName returns record ids whose normalized subject name equals the
	// (already normalized) query, in creation order.
	SearchName(ctx context.Context, normalized string) ([]domain.RecordID, error)
	// HasForNationalID reports whether the identity-bound flow has already
	// produced a record for the given external identity.
	HasForNationalID(ctx context.Context, nid domain.NationalID) (bool, error)
	Count(ctx context.Context) (uint64, error)
}
