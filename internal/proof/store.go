// Package proof tracks consumed evidence commitments. The set is append-only
// with no eviction: a commitment spent once is spent forever.
package proof

import (
	"context"

	"vitalis/pkg/domain"
)

// Store is the dedup set. TryConsume atomically checks membership and inserts
// when absent; it returns false, inserting nothing, when the commitment was
// already present. Two callers racing on the same commitment must never both
// observe true.
type Store interface {
	TryConsume(ctx context.Context, commitment domain.ProofCommitment) (bool, error)
}
