// Package audit emits one durable event per successful ledger mutation.
// Downstream consumers (statistics tools, UIs) subscribe to the stream; the
// ledger's own correctness never depends on them, so emission is
// fire-and-forget past the publisher's buffer.
package audit

import (
	"time"

	"github.com/google/uuid"

	"vitalis/pkg/domain"
)

// Operation names a mutating ledger operation in the audit stream.
type Operation string

const (
	OpRoleGranted      Operation = "role_granted"
	OpRoleRevoked      Operation = "role_revoked"
	OpIdentityBound    Operation = "identity_bound"
	OpRecordCreated    Operation = "record_created"
	OpRecordVerified   Operation = "record_verified"
	OpMemorialAttached Operation = "memorial_attached"
)

// Event is emitted from the facade to capture one successful mutation. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID        `json:"id"`
	Seq       uint64           `json:"seq"`
	Timestamp time.Time        `json:"timestamp"`
	Operation Operation        `json:"operation"`
	Subject   string           `json:"subject"`
	Actor     domain.AccountID `json:"-"`
	ActorID   string           `json:"actor"`
}
