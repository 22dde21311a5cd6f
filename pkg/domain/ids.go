// Package domain holds the typed identifiers shared across layers. Distinct
// types keep the compiler from letting an account slip into a slot that
// expects a record id or a national id.
package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// AccountID identifies a caller or owner. The value is opaque to the ledger;
// the authentication boundary decides what it actually denotes.
type AccountID uuid.UUID

// NilAccount is the zero account. It is never a valid owner or caller.
var NilAccount = AccountID(uuid.Nil)

func NewAccountID() AccountID {
	return AccountID(uuid.New())
}

// ParseAccountID parses the canonical string form of an account id.
func ParseAccountID(s string) (AccountID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilAccount, fmt.Errorf("parse account id: %w", err)
	}
	if u == uuid.Nil {
		return NilAccount, fmt.Errorf("parse account id: nil value")
	}
	return AccountID(u), nil
}

func (a AccountID) String() string {
	return uuid.UUID(a).String()
}

func (a AccountID) IsNil() bool {
	return uuid.UUID(a) == uuid.Nil
}

// RecordID is the sequential certificate identifier. Allocation starts at 1
// and is strictly increasing; 0 is never a valid id.
type RecordID uint64

func ParseRecordID(s string) (RecordID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse record id: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("parse record id: must be positive")
	}
	return RecordID(n), nil
}

func (r RecordID) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// NationalID is the external identity token bound to an account, e.g. a
// national register number. The ledger treats it as an opaque string.
type NationalID string

func (n NationalID) String() string { return string(n) }

func (n NationalID) IsEmpty() bool { return n == "" }

// ProofCommitment is the content-derived token that represents the evidence
// behind a record. Each value can be consumed by at most one record, ever.
type ProofCommitment string

func (p ProofCommitment) String() string { return string(p) }

func (p ProofCommitment) IsEmpty() bool { return p == "" }

// Role names a permission grant in the role registry.
type Role string

const (
	RoleAdministrator  Role = "administrator"
	RoleVerifiedIssuer Role = "verified-issuer"
	RoleDAOVerifier    Role = "dao-verifier"
)

// KnownRole reports whether r is one of the roles the ledger understands.
func KnownRole(r Role) bool {
	switch r {
	case RoleAdministrator, RoleVerifiedIssuer, RoleDAOVerifier:
		return true
	}
	return false
}
