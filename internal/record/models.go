// Package record owns the authoritative table of certificate records and the
// name index over it. Records are soulbound: inserted once, never removed,
// and no field mutates after creation except the verification flag and the
// auxiliary reference.
package record

import (
	"time"

	"vitalis/pkg/domain"
)

// Record is one immutable certificate.
type Record struct {
	ID           domain.RecordID
	SubjectName  string
	EventStart   time.Time
	EventEnd     time.Time
	Location     string
	AuxiliaryRef string
	// NationalID is set only for records created through the identity-bound
	// flow; it links the record to the binding that resolved its owner.
	NationalID domain.NationalID
	Author     domain.AccountID
	Owner      domain.AccountID
	Verified   bool
	CreatedAt  time.Time
}

// NormalizeName maps ASCII A-Z to a-z and nothing else. The name index makes
// no Unicode case-folding promises; lookups are exact on the normalized form.
func NormalizeName(name string) string {
	b := []byte(name)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return name
	}
	return string(b)
}
