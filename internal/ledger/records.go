package ledger

import (
	"context"
	"errors"
	"time"

	"vitalis/internal/audit"
	"vitalis/internal/record"
	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
	"vitalis/pkg/platform/sentinel"
)

// CreateRecordInput is the direct creation flow: the owner account is named
// explicitly by the caller.
type CreateRecordInput struct {
	SubjectName string
	EventStart  time.Time
	EventEnd    time.Time
	Location    string
	Proof       domain.ProofCommitment
	Owner       domain.AccountID
}

// CreateIdentityRecordInput is the identity-bound flow: the owner is resolved
// through the identity binding registry and the auxiliary reference is set at
// creation.
type CreateIdentityRecordInput struct {
	SubjectName  string
	EventStart   time.Time
	EventEnd     time.Time
	Location     string
	Proof        domain.ProofCommitment
	NationalID   domain.NationalID
	AuxiliaryRef string
}

// CreateRecord mints a new certificate record. Validation runs in a fixed
// order: input validation, duplicate-proof check, persistence, indexing. A
// failure at any step leaves no registry mutated. The record's verification
// flag is set iff the author holds verified-issuer at creation time.
func (s *Service) CreateRecord(ctx context.Context, caller domain.AccountID, in CreateRecordInput) (domain.RecordID, error) {
	if in.Owner.IsNil() {
		return 0, domainerrors.New(domainerrors.CodeInvalidInput, "owner account is required")
	}
	if err := s.validateCreate(in.SubjectName, in.EventStart, in.EventEnd, in.Proof); err != nil {
		return 0, err
	}

	var id domain.RecordID
	err := s.mutate(ctx, "ledger.create_record", func(ctx context.Context) error {
		var err error
		id, err = s.insertRecord(ctx, caller, record.Record{
			SubjectName: in.SubjectName,
			EventStart:  in.EventStart,
			EventEnd:    in.EventEnd,
			Location:    in.Location,
			Author:      caller,
			Owner:       in.Owner,
		}, in.Proof)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.finishCreate(ctx, caller, id)
	return id, nil
}

// CreateIdentityRecord mints a record for a bound external identity. The
// identity must be bound and must not already have a record.
func (s *Service) CreateIdentityRecord(ctx context.Context, caller domain.AccountID, in CreateIdentityRecordInput) (domain.RecordID, error) {
	if in.NationalID.IsEmpty() {
		return 0, domainerrors.New(domainerrors.CodeInvalidInput, "national id is required")
	}
	if err := s.validateCreate(in.SubjectName, in.EventStart, in.EventEnd, in.Proof); err != nil {
		return 0, err
	}

	var id domain.RecordID
	err := s.mutate(ctx, "ledger.create_identity_record", func(ctx context.Context) error {
		owner, err := s.identity.LookupAccount(ctx, in.NationalID)
		if err != nil {
			return err
		}
		recorded, err := s.records.HasForNationalID(ctx, in.NationalID)
		if err != nil {
			return domainerrors.Wrap(domainerrors.CodeInternal, "check identity record", err)
		}
		if recorded {
			return domainerrors.New(domainerrors.CodeAlreadyRecorded,
				"identity already has a certificate record")
		}
		id, err = s.insertRecord(ctx, caller, record.Record{
			SubjectName:  in.SubjectName,
			EventStart:   in.EventStart,
			EventEnd:     in.EventEnd,
			Location:     in.Location,
			AuxiliaryRef: in.AuxiliaryRef,
			NationalID:   in.NationalID,
			Author:       caller,
			Owner:        owner,
		}, in.Proof)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.finishCreate(ctx, caller, id)
	return id, nil
}

// insertRecord consumes the proof commitment and persists the record. Runs
// inside the mutation section; callers have already validated input.
func (s *Service) insertRecord(ctx context.Context, caller domain.AccountID, r record.Record, commitment domain.ProofCommitment) (domain.RecordID, error) {
	consumed, err := s.proofs.TryConsume(ctx, commitment)
	if err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeInternal, "consume proof", err)
	}
	if !consumed {
		s.metrics.DuplicateProofs.Inc()
		return 0, domainerrors.New(domainerrors.CodeDuplicateProof,
			"proof commitment was already consumed")
	}
	issuer, err := s.roles.Has(ctx, domain.RoleVerifiedIssuer, caller)
	if err != nil {
		return 0, err
	}
	r.Verified = issuer
	r.CreatedAt = s.now().UTC()
	id, err := s.records.Insert(ctx, r)
	if err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeInternal, "insert record", err)
	}
	return id, nil
}

func (s *Service) finishCreate(ctx context.Context, caller domain.AccountID, id domain.RecordID) {
	s.metrics.RecordsCreated.Inc()
	s.metrics.RecordsTotal.Inc()
	s.publisher.Emit(ctx, audit.OpRecordCreated, id.String(), caller)
	s.logger.Info("record created", "record_id", id.String(), "author", caller.String())
}

func (s *Service) validateCreate(name string, start, end time.Time, commitment domain.ProofCommitment) error {
	if name == "" {
		return domainerrors.New(domainerrors.CodeInvalidInput, "subject name is required")
	}
	if commitment.IsEmpty() {
		return domainerrors.New(domainerrors.CodeInvalidInput, "proof commitment is required")
	}
	if start.IsZero() || end.IsZero() {
		return domainerrors.New(domainerrors.CodeInvalidInput, "event timestamps are required")
	}
	if end.Before(start) {
		return domainerrors.New(domainerrors.CodeInvalidInput, "event end precedes event start")
	}
	if end.After(s.now()) {
		return domainerrors.New(domainerrors.CodeInvalidInput, "event end is in the future")
	}
	return nil
}

// GetRecord returns the record with the given id.
func (s *Service) GetRecord(ctx context.Context, id domain.RecordID) (record.Record, error) {
	r, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return record.Record{}, domainerrors.Newf(domainerrors.CodeNotFound, "record %s does not exist", id)
		}
		return record.Record{}, domainerrors.Wrap(domainerrors.CodeInternal, "get record", err)
	}
	return r, nil
}

// Verify marks a record verified. Caller must hold dao-verifier or
// verified-issuer. Idempotent: verifying an already-verified record succeeds
// without changing state or emitting an event.
func (s *Service) Verify(ctx context.Context, caller domain.AccountID, id domain.RecordID) error {
	var transitioned bool
	err := s.mutate(ctx, "ledger.verify", func(ctx context.Context) error {
		perms, err := s.permissionsFor(ctx, caller, nil)
		if err != nil {
			return err
		}
		if !perms[PermVerifyRecord] {
			return domainerrors.New(domainerrors.CodeNotAuthorized,
				"caller is neither a dao verifier nor a verified issuer")
		}
		r, err := s.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		if r.Verified {
			return nil
		}
		if err := s.records.SetVerified(ctx, id); err != nil {
			return domainerrors.Wrap(domainerrors.CodeInternal, "set verified", err)
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return err
	}
	if transitioned {
		s.metrics.RecordsVerified.Inc()
		s.publisher.Emit(ctx, audit.OpRecordVerified, id.String(), caller)
	}
	return nil
}

// IsLocked reports the soulbound status of a record: true for every record
// that exists, for the life of the system. External capability probes depend
// on this staying constant.
func (s *Service) IsLocked(ctx context.Context, id domain.RecordID) (bool, error) {
	if _, err := s.GetRecord(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// Transfer categorically rejects ownership transfer of any existing record,
// regardless of caller: not the owner, not the author, not an administrator,
// not even a self-transfer. Ownership is permanent once set at creation.
func (s *Service) Transfer(ctx context.Context, caller domain.AccountID, id domain.RecordID, to domain.AccountID) error {
	if _, err := s.GetRecord(ctx, id); err != nil {
		return err
	}
	s.metrics.TransfersRejected.Inc()
	return domainerrors.New(domainerrors.CodeTransferForbidden, "records are non-transferable")
}

// Search returns record ids whose subject name matches the query after ASCII
// case folding, in creation order.
func (s *Service) Search(ctx context.Context, name string) ([]domain.RecordID, error) {
	ids, err := s.records.SearchName(ctx, record.NormalizeName(name))
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "search records", err)
	}
	return ids, nil
}

// Count returns the total number of records ever created.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	n, err := s.records.Count(ctx)
	if err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeInternal, "count records", err)
	}
	return n, nil
}
