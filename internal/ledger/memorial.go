package ledger

import (
	"context"
	"errors"

	"vitalis/internal/audit"
	"vitalis/internal/memorial"
	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
	"vitalis/pkg/platform/sentinel"
)

// AttachMemorialInput is the mutable content attached to a record.
type AttachMemorialInput struct {
	Title       string
	Description string
	References  []string
}

// AttachMemorial replaces the memorial content of a record wholesale. The
// caller must be the record's owner, its original author, or hold
// verified-issuer. When references are supplied the first one becomes the
// record's auxiliary reference, overwriting any earlier value; this
// last-write-wins behavior is inherited and kept for compatibility.
func (s *Service) AttachMemorial(ctx context.Context, caller domain.AccountID, id domain.RecordID, in AttachMemorialInput) error {
	err := s.mutate(ctx, "ledger.attach_memorial", func(ctx context.Context) error {
		r, err := s.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		perms, err := s.permissionsFor(ctx, caller, &r)
		if err != nil {
			return err
		}
		if !perms[PermAttachMemorial] {
			return domainerrors.New(domainerrors.CodeNotAuthorized,
				"caller is not the owner, the author, or a verified issuer")
		}
		err = s.memorials.Put(ctx, memorial.Content{
			RecordID:    id,
			Title:       in.Title,
			Description: in.Description,
			References:  in.References,
			UpdatedAt:   s.now().UTC(),
		})
		if err != nil {
			return domainerrors.Wrap(domainerrors.CodeInternal, "put memorial", err)
		}
		if len(in.References) > 0 {
			if err := s.records.SetAuxiliaryRef(ctx, id, in.References[0]); err != nil {
				return domainerrors.Wrap(domainerrors.CodeInternal, "set auxiliary reference", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.MemorialsAttached.Inc()
	s.publisher.Emit(ctx, audit.OpMemorialAttached, id.String(), caller)
	return nil
}

// GetMemorial returns the memorial content of an existing record. A record
// without a memorial yields empty content, not an error: absence is a normal
// state. A missing record is still NotFound.
func (s *Service) GetMemorial(ctx context.Context, id domain.RecordID) (memorial.Content, error) {
	if _, err := s.GetRecord(ctx, id); err != nil {
		return memorial.Content{}, err
	}
	c, err := s.memorials.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return memorial.Content{RecordID: id, References: []string{}}, nil
		}
		return memorial.Content{}, domainerrors.Wrap(domainerrors.CodeInternal, "get memorial", err)
	}
	return c, nil
}
