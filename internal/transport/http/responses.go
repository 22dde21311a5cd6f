package httptransport

import (
	"time"

	"vitalis/internal/audit"
	"vitalis/internal/memorial"
	"vitalis/internal/record"
	"vitalis/pkg/domain"
)

type recordResponse struct {
	ID           string    `json:"id"`
	SubjectName  string    `json:"subject_name"`
	EventStart   time.Time `json:"event_start"`
	EventEnd     time.Time `json:"event_end"`
	Location     string    `json:"location"`
	AuxiliaryRef string    `json:"auxiliary_ref,omitempty"`
	NationalID   string    `json:"national_id,omitempty"`
	Author       string    `json:"author"`
	Owner        string    `json:"owner"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRecordResponse(r record.Record) recordResponse {
	return recordResponse{
		ID:           r.ID.String(),
		SubjectName:  r.SubjectName,
		EventStart:   r.EventStart,
		EventEnd:     r.EventEnd,
		Location:     r.Location,
		AuxiliaryRef: r.AuxiliaryRef,
		NationalID:   r.NationalID.String(),
		Author:       r.Author.String(),
		Owner:        r.Owner.String(),
		Verified:     r.Verified,
		CreatedAt:    r.CreatedAt,
	}
}

type memorialResponse struct {
	RecordID     string   `json:"record_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	References   []string `json:"references"`
	HasRichMedia bool     `json:"has_rich_media"`
}

func toMemorialResponse(c memorial.Content) memorialResponse {
	refs := c.References
	if refs == nil {
		refs = []string{}
	}
	return memorialResponse{
		RecordID:     c.RecordID.String(),
		Title:        c.Title,
		Description:  c.Description,
		References:   refs,
		HasRichMedia: c.HasRichMedia(),
	}
}

type searchResponse struct {
	IDs []string `json:"ids"`
}

func toSearchResponse(ids []domain.RecordID) searchResponse {
	out := searchResponse{IDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		out.IDs = append(out.IDs, id.String())
	}
	return out
}

type auditEventResponse struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Subject   string    `json:"subject"`
	Actor     string    `json:"actor"`
}

func toAuditEventResponses(events []audit.Event) []auditEventResponse {
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditEventResponse{
			Seq:       e.Seq,
			Timestamp: e.Timestamp,
			Operation: string(e.Operation),
			Subject:   e.Subject,
			Actor:     e.Actor.String(),
		})
	}
	return out
}
