// Package httptransport is the thin HTTP layer over the ledger facade. It
// decodes requests, delegates, and translates domain error codes into HTTP
// statuses; no business logic lives here.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vitalis/internal/ledger"
	"vitalis/pkg/domain"
	domainerrors "vitalis/pkg/domain-errors"
)

// Handler carries the facade and logger into every route.
type Handler struct {
	ledger *ledger.Service
	logger *slog.Logger
}

func NewHandler(svc *ledger.Service, logger *slog.Logger) *Handler {
	return &Handler{ledger: svc, logger: logger}
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if !h.decode(w, r, &req) {
		return
	}
	owner, err := domain.ParseAccountID(req.Owner)
	if err != nil {
		h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "invalid owner account"))
		return
	}
	id, err := h.ledger.CreateRecord(r.Context(), CallerFromContext(r.Context()), ledger.CreateRecordInput{
		SubjectName: req.SubjectName,
		EventStart:  req.EventStart,
		EventEnd:    req.EventEnd,
		Location:    req.Location,
		Proof:       domain.ProofCommitment(req.ProofCommitment),
		Owner:       owner,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) handleCreateIdentityRecord(w http.ResponseWriter, r *http.Request) {
	var req createIdentityRecordRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.ledger.CreateIdentityRecord(r.Context(), CallerFromContext(r.Context()), ledger.CreateIdentityRecordInput{
		SubjectName:  req.SubjectName,
		EventStart:   req.EventStart,
		EventEnd:     req.EventEnd,
		Location:     req.Location,
		Proof:        domain.ProofCommitment(req.ProofCommitment),
		NationalID:   domain.NationalID(req.NationalID),
		AuxiliaryRef: req.AuxiliaryRef,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	rec, err := h.ledger.GetRecord(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) handleIsLocked(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	locked, err := h.ledger.IsLocked(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"locked": locked})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	if err := h.ledger.Verify(r.Context(), CallerFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	to, err := domain.ParseAccountID(req.To)
	if err != nil {
		h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "invalid destination account"))
		return
	}
	err = h.ledger.Transfer(r.Context(), CallerFromContext(r.Context()), id, to)
	// Transfer never succeeds; surface whichever rejection applies.
	h.writeError(w, r, err)
}

func (h *Handler) handleAttachMemorial(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	var req attachMemorialRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.ledger.AttachMemorial(r.Context(), CallerFromContext(r.Context()), id, ledger.AttachMemorialInput{
		Title:       req.Title,
		Description: req.Description,
		References:  req.References,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetMemorial(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	content, err := h.ledger.GetMemorial(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMemorialResponse(content))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "name query parameter is required"))
		return
	}
	ids, err := h.ledger.Search(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSearchResponse(ids))
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.ledger.Count(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]uint64{"count": n})
}

func (h *Handler) handleBind(w http.ResponseWriter, r *http.Request) {
	var req bindRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := domain.ParseAccountID(req.Account)
	if err != nil {
		h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "invalid account"))
		return
	}
	err = h.ledger.Bind(r.Context(), CallerFromContext(r.Context()),
		domain.NationalID(req.NationalID), account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleLookupBinding(w http.ResponseWriter, r *http.Request) {
	if nid := r.URL.Query().Get("national_id"); nid != "" {
		account, err := h.ledger.LookupAccount(r.Context(), domain.NationalID(nid))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"national_id": nid, "account": account.String()})
		return
	}
	if raw := r.URL.Query().Get("account"); raw != "" {
		account, err := domain.ParseAccountID(raw)
		if err != nil {
			h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "invalid account"))
			return
		}
		nid, err := h.ledger.LookupNationalID(r.Context(), account)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"national_id": nid.String(), "account": raw})
		return
	}
	h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput,
		"national_id or account query parameter is required"))
}

func (h *Handler) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.ledger.GrantRole)
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.ledger.RevokeRole)
}

func (h *Handler) handleRoleChange(w http.ResponseWriter, r *http.Request,
	change func(ctx context.Context, caller domain.AccountID, role domain.Role, account domain.AccountID) error) {
	var req roleRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := domain.ParseAccountID(req.Account)
	if err != nil {
		h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "invalid account"))
		return
	}
	err = change(r.Context(), CallerFromContext(r.Context()), domain.Role(req.Role), account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheckRole(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	account, err := domain.ParseAccountID(r.URL.Query().Get("account"))
	if err != nil {
		h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "invalid account"))
		return
	}
	held, err := h.ledger.HasRole(r.Context(), role, account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"held": held})
}

func (h *Handler) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	events, err := h.ledger.AuditEvents(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"events": toAuditEventResponses(events)})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (domain.RecordID, bool) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, domainerrors.New(domainerrors.CodeInvalidInput, "invalid record id"))
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, domainerrors.Wrap(domainerrors.CodeInvalidInput, "malformed request body", err))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response failed", "err", err)
	}
}

// writeError centralizes domain error translation so every route returns the
// same JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domainerrors.CodeOf(err)
	status := domainerrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	message := ""
	var de *domainerrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(code),
		"message": message,
	})
}
