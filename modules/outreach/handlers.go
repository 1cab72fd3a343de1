package outreach

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/blob"
	"github.com/athletereach/outreach/pkg/placeholder"
	"github.com/athletereach/outreach/svc/dispatch"
	outreachsvc "github.com/athletereach/outreach/svc/outreach"
)

type handlers struct {
	svc         *outreachsvc.Service
	enqueuer    *dispatch.Enqueuer
	queue       dispatch.Repository
	worker      *dispatch.Worker
	attachments blob.Storage
	logger      *slog.Logger
}

type templateRequest struct {
	Title          string              `json:"title"`
	Subject        string              `json:"subject"`
	Body           string              `json:"body"`
	RequiredTokens []placeholder.Token `json:"required_tokens"`
}

// templateResponse augments a template with its readiness check so clients
// can warn about missing required tokens without re-deriving the rules.
type templateResponse struct {
	outreachsvc.Template
	Ready         bool                `json:"ready"`
	MissingTokens []placeholder.Token `json:"missing_tokens,omitempty"`
}

func newTemplateResponse(tpl *outreachsvc.Template) templateResponse {
	check := tpl.Readiness()
	return templateResponse{
		Template:      *tpl,
		Ready:         check.AllPresent,
		MissingTokens: check.Missing,
	}
}

func (h *handlers) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tpl, err := h.svc.CreateTemplate(r.Context(), outreachsvc.CreateTemplateParams{
		OwnerID:        ownerFromContext(r.Context()),
		Title:          req.Title,
		Subject:        req.Subject,
		Body:           req.Body,
		RequiredTokens: req.RequiredTokens,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTemplateResponse(tpl))
}

func (h *handlers) listTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := h.svc.ListTemplates(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]templateResponse, len(tpls))
	for i, tpl := range tpls {
		out[i] = newTemplateResponse(tpl)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *handlers) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "templateID")
	if !ok {
		return
	}

	tpl, err := h.svc.GetTemplate(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newTemplateResponse(tpl))
}

func (h *handlers) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "templateID")
	if !ok {
		return
	}

	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tpl, err := h.svc.UpdateTemplate(r.Context(), ownerFromContext(r.Context()), id, outreachsvc.UpdateTemplateParams{
		Title:          req.Title,
		Subject:        req.Subject,
		Body:           req.Body,
		RequiredTokens: req.RequiredTokens,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newTemplateResponse(tpl))
}

func (h *handlers) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "templateID")
	if !ok {
		return
	}

	if err := h.svc.DeleteTemplate(r.Context(), ownerFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type previewRequest struct {
	TemplateID uuid.UUID               `json:"template_id"`
	Recipients []outreachsvc.Recipient `json:"recipients"`
}

func (h *handlers) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rendered, err := h.svc.Preview(r.Context(), ownerFromContext(r.Context()), req.TemplateID, req.Recipients)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rendered)
}

type personalizeRequest struct {
	SchoolName   string   `json:"school_name"`
	CoachNames   []string `json:"coach_names"`
	AthleteNotes string   `json:"athlete_notes"`
}

func (h *handlers) personalize(w http.ResponseWriter, r *http.Request) {
	var req personalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message, err := h.svc.Personalize(r.Context(), ownerFromContext(r.Context()), outreachsvc.PersonalizeRequest{
		SchoolName:   req.SchoolName,
		CoachNames:   req.CoachNames,
		AthleteNotes: req.AthleteNotes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

type batchRequest struct {
	TemplateID  uuid.UUID               `json:"template_id"`
	Recipients  []outreachsvc.Recipient `json:"recipients"`
	Attachments []string                `json:"attachments,omitempty"`
}

type batchResponse struct {
	Items []*dispatch.Item `json:"items"`
	// Error reports per-recipient enqueue failures on a partially
	// accepted batch.
	Error string `json:"error,omitempty"`
}

func (h *handlers) enqueueBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.svc.EnqueueBatch(r.Context(), ownerFromContext(r.Context()), req.TemplateID, req.Recipients, req.Attachments)
	if err != nil && len(items) == 0 {
		respondServiceError(w, err)
		return
	}

	resp := batchResponse{Items: items}
	if err != nil {
		resp.Error = err.Error()
	}
	respondJSON(w, http.StatusAccepted, resp)
}

type sendRequest struct {
	TemplateID uuid.UUID             `json:"template_id"`
	Recipient  outreachsvc.Recipient `json:"recipient"`
}

func (h *handlers) sendNow(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	providerID, err := h.svc.SendNow(r.Context(), ownerFromContext(r.Context()), req.TemplateID, req.Recipient)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"provider_message_id": providerID})
}

const defaultQueueLimit = 50

func (h *handlers) listQueue(w http.ResponseWriter, r *http.Request) {
	limit := defaultQueueLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := h.queue.ListByOwner(r.Context(), ownerFromContext(r.Context()), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *handlers) requeue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "itemID")
	if !ok {
		return
	}

	orig, err := h.queue.GetItem(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if orig.OwnerID != ownerFromContext(r.Context()) {
		respondServiceError(w, dispatch.ErrItemNotFound)
		return
	}

	item, err := h.enqueuer.Requeue(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *handlers) drain(w http.ResponseWriter, r *http.Request) {
	item, err := h.worker.DrainOne(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *handlers) usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.svc.Usage(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usage)
}

func (h *handlers) alreadyContacted(w http.ResponseWriter, r *http.Request) {
	schoolID, err := uuid.Parse(r.URL.Query().Get("school_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "school_id must be a valid uuid")
		return
	}
	// Without an address the whole record for the school is returned;
	// with one, just the membership check.
	address := r.URL.Query().Get("address")
	if address == "" {
		addresses, err := h.svc.ContactedAddresses(r.Context(), ownerFromContext(r.Context()), schoolID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string][]string{"addresses": addresses})
		return
	}

	contacted, err := h.svc.AlreadyContacted(r.Context(), ownerFromContext(r.Context()), schoolID, address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"contacted": contacted})
}

// Attachment uploads are capped and restricted to document and image types
// coaches expect: transcripts, schedules, highlight stills.
const maxAttachmentUpload = 10 << 20

var allowedAttachmentTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
}

type attachmentResponse struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

func (h *handlers) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAttachmentUpload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	defer func() { _ = f.Close() }()

	if err := blob.ValidateSize(fh, maxAttachmentUpload); err != nil {
		respondServiceError(w, err)
		return
	}
	if err := blob.ValidateContentType(fh, allowedAttachmentTypes...); err != nil {
		respondServiceError(w, err)
		return
	}

	owner := ownerFromContext(r.Context())
	key := owner.String() + "/" + blob.SanitizeFilename(fh.Filename)

	obj, err := h.attachments.Save(r.Context(), fh, key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, attachmentResponse{
		Key:         obj.Key,
		Filename:    obj.Filename,
		Size:        obj.Size,
		ContentType: obj.ContentType,
		URL:         h.attachments.URL(obj.Key),
	})
}

func (h *handlers) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		respondError(w, http.StatusBadRequest, "attachment key is required")
		return
	}

	// Owner prefix scoping: a user can only delete their own blobs.
	owner := ownerFromContext(r.Context())
	if err := h.attachments.Delete(r.Context(), owner.String()+"/"+key); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, name+" must be a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}
