package outreach

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/athletereach/outreach/pkg/blob"
	"github.com/athletereach/outreach/pkg/delivery"
	"github.com/athletereach/outreach/pkg/limits"
	"github.com/athletereach/outreach/svc/dispatch"
	outreachsvc "github.com/athletereach/outreach/svc/outreach"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps domain errors onto HTTP statuses. Quota denials
// get 402 so clients can prompt a plan upgrade, while provider failures get
// 502 so clients know a retry may succeed.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, limits.ErrLimitExceeded):
		respondError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, outreachsvc.ErrTemplateNotFound),
		errors.Is(err, outreachsvc.ErrRecordNotFound),
		errors.Is(err, dispatch.ErrItemNotFound),
		errors.Is(err, blob.ErrBlobNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, outreachsvc.ErrEmptyTitle),
		errors.Is(err, outreachsvc.ErrEmptyBody),
		errors.Is(err, outreachsvc.ErrNoRecipients),
		errors.Is(err, outreachsvc.ErrAnonymousOwner),
		errors.Is(err, dispatch.ErrNoRecipients),
		errors.Is(err, dispatch.ErrEmptyContent),
		errors.Is(err, dispatch.ErrAnonymousOwner),
		errors.Is(err, dispatch.ErrNotRequeueable),
		errors.Is(err, blob.ErrFileTooLarge),
		errors.Is(err, blob.ErrContentTypeNotAllowed),
		errors.Is(err, blob.ErrInvalidKey),
		errors.Is(err, blob.ErrNilFileHeader):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, outreachsvc.ErrDeliveryUnavailable),
		errors.Is(err, outreachsvc.ErrPersonalizerUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, delivery.ErrDelivery),
		errors.Is(err, outreachsvc.ErrPersonalizationFailed):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, limits.ErrUsageUnavailable):
		// Fail-closed quota check: the denial is on our side, not the user's.
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
