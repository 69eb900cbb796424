package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/heritage-bijoux/appraiser/internal/analysis"
	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/inventory"
	"github.com/heritage-bijoux/appraiser/internal/photos"
	"github.com/heritage-bijoux/appraiser/internal/publish"
)

var errPublishDisabled = errors.New("no inventory configured, set shopify.domain and shopify.token")

type errorResponse struct {
	Error    string `json:"error"`
	Raw      string `json:"raw,omitempty"`
	RemoteID string `json:"remote_id,omitempty"`
}

// writeError maps domain errors onto status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var payloadErr *draft.PayloadError
	var reconcileErr *publish.ReconcileError
	switch {
	case errors.As(err, &payloadErr):
		status = http.StatusUnprocessableEntity
		resp.Raw = payloadErr.Raw
	case errors.As(err, &reconcileErr):
		resp.RemoteID = reconcileErr.RemoteID
	case errors.Is(err, photos.ErrInvalidImage),
		errors.Is(err, draft.ErrNegativePrice),
		errors.Is(err, analysis.ErrUnsupportedProvider):
		status = http.StatusBadRequest
	case errors.Is(err, photos.ErrIndexOutOfRange),
		errors.Is(err, publish.ErrNoDraft):
		status = http.StatusNotFound
	case errors.Is(err, publish.ErrPreconditionFailed),
		errors.Is(err, analysis.ErrNoPhotos):
		status = http.StatusPreconditionFailed
	case errors.Is(err, publish.ErrSubmitting):
		status = http.StatusConflict
	case errors.Is(err, inventory.ErrRemoteRejected):
		status = http.StatusBadGateway
	case errors.Is(err, errPublishDisabled):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "err", err)
	} else {
		slog.Warn("Request rejected", "status", status, "err", err)
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	slog.Warn("Bad request", "err", message)
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}
