package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/publish"
)

const DefaultMaxPayloadSize = 1 << 20

type analyzeRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// HandleAnalyze asks the AI collaborator for a draft of the current photos
// and makes it the session draft.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			h.badRequest(w, "Invalid JSON: "+err.Error())
			return
		}
	}

	d, err := h.deps.Analyzer.Draft(r.Context(), h.deps.Session.Photos(), req.Provider, req.Model)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.deps.Session.SetDraft(d); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	d := h.deps.Session.Draft()
	if d == nil {
		h.writeError(w, publish.ErrNoDraft)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// HandleReplaceDraft accepts a JSON payload pasted by the operator, in any
// shape the normalizer recognizes.
func (h *Handler) HandleReplaceDraft(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.deps.MaxPayloadSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("payload exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		h.badRequest(w, "Failed to read body: "+err.Error())
		return
	}

	d, err := draft.FromManualPayload(string(body))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.deps.Session.SetDraft(d); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) HandleEditDraft(w http.ResponseWriter, r *http.Request) {
	var patch draft.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.badRequest(w, "Invalid JSON: "+err.Error())
		return
	}
	if err := h.deps.Session.EditDraft(patch); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.deps.Session.Draft())
}

func (h *Handler) HandleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Session.Discard(); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	if h.deps.Publisher == nil {
		h.writeError(w, errPublishDisabled)
		return
	}
	item, err := h.deps.Publisher.Publish(r.Context(), h.deps.Session)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}
