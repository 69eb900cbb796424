package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/heritage-bijoux/appraiser/internal/archive"
)

func (h *Handler) HandleListArchive(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.deps.Archive.Items())
}

func (h *Handler) HandleRemoveArchived(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Archive.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEditArchived loads a copy of an archived item into the session.
func (h *Handler) HandleEditArchived(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := h.deps.Archive.Get(id)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("archived item %s not found", id)})
		return
	}
	if err := h.deps.Session.LoadArchived(item); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.deps.Session.Snapshot())
}

var exportContentTypes = map[string]string{
	"json":    "application/json",
	"yaml":    "application/yaml",
	"yml":     "application/yaml",
	"parquet": "application/vnd.apache.parquet",
}

func (h *Handler) HandleExportArchive(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		h.badRequest(w, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="archive.%s"`, format))
	if err := archive.Export(w, h.deps.Archive.Items(), format); err != nil {
		h.writeError(w, err)
	}
}
