package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/heritage-bijoux/appraiser/internal/photos"
)

const (
	maxUploadMemory = 32 << 20

	DefaultMaxFileSize    = 25 << 20
	DefaultMaxRequestSize = 128 << 20
)

type photosResponse struct {
	Photos   []photos.Photo `json:"photos"`
	Count    int            `json:"count"`
	Failures []fileFailure  `json:"failures,omitempty"`
}

type fileFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

func (h *Handler) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
	h.writePhotos(w, http.StatusOK, nil)
}

// HandleAddPhotos normalizes every uploaded "files" part. Files that fail
// are reported; the rest are appended in upload order.
func (h *Handler) HandleAddPhotos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxRequestSize)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		h.badRequest(w, "Failed to read upload: "+err.Error())
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		h.badRequest(w, "no files uploaded")
		return
	}

	var failures []fileFailure
	files := make([]photos.File, 0, len(headers))
	for _, header := range headers {
		if header.Size > h.deps.MaxFileSize {
			failures = append(failures, fileFailure{
				Name:  header.Filename,
				Error: fmt.Sprintf("file too large: %d bytes (max %d)", header.Size, h.deps.MaxFileSize),
			})
			continue
		}
		f, err := header.Open()
		if err != nil {
			h.badRequest(w, "Failed to read file: "+err.Error())
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.badRequest(w, "Failed to read file contents: "+err.Error())
			return
		}
		files = append(files, photos.File{Name: header.Filename, Data: data})
	}
	oversized := len(failures)

	result := h.deps.Normalizer.NormalizeAll(r.Context(), files, h.deps.Workers)

	for _, failure := range result.Failures {
		failures = append(failures, fileFailure{Name: failure.Name, Error: failure.Err.Error()})
	}

	if len(result.Photos) > 0 {
		if err := h.deps.Session.AppendPhotos(result.Photos...); err != nil {
			h.writeError(w, err)
			return
		}
	}

	status := http.StatusOK
	switch {
	case len(result.Photos) > 0:
	case oversized == len(headers):
		status = http.StatusRequestEntityTooLarge
	default:
		status = http.StatusBadRequest
	}
	h.writePhotos(w, status, failures)
}

func (h *Handler) HandleClearPhotos(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Session.ClearPhotos(); err != nil {
		h.writeError(w, err)
		return
	}
	h.writePhotos(w, http.StatusOK, nil)
}

func (h *Handler) HandleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	index, ok := h.photoIndex(w, r)
	if !ok {
		return
	}
	if err := h.deps.Session.RemovePhoto(index); err != nil {
		h.writeError(w, err)
		return
	}
	h.writePhotos(w, http.StatusOK, nil)
}

func (h *Handler) HandleRotatePhoto(w http.ResponseWriter, r *http.Request) {
	index, ok := h.photoIndex(w, r)
	if !ok {
		return
	}
	if err := h.deps.Session.RotatePhoto(index); err != nil {
		h.writeError(w, err)
		return
	}
	h.writePhotos(w, http.StatusOK, nil)
}

func (h *Handler) photoIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.badRequest(w, "photo index must be an integer")
		return 0, false
	}
	return index, true
}

func (h *Handler) writePhotos(w http.ResponseWriter, status int, failures []fileFailure) {
	set := h.deps.Session.Photos()
	if set == nil {
		set = []photos.Photo{}
	}
	h.writeJSON(w, status, photosResponse{Photos: set, Count: len(set), Failures: failures})
}
