package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/heritage-bijoux/appraiser/internal/archive"
	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/photos"
	"github.com/heritage-bijoux/appraiser/internal/publish"
)

// Analyzer turns the session photos into a draft.
type Analyzer interface {
	Draft(ctx context.Context, set []photos.Photo, provider, model string) (*draft.Draft, error)
}

// Publisher pushes the session to the inventory and archives it.
type Publisher interface {
	Publish(ctx context.Context, s *publish.Session) (*archive.Item, error)
}

type Dependencies struct {
	Session    *publish.Session
	Normalizer *photos.Normalizer
	Workers    int
	Analyzer   Analyzer
	// Publisher may be nil when no inventory is configured.
	Publisher Publisher
	Archive   *archive.Store

	// Size limits; zero means the package default.
	MaxFileSize    int64
	MaxRequestSize int64
	MaxPayloadSize int64
}

// Handler serves the operator API for one in-process session.
type Handler struct {
	deps Dependencies
}

func New(deps Dependencies) *Handler {
	if deps.Normalizer == nil {
		deps.Normalizer = photos.NewNormalizer(photos.DefaultMaxWidth, photos.DefaultQuality)
	}
	if deps.MaxFileSize <= 0 {
		deps.MaxFileSize = DefaultMaxFileSize
	}
	if deps.MaxRequestSize <= 0 {
		deps.MaxRequestSize = DefaultMaxRequestSize
	}
	if deps.MaxPayloadSize <= 0 {
		deps.MaxPayloadSize = DefaultMaxPayloadSize
	}
	return &Handler{deps: deps}
}

// Routes mounts every endpoint on a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.HandleSession)

		r.Get("/photos", h.HandleListPhotos)
		r.Post("/photos", h.HandleAddPhotos)
		r.Delete("/photos", h.HandleClearPhotos)
		r.Delete("/photos/{index}", h.HandleRemovePhoto)
		r.Post("/photos/{index}/rotate", h.HandleRotatePhoto)

		r.Post("/analyze", h.HandleAnalyze)

		r.Get("/draft", h.HandleGetDraft)
		r.Put("/draft", h.HandleReplaceDraft)
		r.Patch("/draft", h.HandleEditDraft)
		r.Delete("/draft", h.HandleDiscardDraft)

		r.Post("/publish", h.HandlePublish)

		r.Get("/archive", h.HandleListArchive)
		r.Get("/archive/export", h.HandleExportArchive)
		r.Delete("/archive/{id}", h.HandleRemoveArchived)
		r.Post("/archive/{id}/edit", h.HandleEditArchived)
	})

	return r
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.deps.Session.Snapshot())
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("Request served", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "request_id", middleware.GetReqID(r.Context()))
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}
