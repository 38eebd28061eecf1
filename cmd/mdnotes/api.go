package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	mdnotes "github.com/alnah/go-mdnotes"
	"github.com/alnah/go-mdnotes/internal/app"
	"github.com/alnah/go-mdnotes/internal/store"
)

// maxBodyBytes bounds JSON request bodies, documents included.
const maxBodyBytes = 32 << 20

// errBadRequest marks malformed requests.
var errBadRequest = errors.New("bad request")

// api serves the command surface as JSON.
type api struct {
	app    *app.App
	logger *slog.Logger
}

// collectionRequest is the body of POST /collections and PUT /collections/{id}.
type collectionRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// documentRequest is the body of POST /documents and PUT /documents/{id}.
// CollectionID is ignored on update.
type documentRequest struct {
	CollectionID int64  `json:"collectionId"`
	Name         string `json:"name"`
	Content      string `json:"content"`
}

// exportRequest is the body of POST /documents/{id}/export.
type exportRequest struct {
	Format     string `json:"format"`
	OutputPath string `json:"outputPath"`
}

// newRouter mounts every route of the HTTP API.
func newRouter(a *app.App, logger *slog.Logger) http.Handler {
	h := &api{app: a, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.listCollections)
		r.Post("/", h.createCollection)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCollection)
			r.Put("/", h.updateCollection)
			r.Delete("/", h.deleteCollection)
			r.Get("/documents", h.listDocuments)
		})
	})
	r.Post("/documents", h.createDocument)
	r.Route("/documents/{id}", func(r chi.Router) {
		r.Get("/", h.getDocument)
		r.Put("/", h.updateDocument)
		r.Delete("/", h.deleteDocument)
		r.Post("/export", h.exportDocument)
	})
	r.Get("/pdf/available", h.pdfAvailable)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// logRequests logs one line per request at Info.
func (h *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			slog.String("id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

func (h *api) listCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := h.app.GetCollections(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (h *api) getCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	col, err := h.app.GetCollection(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if col == nil {
		h.fail(w, collectionNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (h *api) createCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	col, err := h.app.CreateCollection(r.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (h *api) updateCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req collectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	col, err := h.app.UpdateCollection(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (h *api) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.app.DeleteCollection(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *api) listDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	docs, err := h.app.GetDocumentsByCollection(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func (h *api) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.app.GetDocument(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if doc == nil {
		h.fail(w, documentNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *api) createDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.app.CreateDocument(r.Context(), req.CollectionID, req.Name, req.Content)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *api) updateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req documentRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.app.UpdateDocument(r.Context(), id, req.Name, req.Content)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *api) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.app.DeleteDocument(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func (h *api) exportDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req exportRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OutputPath == "" {
		h.fail(w, fmt.Errorf("%w: outputPath is required", errBadRequest))
		return
	}
	if err := h.app.ExportDocument(r.Context(), id, req.Format, req.OutputPath); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outputPath": req.OutputPath})
}

func (h *api) pdfAvailable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"available": h.app.CheckPDFAvailable()})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// pathID parses the {id} URL parameter, answering 400 when it is not a
// positive integer.
func (h *api) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.fail(w, fmt.Errorf("%w: invalid id %q", errBadRequest, raw))
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into v, rejecting unknown fields.
func (h *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.fail(w, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return false
	}
	return true
}

// fail answers with the status matching err and its message.
func (h *api) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", slog.Any("error", err))
	}
	writeError(w, status, err.Error())
}

// statusFor maps command errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrInvalid),
		errors.Is(err, mdnotes.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, app.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, mdnotes.ErrEngineUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
