package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/live"
	"github.com/emrgen/storefront/internal/render"
	"github.com/emrgen/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewRest creates the REST handler set. The catalog may be nil; product
// sections then render as error placeholders instead of failing the page.
func NewRest(pages *service.PageService, published *service.PublishedPageService, registry *render.Registry, catalog render.Catalog, hub *live.Hub) *Rest {
	return &Rest{
		pages:     pages,
		published: published,
		registry:  registry,
		catalog:   catalog,
		hub:       hub,
	}
}

// Rest exposes the page builder over JSON HTTP.
type Rest struct {
	pages     *service.PageService
	published *service.PublishedPageService
	registry  *render.Registry
	catalog   render.Catalog
	hub       *live.Hub
}

// Register mounts all routes on the mux.
func (s *Rest) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/pages", s.createPage)
	mux.HandleFunc("GET /v1/pages/{id}", s.getPage)
	mux.HandleFunc("DELETE /v1/pages/{id}", s.deletePage)
	mux.HandleFunc("PUT /v1/pages/{id}/draft", s.saveDraft)
	mux.HandleFunc("POST /v1/pages/{id}/publish", s.publish)
	mux.HandleFunc("POST /v1/pages/{id}/unpublish", s.unpublish)
	mux.HandleFunc("POST /v1/pages/{id}/rollback", s.rollback)
	mux.HandleFunc("GET /v1/pages/{id}/versions", s.listVersions)
	mux.HandleFunc("GET /v1/pages/{id}/versions/{versionIndex}", s.getVersion)
	mux.HandleFunc("GET /v1/pages/{id}/published", s.getPublished)
	mux.HandleFunc("GET /v1/pages/{id}/render", s.renderPublished)
	mux.HandleFunc("GET /v1/pages/{id}/export", s.exportTemplate)
	mux.HandleFunc("GET /v1/stores/{storeId}/pages", s.listPages)
	mux.HandleFunc("GET /v1/stores/{storeId}/published", s.listPublished)
	mux.HandleFunc("GET /v1/stores/{storeId}/published/{slug}", s.getPublishedBySlug)
	mux.HandleFunc("POST /v1/stores/{storeId}/import", s.importTemplate)
	mux.HandleFunc("GET /v1/pages/{id}/preview", s.servePreview)
	mux.HandleFunc("GET /v1/events", s.serveEvents)
}

type createPageRequest struct {
	StoreID      string `json:"storeId"`
	Slug         string `json:"slug"`
	PageType     string `json:"pageType"`
	FromTemplate bool   `json:"fromTemplate"`
}

func (s *Rest) createPage(w http.ResponseWriter, r *http.Request) {
	req := &createPageRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.pages.CreatePage(r.Context(), storeID, req.Slug, req.PageType, req.FromTemplate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

func (s *Rest) getPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.pages.GetPage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Rest) listPages(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.PathValue("storeId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pages, total, err := s.pages.ListPages(r.Context(), storeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pages": pages,
		"total": total,
	})
}

type saveDraftRequest struct {
	Sections document.Sections `json:"sections"`
}

func (s *Rest) saveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req := &saveDraftRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.pages.SaveDraft(r.Context(), id, req.Sections)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.hub.PushDraft(page.ID, page.Sections)
	writeJSON(w, http.StatusOK, page)
}

func (s *Rest) publish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	version, err := s.pages.Publish(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

func (s *Rest) unpublish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.published.Unpublish(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "draft"})
}

type rollbackRequest struct {
	VersionIndex int64 `json:"versionIndex"`
}

func (s *Rest) rollback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req := &rollbackRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	version, err := s.pages.Rollback(r.Context(), id, req.VersionIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

func (s *Rest) listVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	versions, err := s.pages.ListVersions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (s *Rest) getVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	versionIndex, err := strconv.ParseInt(r.PathValue("versionIndex"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	version, err := s.published.GetPublishedVersion(r.Context(), id, versionIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

func (s *Rest) getPublished(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.published.GetPublishedPage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Rest) getPublishedBySlug(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.PathValue("storeId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.published.GetPublishedPageBySlug(r.Context(), storeID, r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Rest) listPublished(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.PathValue("storeId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pages, err := s.published.ListPublishedPages(r.Context(), storeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (s *Rest) renderPublished(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.published.GetPublishedPage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	results := render.Dispatch(s.registry, render.Context{Ctx: r.Context(), Catalog: s.catalog}, page.Sections)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, render.Page(results)); err != nil {
		logrus.Errorf("error writing rendered page: %v", err)
	}
}

func (s *Rest) exportTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	blob, err := s.pages.ExportTemplate(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="page-template.json.gz"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob); err != nil {
		logrus.Errorf("error writing template blob: %v", err)
	}
}

func (s *Rest) importTemplate(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.PathValue("storeId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing slug query parameter"))
		return
	}

	blob, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.pages.ImportTemplate(r.Context(), storeID, slug, blob)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

func (s *Rest) servePreview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.hub.ServePreview(w, r, id.String())
}

func (s *Rest) serveEvents(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeEvents(w, r)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrVersionNotFound),
		errors.Is(err, service.ErrNotPublished):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrPageExists):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, service.ErrTemplateFormat),
		errors.Is(err, service.ErrTemplateVersion):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
