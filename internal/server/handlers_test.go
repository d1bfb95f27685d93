package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/emrgen/storefront/internal/compress"
	"github.com/emrgen/storefront/internal/live"
	"github.com/emrgen/storefront/internal/render"
	"github.com/emrgen/storefront/internal/service"
	"github.com/emrgen/storefront/internal/store"
	"github.com/emrgen/storefront/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()

	os.Exit(code)
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	tester.RemoveDBFile()
	tester.Setup()

	db := store.NewGormStore(tester.TestDB())
	pages := service.NewPageService(compress.KindNop, db, nil, nil)
	published := service.NewPublishedPageService(db, nil)

	mux := http.NewServeMux()
	NewRest(pages, published, render.DefaultRegistry(), nil, live.NewHub()).Register(mux)

	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	return w
}

func TestPageLifecycleOverHTTP(t *testing.T) {
	mux := newTestMux(t)
	storeID := uuid.New().String()

	// create
	w := doJSON(t, mux, http.MethodPost, "/v1/pages", map[string]any{
		"storeId":  storeID,
		"slug":     "home",
		"pageType": "home",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	page := &service.Page{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), page))
	assert.Equal(t, "home", page.Slug)

	// draft
	w = doJSON(t, mux, http.MethodPut, "/v1/pages/"+page.ID+"/draft", map[string]any{
		"sections": []map[string]any{
			{"id": uuid.New().String(), "type": "hero", "settings": map[string]any{"heading": "Hi"}},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// publish
	w = doJSON(t, mux, http.MethodPost, "/v1/pages/"+page.ID+"/publish", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	version := &service.Version{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), version))
	assert.Equal(t, int64(1), version.VersionIndex)

	// published fetch
	w = doJSON(t, mux, http.MethodGet, "/v1/pages/"+page.ID+"/published", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	live := &service.PublishedPage{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), live))
	assert.Len(t, live.Sections, 1)

	// rendered html
	w = doJSON(t, mux, http.MethodGet, "/v1/pages/"+page.ID+"/render", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Hi"))
}

func TestHTTPErrorMapping(t *testing.T) {
	mux := newTestMux(t)

	w := doJSON(t, mux, http.MethodGet, "/v1/pages/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/v1/pages/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/v1/pages/"+uuid.New().String()+"/published", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
