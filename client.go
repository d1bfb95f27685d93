package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/render"
	"github.com/emrgen/storefront/internal/service"
	"github.com/emrgen/storefront/internal/session"
)

// Client talks to a storefront server over the JSON HTTP API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient creates a client for the server listening on the given port.
func NewClient(port string) *Client {
	return &Client{
		base: "http://localhost:" + port,
		http: http.DefaultClient,
	}
}

// WithToken sets the bearer token sent with every request.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

type CreatePageRequest struct {
	StoreID      string `json:"storeId"`
	Slug         string `json:"slug"`
	PageType     string `json:"pageType"`
	FromTemplate bool   `json:"fromTemplate"`
}

func (c *Client) CreatePage(ctx context.Context, req *CreatePageRequest) (*service.Page, error) {
	page := &service.Page{}
	return page, c.do(ctx, http.MethodPost, "/v1/pages", req, page)
}

func (c *Client) GetPage(ctx context.Context, pageID string) (*service.Page, error) {
	page := &service.Page{}
	return page, c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, page)
}

type ListPagesResponse struct {
	Pages []*service.Page `json:"pages"`
	Total int64           `json:"total"`
}

func (c *Client) ListPages(ctx context.Context, storeID string) (*ListPagesResponse, error) {
	res := &ListPagesResponse{}
	return res, c.do(ctx, http.MethodGet, "/v1/stores/"+storeID+"/pages", nil, res)
}

func (c *Client) SaveDraft(ctx context.Context, pageID string, sections document.Sections) (*service.Page, error) {
	page := &service.Page{}
	body := map[string]any{"sections": sections}
	return page, c.do(ctx, http.MethodPut, "/v1/pages/"+pageID+"/draft", body, page)
}

func (c *Client) Publish(ctx context.Context, pageID string) (*service.Version, error) {
	version := &service.Version{}
	return version, c.do(ctx, http.MethodPost, "/v1/pages/"+pageID+"/publish", nil, version)
}

func (c *Client) Unpublish(ctx context.Context, pageID string) error {
	return c.do(ctx, http.MethodPost, "/v1/pages/"+pageID+"/unpublish", nil, nil)
}

func (c *Client) Rollback(ctx context.Context, pageID string, versionIndex int64) (*service.Version, error) {
	version := &service.Version{}
	body := map[string]any{"versionIndex": versionIndex}
	return version, c.do(ctx, http.MethodPost, "/v1/pages/"+pageID+"/rollback", body, version)
}

type ListVersionsResponse struct {
	Versions []*service.Version `json:"versions"`
}

func (c *Client) ListVersions(ctx context.Context, pageID string) (*ListVersionsResponse, error) {
	res := &ListVersionsResponse{}
	return res, c.do(ctx, http.MethodGet, "/v1/pages/"+pageID+"/versions", nil, res)
}

func (c *Client) GetPublishedPage(ctx context.Context, pageID string) (*service.PublishedPage, error) {
	page := &service.PublishedPage{}
	return page, c.do(ctx, http.MethodGet, "/v1/pages/"+pageID+"/published", nil, page)
}

func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/pages/"+pageID, nil, nil)
}

// ExportTemplate downloads a page's portable template blob.
func (c *Client) ExportTemplate(ctx context.Context, pageID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/pages/"+pageID+"/export", nil)
	if err != nil {
		return nil, err
	}
	c.auth(req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, readError(res)
	}

	return io.ReadAll(res.Body)
}

// ImportTemplate creates a page from a template blob.
func (c *Client) ImportTemplate(ctx context.Context, storeID, slug string, blob []byte) (*service.Page, error) {
	url := c.base + "/v1/stores/" + storeID + "/import?slug=" + slug
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	c.auth(req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		return nil, readError(res)
	}

	page := &service.Page{}
	return page, json.NewDecoder(res.Body).Decode(page)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth(req)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return readError(res)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) auth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// EditPage loads a page and opens an editor session over it. Session edits
// auto-save through the client; the returned session owns undo/redo state.
func (c *Client) EditPage(ctx context.Context, pageID string, opts ...session.Option) (*session.EditorSession, error) {
	page, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	s := session.New(pageID, render.DefaultRegistry(), clientSaver{client: c}, opts...)
	s.Load(page.Sections)

	return s, nil
}

// clientSaver adapts the client to the editor session's draft saver.
type clientSaver struct {
	client *Client
}

func (s clientSaver) SaveDraft(ctx context.Context, pageID string, sections document.Sections) error {
	_, err := s.client.SaveDraft(ctx, pageID, sections)
	return err
}

func readError(res *http.Response) error {
	body := map[string]string{}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body["error"] != "" {
		return fmt.Errorf("%s: %s", res.Status, body["error"])
	}

	return fmt.Errorf("unexpected status: %s", res.Status)
}
