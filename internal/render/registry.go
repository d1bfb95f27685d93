// Package render maps section types to renderers and isolates per-section
// failures. One corrupt section must never blank the whole page.
package render

import (
	"context"

	"github.com/emrgen/storefront/internal/document"
)

// Product is the minimal catalog shape the built-in renderers need. The
// catalog itself lives outside the engine.
type Product struct {
	ID       string
	Title    string
	Price    string
	ImageURL string
}

// Catalog supplies product data to storefront renderers.
type Catalog interface {
	// ListProducts returns up to limit products for a collection handle.
	ListProducts(ctx context.Context, collection string, limit int) ([]Product, error)
}

// Context carries the collaborators a renderer may need.
type Context struct {
	Ctx     context.Context
	Catalog Catalog
}

// Renderer turns one section into HTML. Renderers read settings through the
// getters below so missing keys substitute documented defaults instead of
// crashing; anything else they throw is caught at the dispatch boundary.
type Renderer interface {
	// Render produces the section markup.
	Render(rctx Context, section document.Section) (string, error)
	// Defaults returns the settings a freshly added section of this type starts with.
	Defaults() document.Settings
}

// Registry holds the dispatcher-known set of section types. The set is
// open-ended: documents may carry types the registry has never heard of.
type Registry struct {
	renderers map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register binds a section type to a renderer, replacing any previous binding.
func (r *Registry) Register(sectionType string, renderer Renderer) {
	r.renderers[sectionType] = renderer
}

// Lookup returns the renderer for a type.
func (r *Registry) Lookup(sectionType string) (Renderer, bool) {
	renderer, ok := r.renderers[sectionType]
	return renderer, ok
}

// Defaults resolves the registered default settings for a type. Unknown types
// resolve to an empty bag, never an error.
func (r *Registry) Defaults(sectionType string) document.Settings {
	if renderer, ok := r.renderers[sectionType]; ok {
		return renderer.Defaults().Clone()
	}

	return document.Settings{}
}

// Types lists the registered section types.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.renderers))
	for t := range r.renderers {
		types = append(types, t)
	}

	return types
}

// settings getters shared by the built-in renderers

func stringSetting(s document.Settings, key, fallback string) string {
	if v, ok := s[key].(string); ok {
		return v
	}

	return fallback
}

func intSetting(s document.Settings, key string, fallback int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64
		return int(v)
	}

	return fallback
}

func boolSetting(s document.Settings, key string, fallback bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}

	return fallback
}
