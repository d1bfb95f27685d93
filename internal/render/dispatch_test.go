package render

import (
	"context"
	"errors"
	"testing"

	"github.com/emrgen/storefront/internal/document"
	"github.com/stretchr/testify/assert"
)

type fakeCatalog struct {
	products []Product
	err      error
}

func (f *fakeCatalog) ListProducts(ctx context.Context, collection string, limit int) ([]Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.products) {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func testContext() Context {
	return Context{
		Ctx: context.TODO(),
		Catalog: &fakeCatalog{products: []Product{
			{ID: "p1", Title: "Mug", Price: "12.00", ImageURL: "/img/mug.png"},
			{ID: "p2", Title: "Shirt", Price: "25.00", ImageURL: "/img/shirt.png"},
		}},
	}
}

func TestRenderIsolation(t *testing.T) {
	registry := DefaultRegistry()

	sections := document.Sections{
		{ID: "s1", Type: "hero", Settings: document.Settings{"heading": "Summer sale"}},
		// required array field set to a string: must fail in isolation
		{ID: "s2", Type: "gallery", Settings: document.Settings{"images": "not-an-array"}},
		{ID: "s3", Type: "rich-text", Settings: document.Settings{"text": "hello"}},
	}

	results := Dispatch(registry, testContext(), sections)
	assert.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Contains(t, results[0].HTML, "Summer sale")

	assert.Error(t, results[1].Err)
	assert.Contains(t, results[1].HTML, "section-error")
	assert.Contains(t, results[1].HTML, "gallery")

	assert.NoError(t, results[2].Err)
	assert.Contains(t, results[2].HTML, "hello")

	// exactly one error placeholder for the offending section
	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestUnknownTypeTolerance(t *testing.T) {
	registry := DefaultRegistry()

	sections := document.Sections{
		{ID: "s1", Type: "not-a-real-type"},
		{ID: "s2", Type: "hero"},
	}

	results := Dispatch(registry, testContext(), sections)
	assert.Len(t, results, 2)

	assert.True(t, results[0].Unknown)
	assert.NoError(t, results[0].Err)
	assert.Contains(t, results[0].HTML, "not-a-real-type")
	assert.Contains(t, results[0].HTML, "s1")

	assert.NoError(t, results[1].Err)
}

func TestHiddenSectionsSkipped(t *testing.T) {
	registry := DefaultRegistry()

	sections := document.Sections{
		{ID: "s1", Type: "hero"},
		{ID: "s2", Type: "hero", Settings: document.Settings{"hidden": true}},
	}

	results := Dispatch(registry, testContext(), sections)
	assert.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].SectionID)
}

func TestRendererPanicIsCaught(t *testing.T) {
	registry := NewRegistry()
	registry.Register("explosive", panicRenderer{})
	registry.Register("hero", &HeroRenderer{})

	sections := document.Sections{
		{ID: "s1", Type: "explosive"},
		{ID: "s2", Type: "hero"},
	}

	results := Dispatch(registry, testContext(), sections)
	assert.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Contains(t, results[0].HTML, "section-error")
	assert.NoError(t, results[1].Err)
}

type panicRenderer struct{}

func (panicRenderer) Defaults() document.Settings { return document.Settings{} }
func (panicRenderer) Render(Context, document.Section) (string, error) {
	panic("boom")
}

func TestMissingSettingsUseDefaults(t *testing.T) {
	registry := DefaultRegistry()

	// no settings at all: every renderer substitutes its documented defaults
	for _, sectionType := range registry.Types() {
		result := DispatchSection(registry, testContext(), document.Section{ID: "x", Type: sectionType})
		assert.NoError(t, result.Err, "type %s", sectionType)
		assert.NotEmpty(t, result.HTML, "type %s", sectionType)
	}
}

func TestProductGridRendersCatalog(t *testing.T) {
	registry := DefaultRegistry()

	result := DispatchSection(registry, testContext(), document.Section{
		ID:   "s1",
		Type: "product-grid",
		// limit arrives as float64 from JSON decoding
		Settings: document.Settings{"limit": float64(1), "title": "Best sellers"},
	})
	assert.NoError(t, result.Err)
	assert.Contains(t, result.HTML, "Best sellers")
	assert.Contains(t, result.HTML, "Mug")
	assert.NotContains(t, result.HTML, "Shirt")
}

func TestProductGridCatalogFailure(t *testing.T) {
	registry := DefaultRegistry()
	rctx := Context{Ctx: context.TODO(), Catalog: &fakeCatalog{err: errors.New("catalog down")}}

	result := DispatchSection(registry, rctx, document.Section{ID: "s1", Type: "product-grid"})
	assert.Error(t, result.Err)
	assert.Contains(t, result.HTML, "catalog down")
}

func TestCompositeSectionBlocks(t *testing.T) {
	registry := DefaultRegistry()

	result := DispatchSection(registry, testContext(), document.Section{
		ID:   "s1",
		Type: "header",
		Settings: document.Settings{
			"title": "My shop",
		},
		Blocks: []document.Block{
			{ID: "b1", Type: "link", Settings: document.Settings{"label": "Home", "url": "/"}},
			{ID: "b2", Type: "link", Settings: document.Settings{"label": "Catalog", "url": "/collections/all"}},
		},
	})
	assert.NoError(t, result.Err)
	assert.Contains(t, result.HTML, "My shop")
	assert.Contains(t, result.HTML, "Home")
	assert.Contains(t, result.HTML, "Catalog")
}
