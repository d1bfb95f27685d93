package service

import (
	"context"
	"testing"

	"github.com/emrgen/storefront/internal/compress"
	"github.com/emrgen/storefront/internal/store"
	"github.com/emrgen/storefront/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTemplateExportImport(t *testing.T) {
	client := newTestPageService(t)
	storeID := uuid.New()

	page, err := client.CreatePage(context.TODO(), storeID, "home", "home", true)
	assert.NoError(t, err)

	blob, err := client.ExportTemplate(context.TODO(), uuid.MustParse(page.ID))
	assert.NoError(t, err)
	assert.NotEmpty(t, blob)

	imported, err := client.ImportTemplate(context.TODO(), storeID, "home-copy", blob)
	assert.NoError(t, err)
	assert.Equal(t, "home-copy", imported.Slug)
	assert.Equal(t, page.PageType, imported.PageType)
	assert.Len(t, imported.Sections, len(page.Sections))

	// imported sections carry fresh ids
	source := map[string]bool{}
	for _, section := range page.Sections {
		source[section.ID] = true
	}
	for _, section := range imported.Sections {
		assert.False(t, source[section.ID])
	}
}

func TestTemplateImportRejectsExistingSlug(t *testing.T) {
	client := newTestPageService(t)
	storeID := uuid.New()

	page, err := client.CreatePage(context.TODO(), storeID, "home", "home", true)
	assert.NoError(t, err)

	blob, err := client.ExportTemplate(context.TODO(), uuid.MustParse(page.ID))
	assert.NoError(t, err)

	_, err = client.ImportTemplate(context.TODO(), storeID, "home", blob)
	assert.ErrorIs(t, err, ErrPageExists)
}

func TestTemplateImportRejectsGarbage(t *testing.T) {
	client := newTestPageService(t)

	_, err := client.ImportTemplate(context.TODO(), uuid.New(), "junk", []byte("not a template"))
	assert.ErrorIs(t, err, ErrTemplateFormat)
}

func TestTemplateVersionCheck(t *testing.T) {
	assert.NoError(t, checkTemplateVersion(TemplateFormatVersion))
	assert.NoError(t, checkTemplateVersion("1.9.4"))
	assert.ErrorIs(t, checkTemplateVersion("2.0.0"), ErrTemplateVersion)
	assert.ErrorIs(t, checkTemplateVersion("banana"), ErrTemplateVersion)
}

func TestFallbackTemplate(t *testing.T) {
	home := FallbackTemplate("home")
	assert.NotEmpty(t, home)

	// unknown page types fall back to the default starter
	unknown := FallbackTemplate("landing")
	assert.NotEmpty(t, unknown)

	// two instantiations never share ids
	again := FallbackTemplate("home")
	assert.NotEqual(t, home[0].ID, again[0].ID)
}

func TestTemplateRoundTripAcrossCodecs(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	// a store written with brotli must re-import blobs exported by a gzip peer
	gz := NewPageService(compress.KindGZip, store.NewGormStore(tester.TestDB()), nil, nil)
	br := NewPageService(compress.KindBrotli, store.NewGormStore(tester.TestDB()), nil, nil)

	page, err := gz.CreatePage(context.TODO(), uuid.New(), "home", "home", true)
	assert.NoError(t, err)

	blob, err := gz.ExportTemplate(context.TODO(), uuid.MustParse(page.ID))
	assert.NoError(t, err)

	imported, err := br.ImportTemplate(context.TODO(), uuid.New(), "home", blob)
	assert.NoError(t, err)
	assert.Len(t, imported.Sections, len(page.Sections))
}
