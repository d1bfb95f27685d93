package service

import (
	"context"
	"testing"

	"github.com/emrgen/storefront/internal/compress"
	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/store"
	"github.com/emrgen/storefront/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestPageService(t *testing.T) *PageService {
	t.Helper()
	tester.RemoveDBFile()
	tester.Setup()

	return NewPageService(compress.KindNop, store.NewGormStore(tester.TestDB()), nil, nil)
}

func draft(types ...string) document.Sections {
	sections := document.Sections{}
	for _, sectionType := range types {
		sections = document.AddSection(sections, sectionType, nil, true)
	}

	return sections
}

func TestPageService_CreatePage(t *testing.T) {
	client := newTestPageService(t)
	storeID := uuid.New()

	page, err := client.CreatePage(context.TODO(), storeID, "about", "page", false)
	assert.NoError(t, err)
	assert.NotNil(t, page)
	assert.Equal(t, "about", page.Slug)
	assert.Equal(t, "draft", page.Status)
	assert.Equal(t, int64(0), page.VersionCount)
	assert.Len(t, page.Sections, 0)

	got, err := client.GetPage(context.TODO(), uuid.MustParse(page.ID))
	assert.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)
}

func TestPageService_CreatePageFromTemplate(t *testing.T) {
	client := newTestPageService(t)

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", true)
	assert.NoError(t, err)
	assert.NotEmpty(t, page.Sections)

	for _, section := range page.Sections {
		assert.NotEmpty(t, section.ID)
	}
}

func TestPageService_GetPageMissing(t *testing.T) {
	client := newTestPageService(t)

	_, err := client.GetPage(context.TODO(), uuid.New())
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPageService_SaveDraft(t *testing.T) {
	client := newTestPageService(t)

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", false)
	assert.NoError(t, err)

	sections := draft("hero", "rich-text")
	saved, err := client.SaveDraft(context.TODO(), uuid.MustParse(page.ID), sections)
	assert.NoError(t, err)
	assert.True(t, saved.Sections.Equal(sections))

	// a second identical save is harmless
	saved, err = client.SaveDraft(context.TODO(), uuid.MustParse(page.ID), sections)
	assert.NoError(t, err)
	assert.True(t, saved.Sections.Equal(sections))

	_, err = client.SaveDraft(context.TODO(), uuid.New(), sections)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPageService_SaveDraftWritesBackup(t *testing.T) {
	client := newTestPageService(t)
	db := store.NewGormStore(tester.TestDB())

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", false)
	assert.NoError(t, err)

	_, err = client.SaveDraft(context.TODO(), uuid.MustParse(page.ID), draft("hero"))
	assert.NoError(t, err)
	_, err = client.SaveDraft(context.TODO(), uuid.MustParse(page.ID), draft("hero", "footer"))
	assert.NoError(t, err)

	backups, err := db.ListPageBackups(context.TODO(), uuid.MustParse(page.ID))
	assert.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestPageService_Publish(t *testing.T) {
	client := newTestPageService(t)

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", false)
	assert.NoError(t, err)
	pageID := uuid.MustParse(page.ID)

	sections := draft("hero", "product-grid")
	_, err = client.SaveDraft(context.TODO(), pageID, sections)
	assert.NoError(t, err)

	version, err := client.Publish(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), version.VersionIndex)
	assert.True(t, version.Sections.Equal(sections))

	got, err := client.GetPage(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Equal(t, "published", got.Status)
	assert.Equal(t, int64(1), got.VersionCount)

	// publishing again appends, never overwrites
	version, err = client.Publish(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), version.VersionIndex)
}

func TestPageService_PublishKeepsEditingDraft(t *testing.T) {
	client := newTestPageService(t)
	published := NewPublishedPageService(store.NewGormStore(tester.TestDB()), nil)

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", false)
	assert.NoError(t, err)
	pageID := uuid.MustParse(page.ID)

	v1 := draft("hero")
	_, err = client.SaveDraft(context.TODO(), pageID, v1)
	assert.NoError(t, err)
	_, err = client.Publish(context.TODO(), pageID)
	assert.NoError(t, err)

	// draft edits after publish do not leak to the live page
	_, err = client.SaveDraft(context.TODO(), pageID, draft("hero", "gallery"))
	assert.NoError(t, err)

	live, err := published.GetPublishedPage(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.True(t, live.Sections.Equal(v1))
}

func TestPageService_RollbackRoundTrip(t *testing.T) {
	client := newTestPageService(t)

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", false)
	assert.NoError(t, err)
	pageID := uuid.MustParse(page.ID)

	s1 := draft("hero")
	s2 := draft("hero", "gallery", "footer")

	_, err = client.SaveDraft(context.TODO(), pageID, s1)
	assert.NoError(t, err)
	_, err = client.Publish(context.TODO(), pageID)
	assert.NoError(t, err)

	_, err = client.SaveDraft(context.TODO(), pageID, s2)
	assert.NoError(t, err)
	_, err = client.Publish(context.TODO(), pageID)
	assert.NoError(t, err)

	// rolling back to version 1 creates version 3 with version 1's content
	rolled, err := client.Rollback(context.TODO(), pageID, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), rolled.VersionIndex)
	assert.True(t, rolled.Sections.Equal(s1))

	versions, err := client.ListVersions(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Len(t, versions, 3)
	assert.Equal(t, int64(3), versions[0].VersionIndex)
}

func TestPageService_RollbackMissingVersion(t *testing.T) {
	client := newTestPageService(t)

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", false)
	assert.NoError(t, err)

	_, err = client.Rollback(context.TODO(), uuid.MustParse(page.ID), 7)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestPageService_DeletePage(t *testing.T) {
	client := newTestPageService(t)
	published := NewPublishedPageService(store.NewGormStore(tester.TestDB()), nil)

	page, err := client.CreatePage(context.TODO(), uuid.New(), "home", "home", false)
	assert.NoError(t, err)
	pageID := uuid.MustParse(page.ID)

	_, err = client.SaveDraft(context.TODO(), pageID, draft("hero"))
	assert.NoError(t, err)
	_, err = client.Publish(context.TODO(), pageID)
	assert.NoError(t, err)

	err = client.DeletePage(context.TODO(), pageID)
	assert.NoError(t, err)

	_, err = client.GetPage(context.TODO(), pageID)
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = published.GetPublishedPage(context.TODO(), pageID)
	assert.ErrorIs(t, err, ErrNotPublished)
}

func TestPageService_ListPages(t *testing.T) {
	client := newTestPageService(t)
	storeID := uuid.New()

	_, err := client.CreatePage(context.TODO(), storeID, "home", "home", false)
	assert.NoError(t, err)
	_, err = client.CreatePage(context.TODO(), storeID, "about", "page", false)
	assert.NoError(t, err)
	_, err = client.CreatePage(context.TODO(), uuid.New(), "other", "page", false)
	assert.NoError(t, err)

	pages, total, err := client.ListPages(context.TODO(), storeID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, pages, 2)
}
