package service

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/storefront/internal/cache"
	"github.com/emrgen/storefront/internal/compress"
	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/model"
	"github.com/emrgen/storefront/internal/queue"
	"github.com/emrgen/storefront/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Page is the service-level view of a draft page.
type Page struct {
	ID           string             `json:"id"`
	StoreID      string             `json:"storeId"`
	Slug         string             `json:"slug"`
	PageType     string             `json:"pageType"`
	Status       string             `json:"status"`
	Sections     document.Sections  `json:"sections"`
	VersionCount int64              `json:"versionCount"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Version is the service-level view of one published snapshot.
type Version struct {
	PageID       string            `json:"pageId"`
	VersionIndex int64             `json:"versionIndex"`
	Sections     document.Sections `json:"sections,omitempty"`
	PublishedAt  time.Time         `json:"publishedAt"`
}

// NewPageService creates a new PageService. The codec kind tags newly written
// rows; existing rows decode with whatever codec their row names. Cache and
// events may be nil in tests and tools.
func NewPageService(codec string, store store.Store, pages cache.PageCache, events queue.PublishEventQueue) *PageService {
	return &PageService{
		codec:  codec,
		store:  store,
		cache:  pages,
		events: events,
	}
}

// PageService owns the draft -> published -> rollback lifecycle of pages.
type PageService struct {
	codec  string
	store  store.Store
	cache  cache.PageCache
	events queue.PublishEventQueue
}

// CreatePage creates a page, empty or seeded from the fallback template
// registered for its page type.
func (p *PageService) CreatePage(ctx context.Context, storeID uuid.UUID, slug, pageType string, fromTemplate bool) (*Page, error) {
	sections := document.Sections{}
	if fromTemplate {
		sections = FallbackTemplate(pageType)
	}

	data, err := p.encodeSections(sections)
	if err != nil {
		return nil, err
	}

	page := &model.Page{
		ID:          uuid.New().String(),
		StoreID:     storeID.String(),
		Slug:        slug,
		PageType:    pageType,
		Status:      model.StatusDraft,
		Sections:    data,
		Compression: p.codec,
	}

	if err := p.store.CreatePage(ctx, page); err != nil {
		return nil, err
	}

	return p.intoPage(page)
}

// GetPage retrieves a draft page.
func (p *PageService) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	page, err := p.store.GetPage(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	return p.intoPage(page)
}

// ListPages lists the pages of a store.
func (p *PageService) ListPages(ctx context.Context, storeID uuid.UUID) ([]*Page, int64, error) {
	pages, total, err := p.store.ListPages(ctx, storeID)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*Page, 0, len(pages))
	for _, page := range pages {
		view, err := p.intoPage(page)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, view)
	}

	return out, total, nil
}

// SaveDraft persists the sections as the page's draft content. Idempotent and
// safe to call repeatedly; the auto-save path calls it on every quiet period.
// Each save also appends a backup row for the pruner to thin later.
func (p *PageService) SaveDraft(ctx context.Context, id uuid.UUID, sections document.Sections) (*Page, error) {
	data, err := p.encodeSections(sections)
	if err != nil {
		return nil, err
	}

	var page *model.Page
	err = p.store.Transaction(ctx, func(tx store.Store) error {
		page, err = tx.GetPage(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		page.Sections = data
		page.Compression = p.codec
		if err := tx.UpdatePage(ctx, page); err != nil {
			return err
		}

		return tx.CreatePageBackup(ctx, &model.PageBackup{
			PageID:      page.ID,
			Seq:         time.Now().UnixNano(),
			Sections:    data,
			Compression: p.codec,
		})
	})
	if err != nil {
		return nil, err
	}

	return p.intoPage(page)
}

// Publish atomically appends the draft as the next version and flips the live
// pointer. A failure leaves no partial version behind; the caller retries.
func (p *PageService) Publish(ctx context.Context, id uuid.UUID) (*Version, error) {
	var version *model.PageVersion
	var latest *model.LatestPublishedPage

	err := p.store.Transaction(ctx, func(tx store.Store) error {
		page, err := tx.GetPage(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		next := page.VersionCount + 1
		now := time.Now()

		version = &model.PageVersion{
			PageID:       page.ID,
			StoreID:      page.StoreID,
			VersionIndex: next,
			Sections:     page.Sections,
			Compression:  page.Compression,
			PublishedAt:  now,
		}
		if err := tx.CreatePageVersion(ctx, version); err != nil {
			return err
		}

		latest = &model.LatestPublishedPage{
			PageID:       page.ID,
			StoreID:      page.StoreID,
			Slug:         page.Slug,
			PageType:     page.PageType,
			VersionIndex: next,
			Sections:     page.Sections,
			Compression:  page.Compression,
		}
		if err := tx.SaveLatestPublishedPage(ctx, latest); err != nil {
			return err
		}

		page.VersionCount = next
		page.Status = model.StatusPublished

		return tx.UpdatePage(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("published page %s as version %d", id, version.VersionIndex)
	p.afterPublish(ctx, latest)

	return p.intoVersion(version)
}

// Rollback publishes a past version's content as a new version. History moves
// forward: nothing is renumbered or deleted.
func (p *PageService) Rollback(ctx context.Context, id uuid.UUID, versionIndex int64) (*Version, error) {
	err := p.store.Transaction(ctx, func(tx store.Store) error {
		page, err := tx.GetPage(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		version, err := tx.GetPageVersion(ctx, id, versionIndex)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVersionNotFound
			}
			return err
		}

		page.Sections = version.Sections
		page.Compression = version.Compression

		return tx.UpdatePage(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	return p.Publish(ctx, id)
}

// ListVersions lists the published versions of a page, newest first, without
// section payloads.
func (p *PageService) ListVersions(ctx context.Context, id uuid.UUID) ([]*Version, error) {
	versions, err := p.store.ListPageVersions(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]*Version, 0, len(versions))
	for _, v := range versions {
		out = append(out, &Version{
			PageID:       v.PageID,
			VersionIndex: v.VersionIndex,
			PublishedAt:  v.PublishedAt,
		})
	}

	return out, nil
}

// DeletePage soft-deletes a page and unpublishes it.
func (p *PageService) DeletePage(ctx context.Context, id uuid.UUID) error {
	err := p.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.DeletePage(ctx, id); err != nil {
			return err
		}

		return tx.DeleteLatestPublishedPage(ctx, id)
	})
	if err != nil {
		return err
	}

	if p.cache != nil {
		if err := p.cache.DeleteLatestPublishedPage(ctx, id); err != nil {
			logrus.Errorf("error evicting page %s from cache: %v", id, err)
		}
	}

	return nil
}

// ErasePage hard-deletes a page row.
func (p *PageService) ErasePage(ctx context.Context, id uuid.UUID) error {
	return p.store.ErasePage(ctx, id)
}

func (p *PageService) afterPublish(ctx context.Context, latest *model.LatestPublishedPage) {
	if p.cache != nil {
		if err := p.cache.SetLatestPublishedPage(ctx, latest); err != nil {
			logrus.Errorf("error warming cache for page %s: %v", latest.PageID, err)
		}
	}

	if p.events != nil {
		err := p.events.Publish(ctx, &queue.PublishEvent{
			PageID:       latest.PageID,
			StoreID:      latest.StoreID,
			VersionIndex: latest.VersionIndex,
			ChangedAt:    time.Now(),
		})
		if err != nil {
			logrus.Errorf("error emitting publish event for page %s: %v", latest.PageID, err)
		}
	}
}

func (p *PageService) encodeSections(sections document.Sections) (string, error) {
	data, err := sections.Marshal()
	if err != nil {
		return "", err
	}

	encoded, err := compress.ForKind(p.codec).Encode(data)
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

func decodeSections(data, codec string) (document.Sections, error) {
	raw, err := compress.ForKind(codec).Decode([]byte(data))
	if err != nil {
		return nil, ErrSectionsCorrupted
	}

	sections, err := document.UnmarshalSections(raw)
	if err != nil {
		return nil, ErrSectionsCorrupted
	}

	return sections, nil
}

func (p *PageService) intoPage(page *model.Page) (*Page, error) {
	sections, err := decodeSections(page.Sections, page.Compression)
	if err != nil {
		return nil, err
	}

	return &Page{
		ID:           page.ID,
		StoreID:      page.StoreID,
		Slug:         page.Slug,
		PageType:     page.PageType,
		Status:       page.Status,
		Sections:     sections,
		VersionCount: page.VersionCount,
		CreatedAt:    page.CreatedAt,
		UpdatedAt:    page.UpdatedAt,
	}, nil
}

func (p *PageService) intoVersion(version *model.PageVersion) (*Version, error) {
	sections, err := decodeSections(version.Sections, version.Compression)
	if err != nil {
		return nil, err
	}

	return &Version{
		PageID:       version.PageID,
		VersionIndex: version.VersionIndex,
		Sections:     sections,
		PublishedAt:  version.PublishedAt,
	}, nil
}
