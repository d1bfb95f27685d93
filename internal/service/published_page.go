package service

import (
	"context"
	"errors"

	"github.com/emrgen/storefront/internal/cache"
	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/model"
	"github.com/emrgen/storefront/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PublishedPage is the read-side view served to storefront visitors.
type PublishedPage struct {
	PageID       string            `json:"pageId"`
	StoreID      string            `json:"storeId"`
	Slug         string            `json:"slug"`
	PageType     string            `json:"pageType"`
	VersionIndex int64             `json:"versionIndex"`
	Sections     document.Sections `json:"sections"`
}

// NewPublishedPageService creates a new PublishedPageService. The cache may be
// nil, in which case every read goes to the store.
func NewPublishedPageService(store store.Store, pages cache.PageCache) *PublishedPageService {
	return &PublishedPageService{
		store: store,
		cache: pages,
	}
}

// PublishedPageService serves published content. It never sees drafts.
type PublishedPageService struct {
	store store.Store
	cache cache.PageCache
}

// GetPublishedPage retrieves the live version of a page, cache first.
func (p *PublishedPageService) GetPublishedPage(ctx context.Context, id uuid.UUID) (*PublishedPage, error) {
	if p.cache != nil {
		cached, err := p.cache.GetLatestPublishedPage(ctx, id)
		if err != nil {
			logrus.Errorf("error reading page %s from cache: %v", id, err)
		}
		if cached != nil {
			return intoPublishedPage(cached)
		}
	}

	latest, err := p.store.GetLatestPublishedPage(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotPublished
		}
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.SetLatestPublishedPage(ctx, latest); err != nil {
			logrus.Errorf("error caching page %s: %v", id, err)
		}
	}

	return intoPublishedPage(latest)
}

// GetPublishedPageBySlug retrieves the live version of a page by store and slug.
func (p *PublishedPageService) GetPublishedPageBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*PublishedPage, error) {
	latest, err := p.store.GetLatestPublishedPageBySlug(ctx, storeID, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotPublished
		}
		return nil, err
	}

	return intoPublishedPage(latest)
}

// GetPublishedVersion retrieves one historical published version of a page.
func (p *PublishedPageService) GetPublishedVersion(ctx context.Context, id uuid.UUID, versionIndex int64) (*Version, error) {
	version, err := p.store.GetPageVersion(ctx, id, versionIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

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

// ListPublishedPages lists the live pages of a store, without section payloads.
func (p *PublishedPageService) ListPublishedPages(ctx context.Context, storeID uuid.UUID) ([]*PublishedPage, error) {
	pages, err := p.store.ListLatestPublishedPages(ctx, storeID)
	if err != nil {
		return nil, err
	}

	out := make([]*PublishedPage, 0, len(pages))
	for _, page := range pages {
		out = append(out, &PublishedPage{
			PageID:       page.PageID,
			StoreID:      page.StoreID,
			Slug:         page.Slug,
			PageType:     page.PageType,
			VersionIndex: page.VersionIndex,
		})
	}

	return out, nil
}

// Unpublish takes a page offline. The version history stays intact, so a
// later publish continues the version numbering.
func (p *PublishedPageService) Unpublish(ctx context.Context, id uuid.UUID) error {
	err := p.store.Transaction(ctx, func(tx store.Store) error {
		page, err := tx.GetPage(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		page.Status = model.StatusDraft
		if err := tx.UpdatePage(ctx, page); err != nil {
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

func intoPublishedPage(latest *model.LatestPublishedPage) (*PublishedPage, error) {
	sections, err := decodeSections(latest.Sections, latest.Compression)
	if err != nil {
		return nil, err
	}

	return &PublishedPage{
		PageID:       latest.PageID,
		StoreID:      latest.StoreID,
		Slug:         latest.Slug,
		PageType:     latest.PageType,
		VersionIndex: latest.VersionIndex,
		Sections:     sections,
	}, nil
}
