package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emrgen/storefront/internal/model"
)

type Store interface {
	PageStore
	PageBackupStore
	PublishedPageStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type PageStore interface {
	// CreatePage creates a new page.
	CreatePage(ctx context.Context, page *model.Page) error
	// GetPage retrieves a page by ID.
	GetPage(ctx context.Context, id uuid.UUID) (*model.Page, error)
	// GetPageBySlug retrieves a page by store and slug.
	GetPageBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*model.Page, error)
	// ListPages retrieves the pages of a store.
	ListPages(ctx context.Context, storeID uuid.UUID) ([]*model.Page, int64, error)
	// UpdatePage updates a page.
	UpdatePage(ctx context.Context, page *model.Page) error
	// DeletePage soft-deletes a page by ID.
	DeletePage(ctx context.Context, id uuid.UUID) error
	// ErasePage hard-deletes a page by ID.
	ErasePage(ctx context.Context, id uuid.UUID) error
}

type PageBackupStore interface {
	// CreatePageBackup appends an autosave backup row.
	CreatePageBackup(ctx context.Context, backup *model.PageBackup) error
	// ListPageBackups lists the backups of a page, newest first.
	ListPageBackups(ctx context.Context, pageID uuid.UUID) ([]*model.PageBackup, error)
	// ListPageBackupsByCreatedTime lists backups created inside a time window.
	ListPageBackupsByCreatedTime(ctx context.Context, from, to time.Time) ([]*model.PageBackup, error)
	// DeletePageBackups removes the named backup sequence numbers per page.
	DeletePageBackups(ctx context.Context, remove map[string][]int64) error
}

type PublishedPageStore interface {
	// CreatePageVersion appends an immutable published version.
	CreatePageVersion(ctx context.Context, version *model.PageVersion) error
	// GetPageVersion retrieves a published version by page ID and index.
	GetPageVersion(ctx context.Context, pageID uuid.UUID, versionIndex int64) (*model.PageVersion, error)
	// ListPageVersions lists the published versions of a page, newest first.
	ListPageVersions(ctx context.Context, pageID uuid.UUID) ([]*model.PageVersion, error)
	// SaveLatestPublishedPage upserts the live pointer row.
	SaveLatestPublishedPage(ctx context.Context, page *model.LatestPublishedPage) error
	// GetLatestPublishedPage retrieves the live pointer row of a page.
	GetLatestPublishedPage(ctx context.Context, pageID uuid.UUID) (*model.LatestPublishedPage, error)
	// GetLatestPublishedPageBySlug retrieves the live pointer row by store and slug.
	GetLatestPublishedPageBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*model.LatestPublishedPage, error)
	// ListLatestPublishedPages lists the live pages of a store.
	ListLatestPublishedPages(ctx context.Context, storeID uuid.UUID) ([]*model.LatestPublishedPage, error)
	// DeleteLatestPublishedPage unpublishes a page.
	DeleteLatestPublishedPage(ctx context.Context, pageID uuid.UUID) error
}
