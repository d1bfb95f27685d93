package store

import (
	"context"
	"time"

	"github.com/emrgen/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreatePage(ctx context.Context, page *model.Page) error {
	return g.db.WithContext(ctx).Create(page).Error
}

func (g *GormStore) GetPage(ctx context.Context, id uuid.UUID) (*model.Page, error) {
	var page model.Page
	err := g.db.WithContext(ctx).Where("id = ?", id.String()).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (g *GormStore) GetPageBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*model.Page, error) {
	var page model.Page
	err := g.db.WithContext(ctx).Where("store_id = ? AND slug = ?", storeID.String(), slug).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (g *GormStore) ListPages(ctx context.Context, storeID uuid.UUID) ([]*model.Page, int64, error) {
	var pages []*model.Page
	err := g.db.WithContext(ctx).Where("store_id = ?", storeID.String()).Order("created_at asc").Find(&pages).Error
	if err != nil {
		return nil, 0, err
	}

	return pages, int64(len(pages)), nil
}

func (g *GormStore) UpdatePage(ctx context.Context, page *model.Page) error {
	return g.db.WithContext(ctx).Save(page).Error
}

func (g *GormStore) DeletePage(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&model.Page{}).Error
}

func (g *GormStore) ErasePage(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Unscoped().Where("id = ?", id.String()).Delete(&model.Page{}).Error
}

func (g *GormStore) CreatePageBackup(ctx context.Context, backup *model.PageBackup) error {
	return g.db.WithContext(ctx).Create(backup).Error
}

func (g *GormStore) ListPageBackups(ctx context.Context, pageID uuid.UUID) ([]*model.PageBackup, error) {
	var backups []*model.PageBackup
	err := g.db.WithContext(ctx).Where("page_id = ?", pageID.String()).Order("seq desc").Find(&backups).Error
	return backups, err
}

func (g *GormStore) ListPageBackupsByCreatedTime(ctx context.Context, from, to time.Time) ([]*model.PageBackup, error) {
	var backups []*model.PageBackup
	err := g.db.WithContext(ctx).Where("created_at BETWEEN ? AND ?", from, to).Order("created_at asc").Find(&backups).Error
	return backups, err
}

func (g *GormStore) DeletePageBackups(ctx context.Context, remove map[string][]int64) error {
	for pageID, seqs := range remove {
		if len(seqs) == 0 {
			continue
		}
		err := g.db.WithContext(ctx).Where("page_id = ? AND seq IN (?)", pageID, seqs).Delete(&model.PageBackup{}).Error
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *GormStore) CreatePageVersion(ctx context.Context, version *model.PageVersion) error {
	return g.db.WithContext(ctx).Create(version).Error
}

func (g *GormStore) GetPageVersion(ctx context.Context, pageID uuid.UUID, versionIndex int64) (*model.PageVersion, error) {
	var version model.PageVersion
	err := g.db.WithContext(ctx).Where("page_id = ? AND version_index = ?", pageID.String(), versionIndex).First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (g *GormStore) ListPageVersions(ctx context.Context, pageID uuid.UUID) ([]*model.PageVersion, error) {
	var versions []*model.PageVersion
	err := g.db.WithContext(ctx).Where("page_id = ?", pageID.String()).Order("version_index desc").Find(&versions).Error
	return versions, err
}

// SaveLatestPublishedPage upserts the live pointer row.
// NOTE: should run in the same transaction as CreatePageVersion.
func (g *GormStore) SaveLatestPublishedPage(ctx context.Context, page *model.LatestPublishedPage) error {
	logrus.Infof("flipping live pointer for page %s to version %d", page.PageID, page.VersionIndex)
	return g.db.WithContext(ctx).Save(page).Error
}

func (g *GormStore) GetLatestPublishedPage(ctx context.Context, pageID uuid.UUID) (*model.LatestPublishedPage, error) {
	var page model.LatestPublishedPage
	err := g.db.WithContext(ctx).Where("page_id = ?", pageID.String()).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (g *GormStore) GetLatestPublishedPageBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*model.LatestPublishedPage, error) {
	var page model.LatestPublishedPage
	err := g.db.WithContext(ctx).Where("store_id = ? AND slug = ?", storeID.String(), slug).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (g *GormStore) ListLatestPublishedPages(ctx context.Context, storeID uuid.UUID) ([]*model.LatestPublishedPage, error) {
	var pages []*model.LatestPublishedPage
	err := g.db.WithContext(ctx).Where("store_id = ?", storeID.String()).Find(&pages).Error
	return pages, err
}

func (g *GormStore) DeleteLatestPublishedPage(ctx context.Context, pageID uuid.UUID) error {
	return g.db.WithContext(ctx).Where("page_id = ?", pageID.String()).Delete(&model.LatestPublishedPage{}).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
