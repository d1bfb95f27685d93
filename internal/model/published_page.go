package model

import (
	"encoding/json"
	"time"
)

// LatestPublishedPage is the live pointer row: the content the storefront
// serves for a page right now. Publish upserts it inside the same transaction
// that appends the PageVersion, so the pointer flip is atomic. PageID is the
// sole primary key and rows are hard-deleted on unpublish, which keeps
// gorm's Save an insert-or-update on this table.
type LatestPublishedPage struct {
	PageID       string `gorm:"primaryKey;uuid;not null"`
	StoreID      string `gorm:"uuid;not null;index:idx_latest_published_store_id"`
	Slug         string `gorm:"not null"`
	PageType     string `gorm:"not null"`
	VersionIndex int64
	Sections     string `gorm:"not null"`
	Compression  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (LatestPublishedPage) TableName() string {
	return "latest_published_pages"
}

func (l *LatestPublishedPage) IntoVersion() *PageVersion {
	return &PageVersion{
		PageID:       l.PageID,
		StoreID:      l.StoreID,
		VersionIndex: l.VersionIndex,
		Sections:     l.Sections,
		Compression:  l.Compression,
	}
}

func (l *LatestPublishedPage) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}
