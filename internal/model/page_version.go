package model

import (
	"time"
)

// PageVersion is one immutable published snapshot of a page's sections.
// Versions are append-only: rollback publishes a past version's content as a
// new row, it never rewrites existing ones.
type PageVersion struct {
	PageID       string `gorm:"primaryKey;uuid;not null"`
	VersionIndex int64  `gorm:"primaryKey;autoIncrement:false"`
	StoreID      string `gorm:"uuid;not null"`
	Sections     string `gorm:"not null"`
	Compression  string
	PublishedAt  time.Time
	CreatedAt    time.Time
}

func (PageVersion) TableName() string {
	return "page_versions"
}
