package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Page holds the draft layout document of one storefront route. The sections
// column is the JSON-encoded section sequence, optionally compressed; the
// compression column names the codec used.
type Page struct {
	gorm.Model
	ID           string `gorm:"primaryKey;uuid;not null;"`
	StoreID      string `gorm:"uuid;not null;index:idx_pages_store_id"`
	Slug         string `gorm:"not null;index:idx_pages_store_slug"`
	PageType     string `gorm:"not null"`
	Status       string `gorm:"not null;default:draft"`
	Sections     string `gorm:"not null"`
	Compression  string
	VersionCount int64 // highest version index published so far
}

func (Page) TableName() string {
	return "pages"
}

func (p *Page) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}
