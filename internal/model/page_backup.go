package model

import "time"

// PageBackup is an autosave safety net: every draft save appends one. The
// backup pruner thins old rows by time window so rapid autosaves do not pile
// up forever, so backups are hard-deleted.
type PageBackup struct {
	PageID      string `gorm:"primaryKey;uuid;not null"`
	Seq         int64  `gorm:"primaryKey;autoIncrement:false"`
	Sections    string `gorm:"not null"`
	Compression string
	CreatedAt   time.Time
}

func (PageBackup) TableName() string {
	return "page_backups"
}
