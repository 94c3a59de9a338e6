package models

import "time"

// RenditionModel represents the database persistence model for encoded
// rendition files. The composite unique index backs the upsert-by-tier
// semantics of the pipeline.
type RenditionModel struct {
	ID        uint   `gorm:"primarykey"`
	MovieID   uint   `gorm:"not null;uniqueIndex:idx_movie_quality_lang"`
	Quality   string `gorm:"not null;size:10;uniqueIndex:idx_movie_quality_lang"`
	Language  string `gorm:"not null;size:40;default:uzbek;uniqueIndex:idx_movie_quality_lang"`
	FileURL   string `gorm:"not null;size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (RenditionModel) TableName() string {
	return "movie_renditions"
}
