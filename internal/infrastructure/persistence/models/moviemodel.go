package models

import (
	"time"
)

// MovieModel represents the database persistence model for movies.
// This is the anti-corruption layer between domain and database.
type MovieModel struct {
	ID              uint   `gorm:"primarykey"`
	Title           string `gorm:"not null;size:200"`
	Slug            string `gorm:"uniqueIndex;not null;size:220"`
	Description     string `gorm:"size:2000"`
	AccessTier      string `gorm:"not null;size:10;default:FREE"`
	PlanID          *uint  `gorm:"index"`
	DurationMinutes int    `gorm:"default:0"`
	PosterURL       string `gorm:"size:500"`
	ViewCount       uint64 `gorm:"default:0"`
	ReleaseDate     time.Time
	CreatedBy       uint `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "movies"
}
