package models

import "time"

// ProfileModel represents the database persistence model for viewer
// profiles. Profiles carry only credentials and a role; the login handler
// reads this table directly.
type ProfileModel struct {
	ID           uint   `gorm:"primarykey"`
	Username     string `gorm:"uniqueIndex;not null;size:60"`
	Email        string `gorm:"uniqueIndex;not null;size:120"`
	PasswordHash string `gorm:"not null;size:100"`
	Role         string `gorm:"not null;size:10;default:USER"`
	FullName     string `gorm:"size:120"`
	Status       string `gorm:"not null;size:20;default:ACTIVE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}
