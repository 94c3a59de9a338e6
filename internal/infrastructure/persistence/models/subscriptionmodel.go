package models

import "time"

// SubscriptionModel represents the database persistence model for profile
// subscriptions.
type SubscriptionModel struct {
	ID        uint   `gorm:"primarykey"`
	ProfileID uint   `gorm:"not null;index"`
	PlanID    uint   `gorm:"not null;index"`
	Status    string `gorm:"not null;size:20;default:ACTIVE;index"`
	StartDate time.Time
	EndDate   time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
