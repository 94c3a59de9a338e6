package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubscriptionPlanModel represents the database persistence model for
// subscription plans. AllowedQualities stores the tier names as a JSON
// array; an empty array means the plan is unrestricted.
type SubscriptionPlanModel struct {
	ID               uint   `gorm:"primarykey"`
	Name             string `gorm:"uniqueIndex;not null;size:100"`
	Slug             string `gorm:"uniqueIndex;not null;size:100"`
	Price            uint64 `gorm:"not null"`
	DurationDays     int    `gorm:"not null"`
	AllowedQualities datatypes.JSON
	Status           string `gorm:"not null;size:20;default:active"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionPlanModel) TableName() string {
	return "subscription_plans"
}
