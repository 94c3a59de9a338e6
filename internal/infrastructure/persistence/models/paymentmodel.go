package models

import "time"

// PaymentModel represents the database persistence model for payments.
type PaymentModel struct {
	ID             uint   `gorm:"primarykey"`
	ProfileID      uint   `gorm:"not null;index"`
	SubscriptionID uint   `gorm:"not null;index"`
	Amount         uint64 `gorm:"not null"`
	Status         string `gorm:"not null;size:20"`
	Method         string `gorm:"not null;size:30"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}
