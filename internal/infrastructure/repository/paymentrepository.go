package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kinora/internal/domain/subscription"
	"kinora/internal/infrastructure/persistence/models"
	"kinora/internal/shared/logger"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) subscription.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *subscription.Payment) error {
	model := &models.PaymentModel{
		ProfileID:      payment.ProfileID(),
		SubscriptionID: payment.SubscriptionID(),
		Amount:         payment.Amount(),
		Status:         string(payment.Status()),
		Method:         payment.Method(),
		CreatedAt:      payment.CreatedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create payment", "error", err, "profile_id", payment.ProfileID())
		return fmt.Errorf("failed to create payment: %w", err)
	}

	if err := payment.SetID(model.ID); err != nil {
		return err
	}

	return nil
}
