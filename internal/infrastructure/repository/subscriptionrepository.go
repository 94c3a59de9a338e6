package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"kinora/internal/domain/subscription"
	"kinora/internal/infrastructure/persistence/models"
	"kinora/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model := r.toModel(sub)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription", "error", err, "profile_id", sub.ProfileID())
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := sub.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("subscription created",
		"subscription_id", model.ID,
		"profile_id", sub.ProfileID(),
		"plan_id", sub.PlanID(),
	)
	return nil
}

// GetActiveByProfileID picks the entitlement source row: ACTIVE status, end
// date in the future, latest end date wins.
func (r *SubscriptionRepositoryImpl) GetActiveByProfileID(ctx context.Context, profileID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND status = ? AND end_date > ?",
			profileID, string(subscription.StatusActive), time.Now()).
		Order("end_date DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get active subscription", "error", err, "profile_id", profileID)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return r.toEntity(&model)
}

func (r *SubscriptionRepositoryImpl) ListByProfileID(ctx context.Context, profileID uint) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("end_date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		sub, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (r *SubscriptionRepositoryImpl) FindExpired(ctx context.Context) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", string(subscription.StatusActive), time.Now()).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired subscriptions: %w", err)
	}

	subs := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		sub, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model := r.toModel(sub)

	result := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("id = ?", sub.ID()).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"end_date":   model.EndDate,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "error", result.Error, "subscription_id", sub.ID())
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) toModel(sub *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:        sub.ID(),
		ProfileID: sub.ProfileID(),
		PlanID:    sub.PlanID(),
		Status:    string(sub.Status()),
		StartDate: sub.StartDate(),
		EndDate:   sub.EndDate(),
		CreatedAt: sub.CreatedAt(),
		UpdatedAt: sub.UpdatedAt(),
	}
}

func (r *SubscriptionRepositoryImpl) toEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	sub, err := subscription.ReconstructSubscription(
		model.ID,
		model.ProfileID,
		model.PlanID,
		model.Status,
		model.StartDate,
		model.EndDate,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription %d: %w", model.ID, err)
	}
	return sub, nil
}
