package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kinora/internal/domain/media"
	"kinora/internal/domain/subscription"
	"kinora/internal/infrastructure/persistence/models"
	"kinora/internal/shared/errors"
	"kinora/internal/shared/logger"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) subscription.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *subscription.Plan) error {
	model, err := r.toModel(plan)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("subscription plan name already exists", plan.Name())
		}
		r.logger.Errorw("failed to create subscription plan", "error", err, "name", plan.Name())
		return fmt.Errorf("failed to create subscription plan: %w", err)
	}

	if err := plan.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("subscription plan created", "plan_id", model.ID, "name", plan.Name())
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	var model models.SubscriptionPlanModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription plan by ID", "error", err, "plan_id", id)
		return nil, fmt.Errorf("failed to get subscription plan: %w", err)
	}

	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) GetByName(ctx context.Context, name string) (*subscription.Plan, error) {
	var model models.SubscriptionPlanModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription plan by name: %w", err)
	}

	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *subscription.Plan) error {
	model, err := r.toModel(plan)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.SubscriptionPlanModel{}).
		Where("id = ?", plan.ID()).
		Updates(map[string]interface{}{
			"name":              model.Name,
			"price":             model.Price,
			"duration_days":     model.DurationDays,
			"allowed_qualities": model.AllowedQualities,
			"status":            model.Status,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription plan", "error", result.Error, "plan_id", plan.ID())
		return fmt.Errorf("failed to update subscription plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("subscription plan not found")
	}

	return nil
}

func (r *PlanRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.SubscriptionPlanModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("subscription plan not found")
	}
	return nil
}

func (r *PlanRepositoryImpl) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	var rows []models.SubscriptionPlanModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(subscription.PlanStatusActive)).
		Order("price ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscription plans: %w", err)
	}

	plans := make([]*subscription.Plan, 0, len(rows))
	for i := range rows {
		plan, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, nil
}

func (r *PlanRepositoryImpl) toModel(plan *subscription.Plan) (*models.SubscriptionPlanModel, error) {
	qualities := plan.AllowedQualities()
	names := make([]string, len(qualities))
	for i, q := range qualities {
		names[i] = q.String()
	}
	allowedJSON, err := json.Marshal(names)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal allowed qualities: %w", err)
	}

	return &models.SubscriptionPlanModel{
		ID:               plan.ID(),
		Name:             plan.Name(),
		Slug:             plan.Slug(),
		Price:            plan.Price(),
		DurationDays:     plan.DurationDays(),
		AllowedQualities: datatypes.JSON(allowedJSON),
		Status:           string(plan.Status()),
		CreatedAt:        plan.CreatedAt(),
		UpdatedAt:        plan.UpdatedAt(),
	}, nil
}

func (r *PlanRepositoryImpl) toEntity(model *models.SubscriptionPlanModel) (*subscription.Plan, error) {
	var names []string
	if len(model.AllowedQualities) > 0 {
		if err := json.Unmarshal(model.AllowedQualities, &names); err != nil {
			return nil, fmt.Errorf("failed to unmarshal allowed qualities for plan %d: %w", model.ID, err)
		}
	}

	qualities := make([]media.Quality, 0, len(names))
	for _, name := range names {
		q, err := media.ParseQuality(name)
		if err != nil {
			r.logger.Warnw("skipping unknown quality on plan", "plan_id", model.ID, "quality", name)
			continue
		}
		qualities = append(qualities, q)
	}

	plan, err := subscription.ReconstructPlan(
		model.ID,
		model.Name,
		model.Slug,
		model.Price,
		model.DurationDays,
		qualities,
		model.Status,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan %d: %w", model.ID, err)
	}
	return plan, nil
}
