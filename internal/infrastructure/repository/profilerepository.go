package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kinora/internal/infrastructure/persistence/models"
	"kinora/internal/shared/logger"
)

// ProfileRepository reads and writes viewer profiles. Profiles carry no
// domain behavior beyond credentials and role, so the persistence model is
// used directly.
type ProfileRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewProfileRepository(db *gorm.DB, logger logger.Interface) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.ProfileModel) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		r.logger.Errorw("failed to create profile", "error", err, "username", profile.Username)
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*models.ProfileModel, error) {
	var profile models.ProfileModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uint) (*models.ProfileModel, error) {
	var profile models.ProfileModel
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProfileModel{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return count > 0, nil
}
