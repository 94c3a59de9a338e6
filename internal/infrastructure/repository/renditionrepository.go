package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kinora/internal/domain/media"
	"kinora/internal/infrastructure/persistence/models"
	"kinora/internal/shared/logger"
)

type RenditionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewRenditionRepository(db *gorm.DB, logger logger.Interface) media.RenditionRepository {
	return &RenditionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the rendition row, replacing file_url on (movie, quality,
// language) conflict so re-processing never duplicates rows.
func (r *RenditionRepositoryImpl) Upsert(ctx context.Context, rendition *media.Rendition) error {
	model := r.toModel(rendition)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}, {Name: "quality"}, {Name: "language"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_url", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert rendition",
			"error", err,
			"movie_id", rendition.MovieID(),
			"quality", rendition.Quality().String(),
		)
		return fmt.Errorf("failed to upsert rendition: %w", err)
	}

	if rendition.ID() == 0 && model.ID != 0 {
		if err := rendition.SetID(model.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *RenditionRepositoryImpl) GetByMovieAndQuality(ctx context.Context, movieID uint, quality media.Quality, language string) (*media.Rendition, error) {
	var model models.RenditionModel
	query := r.db.WithContext(ctx).Where("movie_id = ? AND quality = ?", movieID, string(quality))
	if language != "" {
		query = query.Where("language = ?", language)
	}
	if err := query.First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rendition: %w", err)
	}

	return r.toEntity(&model)
}

func (r *RenditionRepositoryImpl) ListByMovieID(ctx context.Context, movieID uint) ([]*media.Rendition, error) {
	var rows []models.RenditionModel
	if err := r.db.WithContext(ctx).Where("movie_id = ?", movieID).Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list renditions", "error", err, "movie_id", movieID)
		return nil, fmt.Errorf("failed to list renditions: %w", err)
	}

	renditions := make([]*media.Rendition, 0, len(rows))
	for i := range rows {
		rendition, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		renditions = append(renditions, rendition)
	}

	return renditions, nil
}

func (r *RenditionRepositoryImpl) DeleteByMovieID(ctx context.Context, movieID uint) error {
	if err := r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Delete(&models.RenditionModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete renditions", "error", err, "movie_id", movieID)
		return fmt.Errorf("failed to delete renditions: %w", err)
	}
	return nil
}

func (r *RenditionRepositoryImpl) toModel(rendition *media.Rendition) *models.RenditionModel {
	return &models.RenditionModel{
		ID:        rendition.ID(),
		MovieID:   rendition.MovieID(),
		Quality:   rendition.Quality().String(),
		Language:  rendition.Language(),
		FileURL:   rendition.FileURL(),
		CreatedAt: rendition.CreatedAt(),
		UpdatedAt: rendition.UpdatedAt(),
	}
}

func (r *RenditionRepositoryImpl) toEntity(model *models.RenditionModel) (*media.Rendition, error) {
	rendition, err := media.ReconstructRendition(
		model.ID,
		model.MovieID,
		media.Quality(model.Quality),
		model.Language,
		model.FileURL,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct rendition %d: %w", model.ID, err)
	}
	return rendition, nil
}
