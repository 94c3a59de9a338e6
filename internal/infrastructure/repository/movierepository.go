package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kinora/internal/domain/catalog"
	"kinora/internal/infrastructure/persistence/models"
	"kinora/internal/shared/errors"
	"kinora/internal/shared/logger"
)

type MovieRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewMovieRepository(db *gorm.DB, logger logger.Interface) catalog.MovieRepository {
	return &MovieRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *MovieRepositoryImpl) Create(ctx context.Context, movie *catalog.Movie) error {
	model := r.toModel(movie)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("movie slug already exists", movie.Slug())
		}
		r.logger.Errorw("failed to create movie", "error", err, "slug", movie.Slug())
		return fmt.Errorf("failed to create movie: %w", err)
	}

	if err := movie.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("movie created", "movie_id", model.ID, "slug", movie.Slug())
	return nil
}

func (r *MovieRepositoryImpl) GetByID(ctx context.Context, id uint) (*catalog.Movie, error) {
	var model models.MovieModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get movie by ID", "error", err, "movie_id", id)
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	return r.toEntity(&model)
}

func (r *MovieRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*catalog.Movie, error) {
	var model models.MovieModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get movie by slug", "error", err, "slug", slug)
		return nil, fmt.Errorf("failed to get movie by slug: %w", err)
	}

	return r.toEntity(&model)
}

func (r *MovieRepositoryImpl) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MovieModel{}).
		Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}
	return count > 0, nil
}

func (r *MovieRepositoryImpl) List(ctx context.Context, filter catalog.MovieFilter) ([]*catalog.Movie, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MovieModel{})

	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}
	if filter.AccessTier != nil {
		query = query.Where("access_tier = ?", string(*filter.AccessTier))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var rows []models.MovieModel
	if err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list movies", "error", err)
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*catalog.Movie, 0, len(rows))
	for i := range rows {
		movie, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		movies = append(movies, movie)
	}

	return movies, total, nil
}

func (r *MovieRepositoryImpl) ListAll(ctx context.Context) ([]*catalog.Movie, error) {
	var rows []models.MovieModel
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*catalog.Movie, 0, len(rows))
	for i := range rows {
		movie, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

func (r *MovieRepositoryImpl) UpdateDuration(ctx context.Context, id uint, minutes int) error {
	result := r.db.WithContext(ctx).Model(&models.MovieModel{}).
		Where("id = ?", id).
		Update("duration_minutes", minutes)
	if result.Error != nil {
		r.logger.Errorw("failed to update movie duration", "error", result.Error, "movie_id", id)
		return fmt.Errorf("failed to update movie duration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("movie not found")
	}
	return nil
}

func (r *MovieRepositoryImpl) IncrementViews(ctx context.Context, id uint, delta uint64) error {
	if delta == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.MovieModel{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to increment view count: %w", result.Error)
	}
	return nil
}

func (r *MovieRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.MovieModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete movie", "error", result.Error, "movie_id", id)
		return fmt.Errorf("failed to delete movie: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("movie not found")
	}

	r.logger.Infow("movie deleted", "movie_id", id)
	return nil
}

func (r *MovieRepositoryImpl) toModel(movie *catalog.Movie) *models.MovieModel {
	return &models.MovieModel{
		ID:              movie.ID(),
		Title:           movie.Title(),
		Slug:            movie.Slug(),
		Description:     movie.Description(),
		AccessTier:      string(movie.AccessTier()),
		PlanID:          movie.PlanID(),
		DurationMinutes: movie.DurationMinutes(),
		PosterURL:       movie.PosterURL(),
		ViewCount:       movie.ViewCount(),
		ReleaseDate:     movie.ReleaseDate(),
		CreatedBy:       movie.CreatedBy(),
		CreatedAt:       movie.CreatedAt(),
		UpdatedAt:       movie.UpdatedAt(),
	}
}

func (r *MovieRepositoryImpl) toEntity(model *models.MovieModel) (*catalog.Movie, error) {
	movie, err := catalog.ReconstructMovie(
		model.ID,
		model.Title,
		model.Slug,
		model.Description,
		catalog.AccessTier(model.AccessTier),
		model.PlanID,
		model.DurationMinutes,
		model.PosterURL,
		model.ViewCount,
		model.ReleaseDate,
		model.CreatedBy,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct movie %d: %w", model.ID, err)
	}
	return movie, nil
}
