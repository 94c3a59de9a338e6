// Package catalog implements the admin and viewer use cases around movies:
// upload, re-processing, listing, detail and playback file resolution.
package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"time"

	appmedia "kinora/internal/application/media"
	"kinora/internal/application/playback"
	"kinora/internal/domain/catalog"
	"kinora/internal/domain/media"
	"kinora/internal/infrastructure/cache"
	"kinora/internal/infrastructure/jobs"
	"kinora/internal/infrastructure/storage"
	"kinora/internal/shared/config"
	"kinora/internal/shared/errors"
	"kinora/internal/shared/logger"
	"kinora/internal/shared/utils"
)

// CreateMovieInput carries the admin upload form.
type CreateMovieInput struct {
	Title       string
	Description string
	AccessTier  catalog.AccessTier
	PlanID      *uint
	ReleaseDate time.Time
	CreatedBy   uint
	Poster      *multipart.FileHeader
	Video       *multipart.FileHeader
}

// PlaybackFile is the resolved answer to a stream request.
type PlaybackFile struct {
	Quality  media.Quality
	Language string
	FileURL  string
}

// MovieDetail bundles a movie with the renditions visible to the viewer.
// MaxQuality is the best of those, nil while nothing has been produced or
// nothing is permitted.
type MovieDetail struct {
	Movie      *catalog.Movie
	Renditions []*media.Rendition
	MaxQuality *media.Quality
}

type MovieService struct {
	movieRepo     catalog.MovieRepository
	renditionRepo media.RenditionRepository
	resolver      *playback.EntitlementResolver
	pipeline      *appmedia.Pipeline
	dispatcher    *jobs.Dispatcher
	store         *storage.LocalStore
	viewCache     cache.ViewCache
	cfg           *config.MediaConfig
	logger        logger.Interface
}

func NewMovieService(
	movieRepo catalog.MovieRepository,
	renditionRepo media.RenditionRepository,
	resolver *playback.EntitlementResolver,
	pipeline *appmedia.Pipeline,
	dispatcher *jobs.Dispatcher,
	store *storage.LocalStore,
	viewCache cache.ViewCache,
	cfg *config.MediaConfig,
	logger logger.Interface,
) *MovieService {
	return &MovieService{
		movieRepo:     movieRepo,
		renditionRepo: renditionRepo,
		resolver:      resolver,
		pipeline:      pipeline,
		dispatcher:    dispatcher,
		store:         store,
		viewCache:     viewCache,
		cfg:           cfg,
		logger:        logger.With("component", "catalog.service"),
	}
}

// Create registers the movie, stores its poster, claims the uploaded video
// and schedules transcoding. The movie is visible immediately; renditions
// attach as the pipeline produces them.
func (s *MovieService) Create(ctx context.Context, input CreateMovieInput) (*catalog.Movie, error) {
	slug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, err
	}

	movie, err := catalog.NewMovie(input.Title, slug, input.Description,
		input.AccessTier, input.PlanID, input.ReleaseDate, input.CreatedBy)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if input.Poster != nil {
		posterURL, err := s.store.SavePoster(slug, input.Poster)
		if err != nil {
			return nil, fmt.Errorf("save poster: %w", err)
		}
		movie.SetPosterURL(posterURL)
	}

	sourcePath, err := s.store.ClaimSource(slug, input.Video)
	if err != nil {
		return nil, fmt.Errorf("claim upload: %w", err)
	}

	if err := s.movieRepo.Create(ctx, movie); err != nil {
		if cleanupErr := s.store.RemoveTitle(slug); cleanupErr != nil {
			s.logger.Warnw("failed to clean up after create failure", "slug", slug, "error", cleanupErr)
		}
		return nil, err
	}

	if err := s.scheduleProcessing(movie, sourcePath); err != nil {
		return nil, err
	}

	s.logger.Infow("movie created, processing scheduled",
		"movie_id", movie.ID(),
		"slug", slug,
		"access_tier", string(movie.AccessTier()))
	return movie, nil
}

// AttachRendition stores one pre-encoded file at an explicit tier and
// reconciles it into the catalog, overwriting whatever the tier held. A
// title currently in the pipeline is rejected so the two writers never
// race on the same slot.
func (s *MovieService) AttachRendition(ctx context.Context, movieID uint, quality media.Quality, language string, video *multipart.FileHeader) (*media.Rendition, error) {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, errors.NewNotFoundError("movie not found")
	}

	if s.dispatcher.Busy(movieID) {
		return nil, jobs.ErrTitleBusy
	}

	if language == "" {
		language = s.cfg.DefaultLanguage
	}

	fileURL, err := s.store.SaveRendition(movie.Slug(), quality, video)
	if err != nil {
		return nil, fmt.Errorf("save rendition upload: %w", err)
	}

	rendition, err := media.NewRendition(movieID, quality, language, fileURL)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.renditionRepo.Upsert(ctx, rendition); err != nil {
		return nil, err
	}

	s.logger.Infow("rendition attached manually",
		"movie_id", movieID,
		"slug", movie.Slug(),
		"quality", quality.String())
	return rendition, nil
}

// List returns the catalog page plus total count. Viewers without access to
// paid titles are narrowed to the free catalog regardless of the filter.
func (s *MovieService) List(ctx context.Context, filter catalog.MovieFilter, viewer playback.Viewer) ([]*catalog.Movie, int64, error) {
	seesPaid, err := s.resolver.CanSeePaidTitles(ctx, viewer)
	if err != nil {
		return nil, 0, err
	}
	if !seesPaid {
		free := catalog.AccessFree
		filter.AccessTier = &free
	}
	return s.movieRepo.List(ctx, filter)
}

// GetBySlug returns one movie with the renditions the viewer may stream.
// The detail page is what counts a view; paid titles stay visible to
// everyone but their file list collapses to what the entitlement allows.
// A subscriber's plan bounds the file list even on free titles.
func (s *MovieService) GetBySlug(ctx context.Context, slug string, viewer playback.Viewer) (*MovieDetail, error) {
	movie, err := s.movieRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, errors.NewNotFoundError("movie not found")
	}

	renditions, err := s.renditionRepo.ListByMovieID(ctx, movie.ID())
	if err != nil {
		return nil, err
	}

	var permitted media.QualitySet
	if movie.IsPaid() {
		permitted, err = s.resolver.Resolve(ctx, viewer, movie)
	} else {
		permitted, err = s.resolver.PlanCeiling(ctx, viewer)
	}

	var visible []*media.Rendition
	switch {
	case err == nil:
		visible = playback.FilterPermitted(renditions, permitted)
	case stderrors.Is(err, playback.ErrAccessDenied):
		// The detail page stays visible, the file list does not.
		visible = []*media.Rendition{}
	default:
		return nil, err
	}

	var maxQuality *media.Quality
	for _, r := range visible {
		if maxQuality == nil || r.Quality().BetterThan(*maxQuality) {
			q := r.Quality()
			maxQuality = &q
		}
	}

	if err := s.viewCache.IncrView(ctx, movie.ID()); err != nil {
		// A lost count must never block the detail page.
		s.logger.Warnw("failed to count view", "movie_id", movie.ID(), "error", err)
	}

	return &MovieDetail{Movie: movie, Renditions: visible, MaxQuality: maxQuality}, nil
}

// GetByID returns one movie with its renditions for the admin surface.
func (s *MovieService) GetByID(ctx context.Context, id uint) (*MovieDetail, error) {
	movie, err := s.movieRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, errors.NewNotFoundError("movie not found")
	}

	renditions, err := s.renditionRepo.ListByMovieID(ctx, movie.ID())
	if err != nil {
		return nil, err
	}

	return &MovieDetail{Movie: movie, Renditions: renditions}, nil
}

// GetFile authorizes the viewer and picks the rendition to stream.
func (s *MovieService) GetFile(ctx context.Context, movieID uint, requested media.Quality, viewer playback.Viewer) (*PlaybackFile, error) {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, errors.NewNotFoundError("movie not found")
	}

	permitted, err := s.resolver.Resolve(ctx, viewer, movie)
	if err != nil {
		return nil, err
	}

	renditions, err := s.renditionRepo.ListByMovieID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	rendition, err := playback.SelectRendition(renditions, permitted, requested)
	if err != nil {
		return nil, err
	}

	return &PlaybackFile{
		Quality:  rendition.Quality(),
		Language: rendition.Language(),
		FileURL:  rendition.FileURL(),
	}, nil
}

// Delete removes the movie, its rendition rows and every file on disk.
func (s *MovieService) Delete(ctx context.Context, movieID uint) error {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		return errors.NewNotFoundError("movie not found")
	}

	if s.dispatcher.Busy(movieID) {
		return jobs.ErrTitleBusy
	}

	if err := s.renditionRepo.DeleteByMovieID(ctx, movieID); err != nil {
		return err
	}
	if err := s.movieRepo.Delete(ctx, movieID); err != nil {
		return err
	}
	if err := s.store.RemoveTitle(movie.Slug()); err != nil {
		s.logger.Warnw("failed to remove files for deleted movie",
			"movie_id", movieID,
			"slug", movie.Slug(),
			"error", err)
	}

	s.logger.Infow("movie deleted", "movie_id", movieID, "slug", movie.Slug())
	return nil
}

// uniqueSlug derives the URL slug from the title, disambiguating collisions
// with a timestamp suffix so re-uploads of a popular title never clash.
func (s *MovieService) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := utils.Slugify(title)
	if slug == "" {
		return "", errors.NewValidationError("movie title produces an empty slug")
	}

	exists, err := s.movieRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if exists {
		slug = fmt.Sprintf("%s-%d", slug, time.Now().Unix())
	}
	return slug, nil
}

func (s *MovieService) scheduleProcessing(movie *catalog.Movie, sourcePath string) error {
	movieID := movie.ID()
	req := appmedia.ProcessRequest{
		MovieID:    movieID,
		Slug:       movie.Slug(),
		SourcePath: sourcePath,
		Language:   s.cfg.DefaultLanguage,
	}

	err := s.dispatcher.Submit(jobs.Job{
		MovieID: movieID,
		Run: func(ctx context.Context) {
			if _, err := s.pipeline.Process(ctx, req); err != nil {
				s.logger.Errorw("processing failed", "movie_id", movieID, "error", err)
			}
		},
	})
	if err != nil {
		if cleanupErr := s.store.RemoveSource(sourcePath); cleanupErr != nil {
			s.logger.Warnw("failed to remove source after rejected job",
				"movie_id", movieID, "error", cleanupErr)
		}
		return err
	}
	return nil
}
