package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appcatalog "kinora/internal/application/catalog"
	"kinora/internal/application/playback"
	"kinora/internal/domain/catalog"
	"kinora/internal/domain/media"
	"kinora/internal/shared/logger"
	"kinora/internal/shared/utils"
)

// MovieHandler serves the viewer-facing catalog and playback endpoints.
type MovieHandler struct {
	movieService *appcatalog.MovieService
	logger       logger.Interface
}

func NewMovieHandler(movieService *appcatalog.MovieService, logger logger.Interface) *MovieHandler {
	return &MovieHandler{
		movieService: movieService,
		logger:       logger,
	}
}

type MovieResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	AccessTier      string    `json:"access_tier"`
	PlanID          *uint     `json:"plan_id,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	PosterURL       string    `json:"poster_url,omitempty"`
	ViewCount       uint64    `json:"view_count"`
	ReleaseDate     time.Time `json:"release_date"`
	CreatedAt       time.Time `json:"created_at"`
}

type RenditionResponse struct {
	Quality  string `json:"quality"`
	Language string `json:"language"`
	FileURL  string `json:"file_url"`
}

type MovieDetailResponse struct {
	MovieResponse
	Renditions []RenditionResponse `json:"renditions"`
	MaxQuality string              `json:"max_quality,omitempty"`
}

type PlaybackFileResponse struct {
	Quality  string `json:"quality"`
	Language string `json:"language"`
	FileURL  string `json:"file_url"`
}

func viewerFromContext(c *gin.Context) playback.Viewer {
	return playback.Viewer{
		ProfileID: utils.ProfileIDFromContext(c),
		IsAdmin:   utils.IsAdminFromContext(c),
	}
}

func toMovieResponse(m *catalog.Movie) MovieResponse {
	return MovieResponse{
		ID:              m.ID(),
		Title:           m.Title(),
		Slug:            m.Slug(),
		Description:     m.Description(),
		AccessTier:      string(m.AccessTier()),
		PlanID:          m.PlanID(),
		DurationMinutes: m.DurationMinutes(),
		PosterURL:       m.PosterURL(),
		ViewCount:       m.ViewCount(),
		ReleaseDate:     m.ReleaseDate(),
		CreatedAt:       m.CreatedAt(),
	}
}

func toRenditionResponses(renditions []*media.Rendition) []RenditionResponse {
	out := make([]RenditionResponse, 0, len(renditions))
	for _, r := range renditions {
		out = append(out, RenditionResponse{
			Quality:  r.Quality().String(),
			Language: r.Language(),
			FileURL:  r.FileURL(),
		})
	}
	return out
}

// ListMovies handles GET /api/movies with search, tier filter and pagination.
// Viewers without access to paid titles only ever see the free catalog.
func (h *MovieHandler) ListMovies(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	filter := catalog.MovieFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
	if tierParam := c.Query("access_tier"); tierParam != "" {
		tier := catalog.AccessTier(tierParam)
		if !tier.IsValid() {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid access tier filter")
			return
		}
		filter.AccessTier = &tier
	}

	movies, total, err := h.movieService.List(c.Request.Context(), filter, viewerFromContext(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]MovieResponse, 0, len(movies))
	for _, m := range movies {
		items = append(items, toMovieResponse(m))
	}

	utils.ListSuccessResponse(c, items, total, page, pageSize)
}

// GetMovie handles GET /api/movies/:slug. The file list is narrowed to what
// the viewer's entitlement permits; the metadata is public either way.
func (h *MovieHandler) GetMovie(c *gin.Context) {
	detail, err := h.movieService.GetBySlug(c.Request.Context(), c.Param("movie"), viewerFromContext(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := MovieDetailResponse{
		MovieResponse: toMovieResponse(detail.Movie),
		Renditions:    toRenditionResponses(detail.Renditions),
	}
	if detail.MaxQuality != nil {
		resp.MaxQuality = detail.MaxQuality.String()
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// GetMovieFile handles GET /api/movies/:id/file. The quality query parameter
// defaults to AUTO; explicit tiers are validated before they reach selection.
func (h *MovieHandler) GetMovieFile(c *gin.Context) {
	movieID, err := utils.ParseUintParam(c, "movie", "movie")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	requested := media.Quality(playback.QualityAuto)
	if qualityParam := c.Query("quality"); qualityParam != "" && qualityParam != playback.QualityAuto {
		requested, err = media.ParseQuality(qualityParam)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "unknown quality tier")
			return
		}
	}

	file, err := h.movieService.GetFile(c.Request.Context(), movieID, requested, viewerFromContext(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", PlaybackFileResponse{
		Quality:  file.Quality.String(),
		Language: file.Language,
		FileURL:  file.FileURL,
	})
}
