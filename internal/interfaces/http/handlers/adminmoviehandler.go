package handlers

import (
	"mime/multipart"
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

var allowedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/x-matroska": true,
	"video/webm":       true,
	"video/quicktime":  true,
}

var allowedPosterTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// AdminMovieHandler serves the admin upload and catalog management surface.
type AdminMovieHandler struct {
	movieService *appcatalog.MovieService
	logger       logger.Interface
}

func NewAdminMovieHandler(movieService *appcatalog.MovieService, logger logger.Interface) *AdminMovieHandler {
	return &AdminMovieHandler{
		movieService: movieService,
		logger:       logger,
	}
}

type createMovieForm struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"max=2000"`
	AccessTier  string `form:"access_tier" binding:"required,oneof=FREE PAID"`
	PlanID      *uint  `form:"plan_id"`
	ReleaseDate string `form:"release_date"`
}

// CreateMovie handles POST /api/admin/movies. The multipart form carries the
// metadata fields plus a required video file and an optional poster image.
// The response is 202: the row exists but renditions are still encoding.
func (h *AdminMovieHandler) CreateMovie(c *gin.Context) {
	var form createMovieForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warnw("invalid movie upload form", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	video, err := c.FormFile("video")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "video file is required")
		return
	}
	if !validUpload(video, allowedVideoTypes) {
		utils.ErrorResponse(c, http.StatusBadRequest, "unsupported video format")
		return
	}

	poster, err := c.FormFile("poster")
	if err != nil {
		poster = nil
	} else if !validUpload(poster, allowedPosterTypes) {
		utils.ErrorResponse(c, http.StatusBadRequest, "unsupported poster format")
		return
	}

	releaseDate := time.Now()
	if form.ReleaseDate != "" {
		parsed, err := time.Parse("2006-01-02", form.ReleaseDate)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "release_date must be YYYY-MM-DD")
			return
		}
		releaseDate = parsed
	}

	profileID := utils.ProfileIDFromContext(c)
	var createdBy uint
	if profileID != nil {
		createdBy = *profileID
	}

	movie, err := h.movieService.Create(c.Request.Context(), appcatalog.CreateMovieInput{
		Title:       form.Title,
		Description: form.Description,
		AccessTier:  catalog.AccessTier(form.AccessTier),
		PlanID:      form.PlanID,
		ReleaseDate: releaseDate,
		CreatedBy:   createdBy,
		Poster:      poster,
		Video:       video,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.AcceptedResponse(c, toMovieResponse(movie), "movie created, processing started")
}

// AttachFile handles POST /api/admin/movies/:id/files: one pre-encoded
// rendition at an explicit tier, bypassing the transcode pipeline.
func (h *AdminMovieHandler) AttachFile(c *gin.Context) {
	movieID, err := utils.ParseUintParam(c, "id", "movie")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	quality, err := media.ParseQuality(c.PostForm("quality"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "unknown quality tier")
		return
	}

	video, err := c.FormFile("video")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "video file is required")
		return
	}
	if !validUpload(video, allowedVideoTypes) {
		utils.ErrorResponse(c, http.StatusBadRequest, "unsupported video format")
		return
	}

	rendition, err := h.movieService.AttachRendition(c.Request.Context(),
		movieID, quality, c.PostForm("language"), video)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, RenditionResponse{
		Quality:  rendition.Quality().String(),
		Language: rendition.Language(),
		FileURL:  rendition.FileURL(),
	}, "rendition attached")
}

// GetMovie handles GET /api/admin/movies/:id.
func (h *AdminMovieHandler) GetMovie(c *gin.Context) {
	movieID, err := utils.ParseUintParam(c, "id", "movie")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	detail, err := h.movieService.GetByID(c.Request.Context(), movieID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := MovieDetailResponse{
		MovieResponse: toMovieResponse(detail.Movie),
		Renditions:    toRenditionResponses(detail.Renditions),
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// ListMovies handles GET /api/admin/movies with the same filters as the
// public listing.
func (h *AdminMovieHandler) ListMovies(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	filter := catalog.MovieFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}

	movies, total, err := h.movieService.List(c.Request.Context(), filter, playback.Viewer{IsAdmin: true})
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

// DeleteMovie handles DELETE /api/admin/movies/:id.
func (h *AdminMovieHandler) DeleteMovie(c *gin.Context) {
	movieID, err := utils.ParseUintParam(c, "id", "movie")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.movieService.Delete(c.Request.Context(), movieID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func validUpload(file *multipart.FileHeader, allowed map[string]bool) bool {
	return allowed[file.Header.Get("Content-Type")]
}
