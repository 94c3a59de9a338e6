package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kinora/internal/infrastructure/auth"
	"kinora/internal/infrastructure/repository"
	"kinora/internal/shared/logger"
	"kinora/internal/shared/utils"
)

// AuthHandler issues and refreshes playback tokens.
type AuthHandler struct {
	profileRepo *repository.ProfileRepository
	hasher      *auth.BcryptPasswordHasher
	jwtService  *auth.JWTService
	logger      logger.Interface
}

func NewAuthHandler(
	profileRepo *repository.ProfileRepository,
	hasher *auth.BcryptPasswordHasher,
	jwtService *auth.JWTService,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		profileRepo: profileRepo,
		hasher:      hasher,
		jwtService:  jwtService,
		logger:      logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	profile, err := h.profileRepo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if profile == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.hasher.Verify(req.Password, profile.PasswordHash); err != nil {
		h.logger.Warnw("failed login attempt", "username", req.Username)
		utils.ErrorResponse(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.jwtService.Generate(profile.ID, profile.Role)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		Role:         profile.Role,
	})
}

// Refresh handles POST /api/auth/refresh with token rotation.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	pair, err := h.jwtService.Refresh(req.RefreshToken)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
