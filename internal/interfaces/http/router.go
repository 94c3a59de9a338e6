// Package http wires the gin engine: repositories, services, handlers,
// middleware and the route table.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appcatalog "kinora/internal/application/catalog"
	appmedia "kinora/internal/application/media"
	"kinora/internal/application/playback"
	appsubscription "kinora/internal/application/subscription"
	"kinora/internal/infrastructure/auth"
	"kinora/internal/infrastructure/cache"
	"kinora/internal/infrastructure/config"
	"kinora/internal/infrastructure/jobs"
	"kinora/internal/infrastructure/media/ffmpeg"
	"kinora/internal/infrastructure/repository"
	"kinora/internal/infrastructure/storage"
	"kinora/internal/interfaces/http/handlers"
	"kinora/internal/interfaces/http/middleware"
	"kinora/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine            *gin.Engine
	cfg               *config.Config
	dispatcher        *jobs.Dispatcher
	store             *storage.LocalStore
	authHandler       *handlers.AuthHandler
	movieHandler      *handlers.MovieHandler
	adminMovieHandler *handlers.AdminMovieHandler
	planHandler       *handlers.PlanHandler
	authMiddleware    *middleware.AuthMiddleware
	logger            logger.Interface
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	movieRepo := repository.NewMovieRepository(db, log)
	renditionRepo := repository.NewRenditionRepository(db, log)
	planRepo := repository.NewPlanRepository(db, log)
	subscriptionRepo := repository.NewSubscriptionRepository(db, log)
	paymentRepo := repository.NewPaymentRepository(db, log)
	profileRepo := repository.NewProfileRepository(db, log)

	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost)
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret,
		cfg.Auth.JWT.AccessExpMinutes, cfg.Auth.JWT.RefreshExpDays)

	store := storage.NewLocalStore(&cfg.Media, log)
	prober := ffmpeg.NewFFprobeProber(cfg.Media.FFprobePath, log)
	encoder := ffmpeg.NewFFmpegEncoder(cfg.Media.FFmpegPath, log)
	viewCache := cache.NewRedisViewCache(redisClient, movieRepo, log)

	pipeline := appmedia.NewPipeline(prober, encoder, store,
		renditionRepo, movieRepo, &cfg.Media, log)
	dispatcher := jobs.NewDispatcher(&cfg.Worker, log)
	dispatcher.Start()

	resolver := playback.NewEntitlementResolver(subscriptionRepo, planRepo, log)
	movieService := appcatalog.NewMovieService(movieRepo, renditionRepo, resolver,
		pipeline, dispatcher, store, viewCache, &cfg.Media, log)
	subscriptionService := appsubscription.NewService(planRepo, subscriptionRepo, paymentRepo, log)

	return &Router{
		engine:            engine,
		cfg:               cfg,
		dispatcher:        dispatcher,
		store:             store,
		authHandler:       handlers.NewAuthHandler(profileRepo, hasher, jwtService, log),
		movieHandler:      handlers.NewMovieHandler(movieService, log),
		adminMovieHandler: handlers.NewAdminMovieHandler(movieService, log),
		planHandler:       handlers.NewPlanHandler(subscriptionService, log),
		authMiddleware:    middleware.NewAuthMiddleware(jwtService, log),
		logger:            log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Encoded renditions and posters are served straight off disk.
	r.engine.Static(r.store.PublicPrefix(), r.store.Root())

	api := r.engine.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
	}

	// One wildcard name serves both routes: the detail endpoint treats it
	// as a slug, the file endpoint as a numeric ID.
	movies := api.Group("/movies")
	movies.Use(r.authMiddleware.OptionalAuth())
	{
		movies.GET("", r.movieHandler.ListMovies)
		movies.GET("/:movie", r.movieHandler.GetMovie)
		movies.GET("/:movie/file", r.movieHandler.GetMovieFile)
	}

	plans := api.Group("/plans")
	{
		plans.GET("", r.planHandler.ListPlans)
		plans.POST("/purchase", r.authMiddleware.RequireAuth(), r.planHandler.Purchase)
	}
	api.GET("/subscriptions/me", r.authMiddleware.RequireAuth(), r.planHandler.MySubscriptions)

	admin := api.Group("/admin")
	admin.Use(r.authMiddleware.RequireAdmin())
	{
		admin.POST("/movies", r.adminMovieHandler.CreateMovie)
		admin.GET("/movies", r.adminMovieHandler.ListMovies)
		admin.GET("/movies/:id", r.adminMovieHandler.GetMovie)
		admin.POST("/movies/:id/files", r.adminMovieHandler.AttachFile)
		admin.DELETE("/movies/:id", r.adminMovieHandler.DeleteMovie)

		admin.POST("/plans", r.planHandler.CreatePlan)
		admin.PUT("/plans/:id", r.planHandler.UpdatePlan)
		admin.DELETE("/plans/:id", r.planHandler.DeactivatePlan)
	}
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}

// Shutdown drains the transcode workers.
func (r *Router) Shutdown() {
	r.dispatcher.Shutdown()
}
