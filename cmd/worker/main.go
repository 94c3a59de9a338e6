package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	appsubscription "kinora/internal/application/subscription"
	"kinora/internal/infrastructure/cache"
	"kinora/internal/infrastructure/config"
	"kinora/internal/infrastructure/database"
	"kinora/internal/infrastructure/repository"
	"kinora/internal/shared/logger"
)

func main() {
	// Parse environment from command line or env variable
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting maintenance worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	movieRepo := repository.NewMovieRepository(database.Get(), log)
	planRepo := repository.NewPlanRepository(database.Get(), log)
	subscriptionRepo := repository.NewSubscriptionRepository(database.Get(), log)
	paymentRepo := repository.NewPaymentRepository(database.Get(), log)

	viewCache := cache.NewRedisViewCache(redisClient, movieRepo, log)
	subscriptionService := appsubscription.NewService(planRepo, subscriptionRepo, paymentRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Duration(cfg.Worker.FlushIntervalMin) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runSweep := func(ctx context.Context) {
		if err := viewCache.FlushToDatabase(ctx); err != nil {
			log.Errorw("view count flush failed", "error", err)
		}
		if _, err := subscriptionService.ExpireLapsed(ctx); err != nil {
			log.Errorw("subscription expiry sweep failed", "error", err)
		}
	}

	log.Infow("running initial maintenance sweep")
	runSweep(ctx)

	log.Infow("maintenance worker started", "interval", interval.String())

	for {
		select {
		case <-ticker.C:
			log.Infow("running scheduled maintenance sweep")
			runSweep(ctx)

		case sig := <-sigChan:
			log.Infow("received signal, shutting down", "signal", sig)

			flushCtx, flushCancel := context.WithTimeout(context.Background(), 30*time.Second)
			runSweep(flushCtx)
			flushCancel()

			log.Infow("maintenance worker stopped")
			return
		}
	}
}
