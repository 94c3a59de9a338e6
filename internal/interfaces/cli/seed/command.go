// Package seed implements the `kinora seed` command: demo profiles and
// subscription plans for a fresh installation.
package seed

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appsubscription "kinora/internal/application/subscription"
	"kinora/internal/infrastructure/auth"
	"kinora/internal/infrastructure/config"
	"kinora/internal/infrastructure/database"
	"kinora/internal/infrastructure/persistence/models"
	"kinora/internal/infrastructure/repository"
	"kinora/internal/shared/constants"
	"kinora/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo profiles and subscription plans",
		Long:  `Create an admin profile, a demo viewer and the default subscription plans. Existing rows are left untouched.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

type seedProfile struct {
	username string
	email    string
	password string
	role     string
	fullName string
}

type seedPlan struct {
	name         string
	price        uint64
	durationDays int
	qualities    []string
}

var profiles = []seedProfile{
	{username: "admin", email: "admin@kinora.local", password: "admin123", role: constants.RoleAdmin, fullName: "Administrator"},
	{username: "demo", email: "demo@kinora.local", password: "demo123", role: constants.RoleUser, fullName: "Demo Viewer"},
}

var plans = []seedPlan{
	{name: "Basic", price: 15000, durationDays: 30, qualities: []string{"P480", "P360", "P240"}},
	{name: "Standard", price: 30000, durationDays: 30, qualities: []string{"P1080", "P720", "P480", "P360", "P240"}},
	{name: "Premium", price: 45000, durationDays: 30, qualities: nil},
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	log := logger.NewLogger()
	ctx := context.Background()

	if err := seedProfiles(ctx, cfg, log); err != nil {
		return err
	}
	if err := seedPlans(ctx, log); err != nil {
		return err
	}

	log.Infow("seeding completed")
	return nil
}

func seedProfiles(ctx context.Context, cfg *config.Config, log logger.Interface) error {
	profileRepo := repository.NewProfileRepository(database.Get(), log)
	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost)

	for _, p := range profiles {
		exists, err := profileRepo.ExistsByUsername(ctx, p.username)
		if err != nil {
			return err
		}
		if exists {
			log.Infow("profile already exists, skipping", "username", p.username)
			continue
		}

		hash, err := hasher.Hash(p.password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", p.username, err)
		}

		if err := profileRepo.Create(ctx, newProfileModel(p, hash)); err != nil {
			return err
		}
		log.Infow("profile seeded", "username", p.username, "role", p.role)
	}
	return nil
}

func newProfileModel(p seedProfile, passwordHash string) *models.ProfileModel {
	return &models.ProfileModel{
		Username:     p.username,
		Email:        p.email,
		PasswordHash: passwordHash,
		Role:         p.role,
		FullName:     p.fullName,
		Status:       "ACTIVE",
	}
}

func seedPlans(ctx context.Context, log logger.Interface) error {
	planRepo := repository.NewPlanRepository(database.Get(), log)
	subscriptionRepo := repository.NewSubscriptionRepository(database.Get(), log)
	paymentRepo := repository.NewPaymentRepository(database.Get(), log)
	service := appsubscription.NewService(planRepo, subscriptionRepo, paymentRepo, log)

	for _, p := range plans {
		existing, err := planRepo.GetByName(ctx, p.name)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Infow("plan already exists, skipping", "name", p.name)
			continue
		}

		plan, err := service.CreatePlan(ctx, appsubscription.PlanInput{
			Name:             p.name,
			Price:            p.price,
			DurationDays:     p.durationDays,
			AllowedQualities: p.qualities,
		})
		if err != nil {
			return err
		}
		log.Infow("plan seeded", "name", plan.Name(), "price", plan.Price())
	}
	return nil
}
