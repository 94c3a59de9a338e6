// Package subscription implements plan administration and plan purchase.
package subscription

import (
	"context"
	"fmt"

	"kinora/internal/domain/media"
	"kinora/internal/domain/subscription"
	"kinora/internal/shared/errors"
	"kinora/internal/shared/logger"
	"kinora/internal/shared/utils"
)

// PlanInput carries the admin plan form. Qualities arrive as wire strings
// and are validated against the closed tier set.
type PlanInput struct {
	Name             string
	Price            uint64
	DurationDays     int
	AllowedQualities []string
}

// PurchaseResult bundles the new subscription with its payment record.
type PurchaseResult struct {
	Subscription *subscription.Subscription
	Payment      *subscription.Payment
}

type Service struct {
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.SubscriptionRepository
	paymentRepo      subscription.PaymentRepository
	logger           logger.Interface
}

func NewService(
	planRepo subscription.PlanRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	paymentRepo subscription.PaymentRepository,
	logger logger.Interface,
) *Service {
	return &Service{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		logger:           logger.With("component", "subscription.service"),
	}
}

// CreatePlan registers a new plan. An empty quality list makes the plan
// unrestricted.
func (s *Service) CreatePlan(ctx context.Context, input PlanInput) (*subscription.Plan, error) {
	qualities, err := parseQualities(input.AllowedQualities)
	if err != nil {
		return nil, err
	}

	plan, err := subscription.NewPlan(input.Name, utils.Slugify(input.Name),
		input.Price, input.DurationDays, qualities)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Infow("plan created", "plan_id", plan.ID(), "name", plan.Name())
	return plan, nil
}

// UpdatePlan rewrites an existing plan's price, duration and quality list.
func (s *Service) UpdatePlan(ctx context.Context, id uint, input PlanInput) (*subscription.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("subscription plan not found")
	}

	qualities, err := parseQualities(input.AllowedQualities)
	if err != nil {
		return nil, err
	}

	if err := plan.Update(input.Name, input.Price, input.DurationDays, qualities); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DeactivatePlan hides the plan from the storefront; existing subscriptions
// keep their entitlements until they expire.
func (s *Service) DeactivatePlan(ctx context.Context, id uint) error {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if plan == nil {
		return errors.NewNotFoundError("subscription plan not found")
	}

	plan.Deactivate()
	return s.planRepo.Update(ctx, plan)
}

// ListPlans returns the purchasable plans.
func (s *Service) ListPlans(ctx context.Context) ([]*subscription.Plan, error) {
	return s.planRepo.ListActive(ctx)
}

// GetPlan returns one plan by ID.
func (s *Service) GetPlan(ctx context.Context, id uint) (*subscription.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("subscription plan not found")
	}
	return plan, nil
}

// Purchase activates a plan for the profile and records the payment. A
// profile with a running subscription must wait for it to lapse.
func (s *Service) Purchase(ctx context.Context, profileID, planID uint, method string) (*PurchaseResult, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("subscription plan not found")
	}
	if !plan.IsActive() {
		return nil, errors.NewValidationError("subscription plan is no longer available")
	}

	existing, err := s.subscriptionRepo.GetActiveByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewConflictError("profile already has an active subscription")
	}

	sub, err := subscription.NewSubscription(profileID, planID, plan.DurationDays())
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	payment, err := subscription.NewPayment(profileID, sub.ID(), plan.Price(), method)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.logger.Infow("plan purchased",
		"profile_id", profileID,
		"plan_id", planID,
		"subscription_id", sub.ID(),
		"amount", plan.Price())
	return &PurchaseResult{Subscription: sub, Payment: payment}, nil
}

// ExpireLapsed marks every ACTIVE subscription whose end date has passed as
// EXPIRED. The sync worker runs this on a timer.
func (s *Service) ExpireLapsed(ctx context.Context) (int, error) {
	lapsed, err := s.subscriptionRepo.FindExpired(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range lapsed {
		sub.Expire()
		if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
			s.logger.Errorw("failed to expire subscription",
				"subscription_id", sub.ID(),
				"error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Infow("expired lapsed subscriptions", "count", expired)
	}
	return expired, nil
}

// MySubscriptions returns the profile's subscription history, newest first.
func (s *Service) MySubscriptions(ctx context.Context, profileID uint) ([]*subscription.Subscription, error) {
	return s.subscriptionRepo.ListByProfileID(ctx, profileID)
}

func parseQualities(names []string) ([]media.Quality, error) {
	qualities := make([]media.Quality, 0, len(names))
	for _, name := range names {
		q, err := media.ParseQuality(name)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown quality: %s", name))
		}
		qualities = append(qualities, q)
	}
	return qualities, nil
}
