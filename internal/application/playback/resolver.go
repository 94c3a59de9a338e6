package playback

import (
	"context"
	"fmt"

	"kinora/internal/domain/catalog"
	"kinora/internal/domain/media"
	"kinora/internal/domain/subscription"
	"kinora/internal/shared/logger"
)

// Viewer is the authenticated (or anonymous) identity asking to play.
type Viewer struct {
	ProfileID *uint
	IsAdmin   bool
}

// Anonymous reports whether no profile is attached to the request.
func (v Viewer) Anonymous() bool {
	return v.ProfileID == nil
}

// EntitlementResolver turns a (viewer, movie) pair into the set of quality
// tiers the viewer is allowed to receive.
//
// Admins and free titles resolve to the unrestricted set. Paid titles
// require an active subscription; the subscriber's plan then bounds the
// set, with an empty plan list meaning unrestricted.
type EntitlementResolver struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	logger           logger.Interface
}

func NewEntitlementResolver(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	logger logger.Interface,
) *EntitlementResolver {
	return &EntitlementResolver{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		logger:           logger,
	}
}

// Resolve returns the permitted quality set, or ErrAccessDenied when the
// viewer may not play the movie at all.
func (r *EntitlementResolver) Resolve(ctx context.Context, viewer Viewer, movie *catalog.Movie) (media.QualitySet, error) {
	if viewer.IsAdmin {
		return media.Unrestricted(), nil
	}

	if !movie.IsPaid() {
		return media.Unrestricted(), nil
	}

	if viewer.Anonymous() {
		return media.QualitySet{}, ErrAccessDenied
	}

	sub, err := r.subscriptionRepo.GetActiveByProfileID(ctx, *viewer.ProfileID)
	if err != nil {
		return media.QualitySet{}, fmt.Errorf("resolve entitlement: %w", err)
	}
	if sub == nil {
		return media.QualitySet{}, ErrAccessDenied
	}

	plan, err := r.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return media.QualitySet{}, fmt.Errorf("resolve entitlement plan: %w", err)
	}
	if plan == nil {
		r.logger.Errorw("active subscription references missing plan",
			"profile_id", *viewer.ProfileID,
			"plan_id", sub.PlanID())
		return media.QualitySet{}, ErrAccessDenied
	}

	return plan.PermittedSet(), nil
}

// PlanCeiling returns the tiers the viewer's plan allows regardless of any
// movie's access tier. Admins and viewers without an active subscription are
// not bounded by a plan.
func (r *EntitlementResolver) PlanCeiling(ctx context.Context, viewer Viewer) (media.QualitySet, error) {
	if viewer.IsAdmin || viewer.Anonymous() {
		return media.Unrestricted(), nil
	}

	sub, err := r.subscriptionRepo.GetActiveByProfileID(ctx, *viewer.ProfileID)
	if err != nil {
		return media.QualitySet{}, fmt.Errorf("resolve plan ceiling: %w", err)
	}
	if sub == nil {
		return media.Unrestricted(), nil
	}

	plan, err := r.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return media.QualitySet{}, fmt.Errorf("resolve plan ceiling plan: %w", err)
	}
	if plan == nil {
		r.logger.Errorw("active subscription references missing plan",
			"profile_id", *viewer.ProfileID,
			"plan_id", sub.PlanID())
		return media.Unrestricted(), nil
	}

	return plan.PermittedSet(), nil
}

// CanSeePaidTitles reports whether paid titles belong in the viewer's
// catalog listing. Anonymous viewers and profiles without an active
// subscription see free titles only.
func (r *EntitlementResolver) CanSeePaidTitles(ctx context.Context, viewer Viewer) (bool, error) {
	if viewer.IsAdmin {
		return true, nil
	}
	if viewer.Anonymous() {
		return false, nil
	}

	sub, err := r.subscriptionRepo.GetActiveByProfileID(ctx, *viewer.ProfileID)
	if err != nil {
		return false, fmt.Errorf("resolve catalog visibility: %w", err)
	}
	return sub != nil, nil
}
