package playback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinora/internal/domain/catalog"
	"kinora/internal/domain/media"
	"kinora/internal/domain/subscription"
	"kinora/internal/shared/logger"
)

type fakeSubscriptionRepo struct {
	subscription.SubscriptionRepository
	active *subscription.Subscription
}

func (f *fakeSubscriptionRepo) GetActiveByProfileID(ctx context.Context, profileID uint) (*subscription.Subscription, error) {
	return f.active, nil
}

type fakePlanRepo struct {
	subscription.PlanRepository
	plans map[uint]*subscription.Plan
}

func (f *fakePlanRepo) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	return f.plans[id], nil
}

func freeMovie(t *testing.T) *catalog.Movie {
	t.Helper()
	m, err := catalog.NewMovie("Old Classic", "old-classic", "", catalog.AccessFree, nil, time.Now(), 1)
	require.NoError(t, err)
	return m
}

func paidMovie(t *testing.T) *catalog.Movie {
	t.Helper()
	planID := uint(3)
	m, err := catalog.NewMovie("New Release", "new-release", "", catalog.AccessPaid, &planID, time.Now(), 1)
	require.NoError(t, err)
	return m
}

func activeSubscription(t *testing.T, planID uint) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(10, planID, 30)
	require.NoError(t, err)
	return sub
}

func restrictedPlan(t *testing.T, id uint, qualities ...media.Quality) *subscription.Plan {
	t.Helper()
	plan, err := subscription.ReconstructPlan(id, "Basic", "basic", 10000, 30,
		qualities, "active", time.Now(), time.Now())
	require.NoError(t, err)
	return plan
}

func newTestResolver(active *subscription.Subscription, plans map[uint]*subscription.Plan) *EntitlementResolver {
	return NewEntitlementResolver(
		&fakeSubscriptionRepo{active: active},
		&fakePlanRepo{plans: plans},
		logger.NewLogger(),
	)
}

func profileID(id uint) *uint {
	return &id
}

func TestResolveAdminIsUnrestricted(t *testing.T) {
	r := newTestResolver(nil, nil)

	set, err := r.Resolve(context.Background(), Viewer{ProfileID: profileID(1), IsAdmin: true}, paidMovie(t))
	require.NoError(t, err)
	assert.True(t, set.Permits(media.QualityP4K))
}

func TestResolveFreeMovieForAnonymous(t *testing.T) {
	r := newTestResolver(nil, nil)

	set, err := r.Resolve(context.Background(), Viewer{}, freeMovie(t))
	require.NoError(t, err)
	assert.True(t, set.Permits(media.QualityP4K))
	assert.True(t, set.Permits(media.QualityP240))
}

func TestResolvePaidMovieForAnonymousIsDenied(t *testing.T) {
	r := newTestResolver(nil, nil)

	_, err := r.Resolve(context.Background(), Viewer{}, paidMovie(t))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestResolvePaidMovieWithoutSubscriptionIsDenied(t *testing.T) {
	r := newTestResolver(nil, nil)

	_, err := r.Resolve(context.Background(), Viewer{ProfileID: profileID(10)}, paidMovie(t))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestResolveSubscriberGetsPlanSet(t *testing.T) {
	plan := restrictedPlan(t, 3, media.QualityP480, media.QualityP360, media.QualityP240)
	r := newTestResolver(activeSubscription(t, 3), map[uint]*subscription.Plan{3: plan})

	set, err := r.Resolve(context.Background(), Viewer{ProfileID: profileID(10)}, paidMovie(t))
	require.NoError(t, err)

	assert.True(t, set.Permits(media.QualityP480))
	assert.False(t, set.Permits(media.QualityP720))
	assert.False(t, set.Permits(media.QualityP4K))
}

func TestResolveSubscriberWithUnrestrictedPlan(t *testing.T) {
	plan := restrictedPlan(t, 3)
	r := newTestResolver(activeSubscription(t, 3), map[uint]*subscription.Plan{3: plan})

	set, err := r.Resolve(context.Background(), Viewer{ProfileID: profileID(10)}, paidMovie(t))
	require.NoError(t, err)

	// Empty plan list means the plan grants everything.
	assert.True(t, set.Permits(media.QualityP4K))
	assert.True(t, set.Permits(media.QualityP240))
}

func TestResolveSubscriptionWithMissingPlanIsDenied(t *testing.T) {
	r := newTestResolver(activeSubscription(t, 99), map[uint]*subscription.Plan{})

	_, err := r.Resolve(context.Background(), Viewer{ProfileID: profileID(10)}, paidMovie(t))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCanSeePaidTitles(t *testing.T) {
	tests := []struct {
		name   string
		viewer Viewer
		active *subscription.Subscription
		want   bool
	}{
		{"admin", Viewer{ProfileID: profileID(1), IsAdmin: true}, nil, true},
		{"anonymous", Viewer{}, nil, false},
		{"profile without subscription", Viewer{ProfileID: profileID(10)}, nil, false},
		{"active subscriber", Viewer{ProfileID: profileID(10)}, activeSubscription(t, 3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(tt.active, nil)
			got, err := r.CanSeePaidTitles(context.Background(), tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanCeilingBoundsSubscriber(t *testing.T) {
	plan := restrictedPlan(t, 3, media.QualityP240)
	r := newTestResolver(activeSubscription(t, 3), map[uint]*subscription.Plan{3: plan})

	set, err := r.PlanCeiling(context.Background(), Viewer{ProfileID: profileID(10)})
	require.NoError(t, err)

	assert.True(t, set.Permits(media.QualityP240))
	assert.False(t, set.Permits(media.QualityP720))
}

func TestPlanCeilingUnboundedWithoutSubscription(t *testing.T) {
	r := newTestResolver(nil, nil)

	for _, viewer := range []Viewer{
		{},
		{ProfileID: profileID(10)},
		{ProfileID: profileID(1), IsAdmin: true},
	} {
		set, err := r.PlanCeiling(context.Background(), viewer)
		require.NoError(t, err)
		assert.True(t, set.Unrestricted())
	}
}

func TestResolveFreeMovieIgnoresSubscriptionState(t *testing.T) {
	plan := restrictedPlan(t, 3, media.QualityP240)
	r := newTestResolver(activeSubscription(t, 3), map[uint]*subscription.Plan{3: plan})

	set, err := r.Resolve(context.Background(), Viewer{ProfileID: profileID(10)}, freeMovie(t))
	require.NoError(t, err)
	assert.True(t, set.Permits(media.QualityP4K))
}
