package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinora/internal/domain/media"
)

// --- helpers ---

func newBasicPlan(t *testing.T, qualities ...media.Quality) *Plan {
	t.Helper()
	plan, err := NewPlan("Basic", "basic", 29000, 30, qualities)
	require.NoError(t, err)
	require.NotNil(t, plan)
	return plan
}

func TestNewPlan_ValidInput(t *testing.T) {
	plan, err := NewPlan("Premium", "premium", 59000, 30, []media.Quality{media.QualityP1080, media.QualityP720})

	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "Premium", plan.Name())
	assert.Equal(t, "premium", plan.Slug())
	assert.Equal(t, uint64(59000), plan.Price())
	assert.Equal(t, 30, plan.DurationDays())
	assert.Equal(t, PlanStatusActive, plan.Status())
	assert.True(t, plan.IsActive())
}

func TestNewPlan_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		planName  string
		slug      string
		duration  int
		qualities []media.Quality
		wantErr   string
	}{
		{"empty name", "", "slug", 30, nil, "plan name is required"},
		{"empty slug", "Plan", "", 30, nil, "plan slug is required"},
		{"zero duration", "Plan", "plan", 0, nil, "duration must be positive"},
		{"bad quality", "Plan", "plan", 30, []media.Quality{"P999"}, "invalid allowed quality"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := NewPlan(tc.planName, tc.slug, 1000, tc.duration, tc.qualities)
			require.Error(t, err)
			assert.Nil(t, plan)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPlan_PermittedSet_EmptyIsUnrestricted(t *testing.T) {
	plan := newBasicPlan(t)

	set := plan.PermittedSet()
	assert.True(t, set.Unrestricted())
	for _, q := range media.QualityOrder() {
		assert.True(t, set.Permits(q))
	}
}

func TestPlan_PermittedSet_Restricted(t *testing.T) {
	plan := newBasicPlan(t, media.QualityP240, media.QualityP360)

	set := plan.PermittedSet()
	assert.False(t, set.Unrestricted())
	assert.True(t, set.Permits(media.QualityP240))
	assert.True(t, set.Permits(media.QualityP360))
	assert.False(t, set.Permits(media.QualityP720))
}

func TestSubscription_IsActiveAt(t *testing.T) {
	now := time.Now()

	sub, err := NewSubscription(1, 2, 30)
	require.NoError(t, err)
	assert.True(t, sub.IsActiveAt(now))
	assert.False(t, sub.IsActiveAt(now.AddDate(0, 0, 31)))

	sub.Expire()
	assert.Equal(t, StatusExpired, sub.Status())
	assert.False(t, sub.IsActiveAt(now))
}

func TestReconstructSubscription_RejectsUnknownStatus(t *testing.T) {
	now := time.Now()
	_, err := ReconstructSubscription(1, 1, 1, "PAUSED", now, now, now, now)
	assert.Error(t, err)
}
