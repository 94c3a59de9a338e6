package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinora/internal/domain/media"
)

func rendition(t *testing.T, id uint, quality media.Quality) *media.Rendition {
	t.Helper()
	r, err := media.ReconstructRendition(id, 1, quality, "uzbek",
		"/uploads/movies/test/"+string(quality)+".mp4", time.Now(), time.Now())
	require.NoError(t, err)
	return r
}

func TestSelectAutoPicksBestPermitted(t *testing.T) {
	renditions := []*media.Rendition{
		rendition(t, 1, media.QualityP240),
		rendition(t, 2, media.QualityP1080),
		rendition(t, 3, media.QualityP480),
	}

	picked, err := SelectRendition(renditions, media.Unrestricted(), QualityAuto)
	require.NoError(t, err)
	assert.Equal(t, media.QualityP1080, picked.Quality())
}

func TestSelectAutoRespectsPlanCeiling(t *testing.T) {
	renditions := []*media.Rendition{
		rendition(t, 1, media.QualityP1080),
		rendition(t, 2, media.QualityP480),
		rendition(t, 3, media.QualityP240),
	}
	permitted := media.NewQualitySet(media.QualityP480, media.QualityP360, media.QualityP240)

	picked, err := SelectRendition(renditions, permitted, "")
	require.NoError(t, err)
	assert.Equal(t, media.QualityP480, picked.Quality())
}

func TestSelectAutoWithNoRenditions(t *testing.T) {
	_, err := SelectRendition(nil, media.Unrestricted(), QualityAuto)
	assert.ErrorIs(t, err, ErrRenditionNotFound)
}

func TestSelectAutoWithNothingPermitted(t *testing.T) {
	renditions := []*media.Rendition{
		rendition(t, 1, media.QualityP1080),
		rendition(t, 2, media.QualityP720),
	}
	permitted := media.NewQualitySet(media.QualityP240)

	_, err := SelectRendition(renditions, permitted, QualityAuto)
	assert.ErrorIs(t, err, ErrNoEligibleRendition)
}

func TestFilterPermitted(t *testing.T) {
	renditions := []*media.Rendition{
		rendition(t, 1, media.QualityP1080),
		rendition(t, 2, media.QualityP480),
		rendition(t, 3, media.QualityP240),
	}
	permitted := media.NewQualitySet(media.QualityP480, media.QualityP240)

	visible := FilterPermitted(renditions, permitted)
	require.Len(t, visible, 2)
	assert.Equal(t, media.QualityP480, visible[0].Quality())
	assert.Equal(t, media.QualityP240, visible[1].Quality())

	assert.Len(t, FilterPermitted(renditions, media.Unrestricted()), 3)
}

func TestSelectExplicitTier(t *testing.T) {
	renditions := []*media.Rendition{
		rendition(t, 1, media.QualityP1080),
		rendition(t, 2, media.QualityP480),
	}

	picked, err := SelectRendition(renditions, media.Unrestricted(), media.QualityP480)
	require.NoError(t, err)
	assert.Equal(t, media.QualityP480, picked.Quality())
}

func TestSelectExplicitTierNeverProduced(t *testing.T) {
	renditions := []*media.Rendition{
		rendition(t, 1, media.QualityP480),
	}

	_, err := SelectRendition(renditions, media.Unrestricted(), media.QualityP4K)
	assert.ErrorIs(t, err, ErrRenditionNotFound)
}

func TestSelectExplicitTierOutsidePlan(t *testing.T) {
	renditions := []*media.Rendition{
		rendition(t, 1, media.QualityP1080),
		rendition(t, 2, media.QualityP480),
	}
	permitted := media.NewQualitySet(media.QualityP480, media.QualityP240)

	// The tier exists, so the answer is forbidden rather than a downgrade.
	_, err := SelectRendition(renditions, permitted, media.QualityP1080)
	assert.ErrorIs(t, err, ErrForbiddenQuality)
}
