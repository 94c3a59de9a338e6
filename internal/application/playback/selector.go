package playback

import (
	"kinora/internal/domain/media"
)

// QualityAuto asks the selector to pick the best permitted tier.
const QualityAuto = "AUTO"

// SelectRendition picks the rendition to serve. An empty or AUTO request
// yields the highest-ranked tier that both exists and is permitted. An
// explicit request is honored exactly: a tier that was never produced is
// not-found, a produced tier outside the permitted set is forbidden, and
// the selector never silently downgrades.
func SelectRendition(renditions []*media.Rendition, permitted media.QualitySet, requested media.Quality) (*media.Rendition, error) {
	if requested == "" || requested == QualityAuto {
		return selectBest(renditions, permitted)
	}

	var match *media.Rendition
	for _, r := range renditions {
		if r.Quality() == requested {
			match = r
			break
		}
	}
	if match == nil {
		return nil, ErrRenditionNotFound
	}
	if !permitted.Permits(match.Quality()) {
		return nil, ErrForbiddenQuality
	}
	return match, nil
}

// FilterPermitted returns the renditions the viewer may receive, in the
// repository's order.
func FilterPermitted(renditions []*media.Rendition, permitted media.QualitySet) []*media.Rendition {
	out := make([]*media.Rendition, 0, len(renditions))
	for _, r := range renditions {
		if permitted.Permits(r.Quality()) {
			out = append(out, r)
		}
	}
	return out
}

func selectBest(renditions []*media.Rendition, permitted media.QualitySet) (*media.Rendition, error) {
	if len(renditions) == 0 {
		return nil, ErrRenditionNotFound
	}

	var best *media.Rendition
	for _, r := range renditions {
		if !permitted.Permits(r.Quality()) {
			continue
		}
		if best == nil || r.Quality().BetterThan(best.Quality()) {
			best = r
		}
	}
	if best == nil {
		return nil, ErrNoEligibleRendition
	}
	return best, nil
}
