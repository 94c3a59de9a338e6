// Package playback decides whether a viewer may stream a movie and which
// rendition they receive.
package playback

import "kinora/internal/shared/errors"

var (
	// ErrAccessDenied means the viewer has no entitlement for a paid title.
	ErrAccessDenied = errors.NewForbiddenError("an active subscription is required to play this movie")
	// ErrForbiddenQuality means the tier exists but the viewer's plan does not cover it.
	ErrForbiddenQuality = errors.NewForbiddenError("your subscription plan does not include this quality")
	// ErrRenditionNotFound means the requested tier was never produced for this movie.
	ErrRenditionNotFound = errors.NewNotFoundError("requested quality is not available for this movie")
	// ErrNoEligibleRendition means nothing playable remains after entitlement filtering.
	ErrNoEligibleRendition = errors.NewForbiddenError("no playable quality is available for your subscription")
)
