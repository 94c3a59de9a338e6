package media

import (
	"errors"
	"fmt"
)

// ErrSourceUnreadable is returned when the probe cannot read the source:
// missing file, empty path or no decodable video stream.
var ErrSourceUnreadable = errors.New("source video is unreadable")

// ErrEmptyPlan is returned when planning yields no rungs. The floor rule in
// PlanLadder should make this unreachable; the pipeline still fails fast on it.
var ErrEmptyPlan = errors.New("rendition plan is empty")

// EncodeError reports an abnormal encoder exit for one tier, carrying the
// tool's diagnostic output.
type EncodeError struct {
	Quality Quality
	Detail  string
	Err     error
}

func (e *EncodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("encode to %s failed: %v: %s", e.Quality, e.Err, e.Detail)
	}
	return fmt.Sprintf("encode to %s failed: %v", e.Quality, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
