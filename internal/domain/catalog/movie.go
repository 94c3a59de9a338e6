// Package catalog holds the movie entity and its repository contract.
package catalog

import (
	"fmt"
	"time"
)

// AccessTier gates who may play a movie.
type AccessTier string

const (
	AccessFree AccessTier = "FREE"
	AccessPaid AccessTier = "PAID"
)

func (a AccessTier) IsValid() bool {
	return a == AccessFree || a == AccessPaid
}

// Movie is one catalog entry. The row exists before transcoding completes;
// renditions attach asynchronously.
type Movie struct {
	id              uint
	title           string
	slug            string
	description     string
	accessTier      AccessTier
	planID          *uint
	durationMinutes int
	posterURL       string
	viewCount       uint64
	releaseDate     time.Time
	createdBy       uint
	createdAt       time.Time
	updatedAt       time.Time
}

func NewMovie(title, slug, description string, accessTier AccessTier, planID *uint,
	releaseDate time.Time, createdBy uint) (*Movie, error) {

	if title == "" {
		return nil, fmt.Errorf("movie title is required")
	}
	if slug == "" {
		return nil, fmt.Errorf("movie slug is required")
	}
	if !accessTier.IsValid() {
		return nil, fmt.Errorf("invalid access tier: %s", accessTier)
	}
	if accessTier == AccessPaid && planID == nil {
		return nil, fmt.Errorf("paid movies require a subscription plan")
	}

	now := time.Now()
	return &Movie{
		title:       title,
		slug:        slug,
		description: description,
		accessTier:  accessTier,
		planID:      planID,
		releaseDate: releaseDate,
		createdBy:   createdBy,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructMovie(id uint, title, slug, description string, accessTier AccessTier,
	planID *uint, durationMinutes int, posterURL string, viewCount uint64,
	releaseDate time.Time, createdBy uint, createdAt, updatedAt time.Time) (*Movie, error) {

	if id == 0 {
		return nil, fmt.Errorf("movie ID cannot be zero")
	}
	if !accessTier.IsValid() {
		return nil, fmt.Errorf("invalid access tier: %s", accessTier)
	}

	return &Movie{
		id:              id,
		title:           title,
		slug:            slug,
		description:     description,
		accessTier:      accessTier,
		planID:          planID,
		durationMinutes: durationMinutes,
		posterURL:       posterURL,
		viewCount:       viewCount,
		releaseDate:     releaseDate,
		createdBy:       createdBy,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (m *Movie) ID() uint {
	return m.id
}

func (m *Movie) SetID(id uint) error {
	if m.id != 0 {
		return fmt.Errorf("movie ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("movie ID cannot be zero")
	}
	m.id = id
	return nil
}

func (m *Movie) Title() string {
	return m.title
}

func (m *Movie) Slug() string {
	return m.slug
}

func (m *Movie) Description() string {
	return m.description
}

func (m *Movie) AccessTier() AccessTier {
	return m.accessTier
}

// IsPaid reports whether playback requires an entitlement.
func (m *Movie) IsPaid() bool {
	return m.accessTier == AccessPaid
}

func (m *Movie) PlanID() *uint {
	return m.planID
}

func (m *Movie) DurationMinutes() int {
	return m.durationMinutes
}

// SetDuration records the probed duration once the pipeline knows it.
func (m *Movie) SetDuration(minutes int) {
	m.durationMinutes = minutes
	m.updatedAt = time.Now()
}

func (m *Movie) PosterURL() string {
	return m.posterURL
}

func (m *Movie) SetPosterURL(url string) {
	m.posterURL = url
	m.updatedAt = time.Now()
}

func (m *Movie) ViewCount() uint64 {
	return m.viewCount
}

func (m *Movie) ReleaseDate() time.Time {
	return m.releaseDate
}

func (m *Movie) CreatedBy() uint {
	return m.createdBy
}

func (m *Movie) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Movie) UpdatedAt() time.Time {
	return m.updatedAt
}
