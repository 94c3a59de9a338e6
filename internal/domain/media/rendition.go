package media

import (
	"fmt"
	"time"
)

// Rendition is one encoded output file for one movie at one quality tier.
// At most one rendition exists per (movie, quality, language); re-processing
// replaces the file URL instead of adding rows.
type Rendition struct {
	id        uint
	movieID   uint
	quality   Quality
	language  string
	fileURL   string
	createdAt time.Time
	updatedAt time.Time
}

func NewRendition(movieID uint, quality Quality, language, fileURL string) (*Rendition, error) {
	if movieID == 0 {
		return nil, fmt.Errorf("rendition movie ID is required")
	}
	if !quality.IsValid() {
		return nil, fmt.Errorf("invalid rendition quality: %s", quality)
	}
	if language == "" {
		return nil, fmt.Errorf("rendition language is required")
	}
	if fileURL == "" {
		return nil, fmt.Errorf("rendition file URL is required")
	}

	now := time.Now()
	return &Rendition{
		movieID:   movieID,
		quality:   quality,
		language:  language,
		fileURL:   fileURL,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructRendition(id, movieID uint, quality Quality, language, fileURL string,
	createdAt, updatedAt time.Time) (*Rendition, error) {

	if id == 0 {
		return nil, fmt.Errorf("rendition ID cannot be zero")
	}
	if !quality.IsValid() {
		return nil, fmt.Errorf("invalid rendition quality: %s", quality)
	}

	return &Rendition{
		id:        id,
		movieID:   movieID,
		quality:   quality,
		language:  language,
		fileURL:   fileURL,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (r *Rendition) ID() uint {
	return r.id
}

func (r *Rendition) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("rendition ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("rendition ID cannot be zero")
	}
	r.id = id
	return nil
}

func (r *Rendition) MovieID() uint {
	return r.movieID
}

func (r *Rendition) Quality() Quality {
	return r.quality
}

func (r *Rendition) Language() string {
	return r.language
}

func (r *Rendition) FileURL() string {
	return r.fileURL
}

func (r *Rendition) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Rendition) UpdatedAt() time.Time {
	return r.updatedAt
}

// ReplaceFile points the rendition at a newly encoded file.
func (r *Rendition) ReplaceFile(fileURL string) error {
	if fileURL == "" {
		return fmt.Errorf("rendition file URL is required")
	}
	r.fileURL = fileURL
	r.updatedAt = time.Now()
	return nil
}

// BestQuality returns the highest tier present among the given renditions,
// independent of storage order. The second return is false when the slice is
// empty.
func BestQuality(renditions []*Rendition) (Quality, bool) {
	if len(renditions) == 0 {
		return "", false
	}
	best := renditions[0].Quality()
	for _, r := range renditions[1:] {
		if r.Quality().BetterThan(best) {
			best = r.Quality()
		}
	}
	return best, true
}
