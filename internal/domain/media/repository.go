package media

import "context"

// RenditionRepository persists renditions in the catalog.
type RenditionRepository interface {
	// Upsert writes the rendition, replacing the file URL when a row for the
	// same (movie, quality, language) already exists.
	Upsert(ctx context.Context, rendition *Rendition) error
	GetByMovieAndQuality(ctx context.Context, movieID uint, quality Quality, language string) (*Rendition, error)
	ListByMovieID(ctx context.Context, movieID uint) ([]*Rendition, error)
	DeleteByMovieID(ctx context.Context, movieID uint) error
}
