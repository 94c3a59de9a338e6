package catalog

import "context"

// MovieFilter narrows List results.
type MovieFilter struct {
	Search     string
	AccessTier *AccessTier
	Page       int
	PageSize   int
}

type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetByID(ctx context.Context, id uint) (*Movie, error)
	GetBySlug(ctx context.Context, slug string) (*Movie, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter MovieFilter) ([]*Movie, int64, error)
	ListAll(ctx context.Context) ([]*Movie, error)
	UpdateDuration(ctx context.Context, id uint, minutes int) error
	IncrementViews(ctx context.Context, id uint, delta uint64) error
	Delete(ctx context.Context, id uint) error
}
