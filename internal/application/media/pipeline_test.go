package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinora/internal/domain/catalog"
	"kinora/internal/domain/media"
	"kinora/internal/shared/config"
	"kinora/internal/shared/logger"
)

type fakeProber struct {
	info *media.SourceInfo
	err  error
}

func (f *fakeProber) Probe(ctx context.Context, path string) (*media.SourceInfo, error) {
	return f.info, f.err
}

type fakeEncoder struct {
	mu      sync.Mutex
	failing map[media.Quality]bool
	encoded []media.Quality
}

func (f *fakeEncoder) Encode(ctx context.Context, sourcePath, outputPath string, rung media.Rung) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[rung.Quality] {
		return &media.EncodeError{Quality: rung.Quality, Detail: "simulated", Err: errors.New("exit status 1")}
	}
	f.encoded = append(f.encoded, rung.Quality)
	return nil
}

type fakeStore struct {
	mu             sync.Mutex
	removedSources []string
	removedPartial []string
}

func (f *fakeStore) RenditionPath(slug string, quality media.Quality) (string, error) {
	return filepath.Join("/tmp", slug, strings.ToLower(quality.String())+".mp4"), nil
}

func (f *fakeStore) RenditionURL(slug string, quality media.Quality) string {
	return "/uploads/movies/" + slug + "/" + strings.ToLower(quality.String()) + ".mp4"
}

func (f *fakeStore) RemoveSource(sourcePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedSources = append(f.removedSources, sourcePath)
	return nil
}

func (f *fakeStore) RemovePartial(outputPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedPartial = append(f.removedPartial, outputPath)
}

type fakeRenditionRepo struct {
	mu       sync.Mutex
	upserted []*media.Rendition
}

func (f *fakeRenditionRepo) Upsert(ctx context.Context, r *media.Rendition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, r)
	return nil
}

func (f *fakeRenditionRepo) GetByMovieAndQuality(ctx context.Context, movieID uint, quality media.Quality, language string) (*media.Rendition, error) {
	return nil, nil
}

func (f *fakeRenditionRepo) ListByMovieID(ctx context.Context, movieID uint) ([]*media.Rendition, error) {
	return nil, nil
}

func (f *fakeRenditionRepo) DeleteByMovieID(ctx context.Context, movieID uint) error {
	return nil
}

type fakeMovieRepo struct {
	catalog.MovieRepository
	mu              sync.Mutex
	durationUpdates map[uint]int
}

func (f *fakeMovieRepo) UpdateDuration(ctx context.Context, id uint, minutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.durationUpdates == nil {
		f.durationUpdates = make(map[uint]int)
	}
	f.durationUpdates[id] = minutes
	return nil
}

func newTestPipeline(prober *fakeProber, encoder *fakeEncoder, abort bool) (*Pipeline, *fakeStore, *fakeRenditionRepo, *fakeMovieRepo) {
	store := &fakeStore{}
	renditions := &fakeRenditionRepo{}
	movies := &fakeMovieRepo{}
	cfg := &config.MediaConfig{
		AbortOnTierFailure: abort,
		DefaultLanguage:    "uzbek",
	}
	p := NewPipeline(prober, encoder, store, renditions, movies, cfg, logger.NewLogger())
	return p, store, renditions, movies
}

func testRequest() ProcessRequest {
	return ProcessRequest{
		MovieID:    1,
		Slug:       "dune-part-two",
		SourcePath: "/tmp/dune-part-two/original-1.mp4",
	}
}

func TestProcessFullLadder(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{Height: 2160, Width: 3840, DurationSeconds: 7200}}
	encoder := &fakeEncoder{}
	p, store, renditions, movies := newTestPipeline(prober, encoder, true)

	result, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, StateCleanedUp, result.State)
	assert.Equal(t, []media.Quality{
		media.QualityP4K, media.QualityP1080, media.QualityP720,
		media.QualityP480, media.QualityP360, media.QualityP240,
	}, result.Produced)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 120, result.DurationMinutes)

	assert.Len(t, renditions.upserted, 6)
	for _, r := range renditions.upserted {
		assert.Equal(t, uint(1), r.MovieID())
		assert.Equal(t, "uzbek", r.Language())
	}
	assert.Equal(t, 120, movies.durationUpdates[1])
	assert.Equal(t, []string{"/tmp/dune-part-two/original-1.mp4"}, store.removedSources)
}

func TestProcessTinySourceGetsLowestRung(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{Height: 100, Width: 160, DurationSeconds: 60}}
	encoder := &fakeEncoder{}
	p, _, renditions, _ := newTestPipeline(prober, encoder, true)

	result, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, []media.Quality{media.QualityP240}, result.Produced)
	require.Len(t, renditions.upserted, 1)
	assert.Equal(t, media.QualityP240, renditions.upserted[0].Quality())
}

func TestProcessUnreadableSourceStillCleansUp(t *testing.T) {
	prober := &fakeProber{err: media.ErrSourceUnreadable}
	encoder := &fakeEncoder{}
	p, store, renditions, _ := newTestPipeline(prober, encoder, true)

	result, err := p.Process(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrSourceUnreadable)

	assert.Equal(t, StateCleanedUp, result.State)
	assert.Empty(t, renditions.upserted)
	assert.Len(t, store.removedSources, 1)
}

func TestProcessAbortsAfterTierFailure(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{Height: 1080, DurationSeconds: 600}}
	encoder := &fakeEncoder{failing: map[media.Quality]bool{media.QualityP720: true}}
	p, _, renditions, _ := newTestPipeline(prober, encoder, true)

	result, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, []media.Quality{media.QualityP1080}, result.Produced)
	assert.Equal(t, []media.Quality{media.QualityP720}, result.Failed)
	// Rungs below the failed one are not attempted.
	assert.Len(t, renditions.upserted, 1)
}

func TestProcessContinuesPastFailureWhenNotAborting(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{Height: 1080, DurationSeconds: 600}}
	encoder := &fakeEncoder{failing: map[media.Quality]bool{media.QualityP720: true}}
	p, _, _, _ := newTestPipeline(prober, encoder, false)

	result, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, []media.Quality{
		media.QualityP1080, media.QualityP480, media.QualityP360, media.QualityP240,
	}, result.Produced)
	assert.Equal(t, []media.Quality{media.QualityP720}, result.Failed)
}

func TestProcessFailsWhenNothingProduced(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{Height: 240, DurationSeconds: 60}}
	encoder := &fakeEncoder{failing: map[media.Quality]bool{media.QualityP240: true}}
	p, store, _, _ := newTestPipeline(prober, encoder, true)

	result, err := p.Process(context.Background(), testRequest())
	require.Error(t, err)

	var encodeErr *media.EncodeError
	assert.ErrorAs(t, err, &encodeErr)
	assert.Empty(t, result.Produced)
	assert.Len(t, store.removedSources, 1)
	assert.Len(t, store.removedPartial, 1)
}

func TestProcessSkipsDurationWritebackWhenUnknown(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{Height: 480, DurationSeconds: 0}}
	encoder := &fakeEncoder{}
	p, _, _, movies := newTestPipeline(prober, encoder, true)

	_, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Empty(t, movies.durationUpdates)
}
