package catalog

import (
	"bytes"
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmedia "kinora/internal/application/media"
	"kinora/internal/application/playback"
	"kinora/internal/domain/catalog"
	"kinora/internal/domain/media"
	"kinora/internal/domain/subscription"
	"kinora/internal/infrastructure/jobs"
	"kinora/internal/infrastructure/storage"
	"kinora/internal/shared/config"
	"kinora/internal/shared/logger"
)

type memMovieRepo struct {
	catalog.MovieRepository
	mu     sync.Mutex
	nextID uint
	movies map[uint]*catalog.Movie
}

func newMemMovieRepo() *memMovieRepo {
	return &memMovieRepo{nextID: 1, movies: make(map[uint]*catalog.Movie)}
}

func (r *memMovieRepo) Create(ctx context.Context, movie *catalog.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := movie.SetID(r.nextID); err != nil {
		return err
	}
	r.movies[r.nextID] = movie
	r.nextID++
	return nil
}

func (r *memMovieRepo) GetByID(ctx context.Context, id uint) (*catalog.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.movies[id], nil
}

func (r *memMovieRepo) GetBySlug(ctx context.Context, slug string) (*catalog.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Slug() == slug {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMovieRepo) List(ctx context.Context, filter catalog.MovieFilter) ([]*catalog.Movie, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*catalog.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		if filter.AccessTier != nil && m.AccessTier() != *filter.AccessTier {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *memMovieRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	m, _ := r.GetBySlug(ctx, slug)
	return m != nil, nil
}

func (r *memMovieRepo) UpdateDuration(ctx context.Context, id uint, minutes int) error {
	return nil
}

func (r *memMovieRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.movies, id)
	return nil
}

type memRenditionRepo struct {
	mu   sync.Mutex
	rows map[uint][]*media.Rendition
}

func newMemRenditionRepo() *memRenditionRepo {
	return &memRenditionRepo{rows: make(map[uint][]*media.Rendition)}
}

func (r *memRenditionRepo) Upsert(ctx context.Context, rendition *media.Rendition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rendition.MovieID()] = append(r.rows[rendition.MovieID()], rendition)
	return nil
}

func (r *memRenditionRepo) GetByMovieAndQuality(ctx context.Context, movieID uint, quality media.Quality, language string) (*media.Rendition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rend := range r.rows[movieID] {
		if rend.Quality() == quality {
			return rend, nil
		}
	}
	return nil, nil
}

func (r *memRenditionRepo) ListByMovieID(ctx context.Context, movieID uint) ([]*media.Rendition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[movieID], nil
}

func (r *memRenditionRepo) DeleteByMovieID(ctx context.Context, movieID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, movieID)
	return nil
}

type memViewCache struct {
	mu     sync.Mutex
	counts map[uint]uint64
}

func newMemViewCache() *memViewCache {
	return &memViewCache{counts: make(map[uint]uint64)}
}

func (c *memViewCache) IncrView(ctx context.Context, movieID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[movieID]++
	return nil
}

func (c *memViewCache) GetPendingViews(ctx context.Context, movieID uint) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[movieID], nil
}

func (c *memViewCache) FlushToDatabase(ctx context.Context) error {
	return nil
}

type stubSubscriptionRepo struct {
	subscription.SubscriptionRepository
	active *subscription.Subscription
}

func (f *stubSubscriptionRepo) GetActiveByProfileID(ctx context.Context, profileID uint) (*subscription.Subscription, error) {
	return f.active, nil
}

type stubPlanRepo struct {
	subscription.PlanRepository
	plans map[uint]*subscription.Plan
}

func (f *stubPlanRepo) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	return f.plans[id], nil
}

type stubProber struct {
	info *media.SourceInfo
}

func (p *stubProber) Probe(ctx context.Context, path string) (*media.SourceInfo, error) {
	return p.info, nil
}

type stubEncoder struct{}

func (e *stubEncoder) Encode(ctx context.Context, sourcePath, outputPath string, rung media.Rung) error {
	return nil
}

type fixture struct {
	service    *MovieService
	movieRepo  *memMovieRepo
	renditions *memRenditionRepo
	views      *memViewCache
	dispatcher *jobs.Dispatcher
	store      *storage.LocalStore
	subs       *stubSubscriptionRepo
	plans      *stubPlanRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewLogger()
	mediaCfg := &config.MediaConfig{
		UploadRoot:      t.TempDir(),
		PublicPrefix:    "/uploads",
		DefaultLanguage: "uzbek",
	}
	store := storage.NewLocalStore(mediaCfg, log)

	movieRepo := newMemMovieRepo()
	renditions := newMemRenditionRepo()
	views := newMemViewCache()

	subs := &stubSubscriptionRepo{}
	plans := &stubPlanRepo{plans: map[uint]*subscription.Plan{}}
	resolver := playback.NewEntitlementResolver(subs, plans, log)

	pipeline := appmedia.NewPipeline(
		&stubProber{info: &media.SourceInfo{Height: 480, DurationSeconds: 600}},
		&stubEncoder{},
		store, renditions, movieRepo, mediaCfg, log,
	)

	dispatcher := jobs.NewDispatcher(&config.WorkerConfig{TranscodeWorkers: 1, QueueSize: 4}, log)
	dispatcher.Start()
	t.Cleanup(dispatcher.Shutdown)

	service := NewMovieService(movieRepo, renditions, resolver, pipeline,
		dispatcher, store, views, mediaCfg, log)

	return &fixture{
		service:    service,
		movieRepo:  movieRepo,
		renditions: renditions,
		views:      views,
		dispatcher: dispatcher,
		store:      store,
		subs:       subs,
		plans:      plans,
	}
}

func (f *fixture) seedSubscriber(t *testing.T, profileID, planID uint, qualities ...media.Quality) playback.Viewer {
	t.Helper()
	sub, err := subscription.NewSubscription(profileID, planID, 30)
	require.NoError(t, err)
	f.subs.active = sub

	plan, err := subscription.ReconstructPlan(planID, "Basic", "basic", 10000, 30,
		qualities, "active", time.Now(), time.Now())
	require.NoError(t, err)
	f.plans.plans[planID] = plan

	return playback.Viewer{ProfileID: &profileID}
}

func uploadFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&body, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func (f *fixture) seedMovie(t *testing.T, tier catalog.AccessTier, planID *uint, qualities ...media.Quality) *catalog.Movie {
	t.Helper()
	movie, err := catalog.NewMovie("Seeded Movie", "seeded-movie", "", tier, planID, time.Now(), 1)
	require.NoError(t, err)
	require.NoError(t, f.movieRepo.Create(context.Background(), movie))

	for _, q := range qualities {
		rendition, err := media.NewRendition(movie.ID(), q, "uzbek",
			f.store.RenditionURL(movie.Slug(), q))
		require.NoError(t, err)
		require.NoError(t, f.renditions.Upsert(context.Background(), rendition))
	}
	return movie
}

func TestCreateSchedulesProcessing(t *testing.T) {
	f := newFixture(t)

	movie, err := f.service.Create(context.Background(), CreateMovieInput{
		Title:       "Dune Part Two",
		Description: "Desert politics",
		AccessTier:  catalog.AccessFree,
		ReleaseDate: time.Now(),
		CreatedBy:   1,
		Video:       uploadFile(t, "dune.mp4", []byte("video-bytes")),
	})
	require.NoError(t, err)

	assert.Equal(t, "dune-part-two", movie.Slug())
	assert.NotZero(t, movie.ID())

	// The pipeline runs asynchronously; renditions appear once it finishes.
	assert.Eventually(t, func() bool {
		rows, _ := f.renditions.ListByMovieID(context.Background(), movie.ID())
		return len(rows) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateDisambiguatesSlugCollision(t *testing.T) {
	f := newFixture(t)
	f.seedMovie(t, catalog.AccessFree, nil)

	movie, err := f.service.Create(context.Background(), CreateMovieInput{
		Title:       "Seeded Movie",
		AccessTier:  catalog.AccessFree,
		ReleaseDate: time.Now(),
		CreatedBy:   1,
		Video:       uploadFile(t, "again.mp4", []byte("video-bytes")),
	})
	require.NoError(t, err)

	assert.NotEqual(t, "seeded-movie", movie.Slug())
	assert.Contains(t, movie.Slug(), "seeded-movie-")
}

func TestCreateRejectsPaidWithoutPlan(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), CreateMovieInput{
		Title:       "Premium Film",
		AccessTier:  catalog.AccessPaid,
		ReleaseDate: time.Now(),
		CreatedBy:   1,
		Video:       uploadFile(t, "film.mp4", []byte("video-bytes")),
	})
	require.Error(t, err)
}

func TestGetFileAutoForFreeMovie(t *testing.T) {
	f := newFixture(t)
	movie := f.seedMovie(t, catalog.AccessFree, nil,
		media.QualityP240, media.QualityP720, media.QualityP480)

	file, err := f.service.GetFile(context.Background(), movie.ID(), playback.QualityAuto, playback.Viewer{})
	require.NoError(t, err)

	assert.Equal(t, media.QualityP720, file.Quality)
	assert.Equal(t, "/uploads/movies/seeded-movie/p720.mp4", file.FileURL)
}

func TestGetFilePaidMovieAnonymousDenied(t *testing.T) {
	f := newFixture(t)
	planID := uint(1)
	movie := f.seedMovie(t, catalog.AccessPaid, &planID, media.QualityP480)

	_, err := f.service.GetFile(context.Background(), movie.ID(), playback.QualityAuto, playback.Viewer{})
	assert.ErrorIs(t, err, playback.ErrAccessDenied)
}

func TestGetBySlugCountsViewAndExposesFiles(t *testing.T) {
	f := newFixture(t)
	movie := f.seedMovie(t, catalog.AccessFree, nil,
		media.QualityP240, media.QualityP720)

	detail, err := f.service.GetBySlug(context.Background(), movie.Slug(), playback.Viewer{})
	require.NoError(t, err)

	assert.Len(t, detail.Renditions, 2)
	require.NotNil(t, detail.MaxQuality)
	assert.Equal(t, media.QualityP720, *detail.MaxQuality)

	views, _ := f.views.GetPendingViews(context.Background(), movie.ID())
	assert.Equal(t, uint64(1), views)
}

func TestGetBySlugHidesFilesOnPaidMovieForAnonymous(t *testing.T) {
	f := newFixture(t)
	planID := uint(1)
	movie := f.seedMovie(t, catalog.AccessPaid, &planID, media.QualityP480)

	detail, err := f.service.GetBySlug(context.Background(), movie.Slug(), playback.Viewer{})
	require.NoError(t, err)

	// Metadata stays public, the file list does not.
	assert.Empty(t, detail.Renditions)
	assert.Nil(t, detail.MaxQuality)

	views, _ := f.views.GetPendingViews(context.Background(), movie.ID())
	assert.Equal(t, uint64(1), views)
}

func TestGetBySlugBoundsFreeTitleFilesToPlan(t *testing.T) {
	f := newFixture(t)
	movie := f.seedMovie(t, catalog.AccessFree, nil,
		media.QualityP1080, media.QualityP240)
	viewer := f.seedSubscriber(t, 10, 3, media.QualityP240)

	detail, err := f.service.GetBySlug(context.Background(), movie.Slug(), viewer)
	require.NoError(t, err)

	require.Len(t, detail.Renditions, 1)
	assert.Equal(t, media.QualityP240, detail.Renditions[0].Quality())
	require.NotNil(t, detail.MaxQuality)
	assert.Equal(t, media.QualityP240, *detail.MaxQuality)
}

func TestListHidesPaidTitlesFromAnonymous(t *testing.T) {
	f := newFixture(t)
	f.seedMovie(t, catalog.AccessFree, nil)

	planID := uint(1)
	paid, err := catalog.NewMovie("Paid Movie", "paid-movie", "",
		catalog.AccessPaid, &planID, time.Now(), 1)
	require.NoError(t, err)
	require.NoError(t, f.movieRepo.Create(context.Background(), paid))

	movies, total, err := f.service.List(context.Background(), catalog.MovieFilter{}, playback.Viewer{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, catalog.AccessFree, movies[0].AccessTier())

	movies, total, err = f.service.List(context.Background(), catalog.MovieFilter{}, playback.Viewer{IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, movies, 2)
}

func TestGetFileExplicitMissingTier(t *testing.T) {
	f := newFixture(t)
	movie := f.seedMovie(t, catalog.AccessFree, nil, media.QualityP480)

	_, err := f.service.GetFile(context.Background(), movie.ID(), media.QualityP4K, playback.Viewer{})
	assert.ErrorIs(t, err, playback.ErrRenditionNotFound)
}

func TestAttachRenditionStoresFileAndRow(t *testing.T) {
	f := newFixture(t)
	movie := f.seedMovie(t, catalog.AccessFree, nil)

	rendition, err := f.service.AttachRendition(context.Background(), movie.ID(),
		media.QualityP1080, "", uploadFile(t, "p1080.mp4", []byte("encoded-bytes")))
	require.NoError(t, err)

	assert.Equal(t, media.QualityP1080, rendition.Quality())
	assert.Equal(t, "uzbek", rendition.Language())
	assert.Equal(t, "/uploads/movies/seeded-movie/p1080.mp4", rendition.FileURL())

	rows, err := f.renditions.ListByMovieID(context.Background(), movie.ID())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.FileExists(t, f.store.FilePath(rendition.FileURL()))
}

func TestAttachRenditionRejectsBusyTitle(t *testing.T) {
	f := newFixture(t)
	movie := f.seedMovie(t, catalog.AccessFree, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, f.dispatcher.Submit(jobs.Job{
		MovieID: movie.ID(),
		Run: func(ctx context.Context) {
			close(started)
			<-release
		},
	}))
	<-started
	defer close(release)

	_, err := f.service.AttachRendition(context.Background(), movie.ID(),
		media.QualityP480, "", uploadFile(t, "p480.mp4", []byte("encoded-bytes")))
	assert.ErrorIs(t, err, jobs.ErrTitleBusy)
}

func TestDeleteRemovesRowsAndFiles(t *testing.T) {
	f := newFixture(t)
	movie := f.seedMovie(t, catalog.AccessFree, nil, media.QualityP240)

	require.NoError(t, f.service.Delete(context.Background(), movie.ID()))

	gone, err := f.movieRepo.GetByID(context.Background(), movie.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)

	rows, err := f.renditions.ListByMovieID(context.Background(), movie.ID())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteMissingMovie(t *testing.T) {
	f := newFixture(t)
	err := f.service.Delete(context.Background(), 404)
	require.Error(t, err)
}
