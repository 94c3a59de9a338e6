// Package media drives the rendition pipeline: probe the uploaded source,
// plan the encoding ladder, encode tier by tier and reconcile the catalog.
package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kinora/internal/domain/catalog"
	"kinora/internal/domain/media"
	"kinora/internal/shared/config"
	"kinora/internal/shared/logger"
)

// PipelineState tracks how far one processing run got.
type PipelineState string

const (
	StateReceived   PipelineState = "RECEIVED"
	StateInspected  PipelineState = "INSPECTED"
	StatePlanned    PipelineState = "PLANNED"
	StateEncoding   PipelineState = "ENCODING"
	StateReconciled PipelineState = "RECONCILED"
	StateCleanedUp  PipelineState = "CLEANED_UP"
)

// RenditionStore is the slice of the storage layer the pipeline needs.
type RenditionStore interface {
	RenditionPath(slug string, quality media.Quality) (string, error)
	RenditionURL(slug string, quality media.Quality) string
	RemoveSource(sourcePath string) error
	RemovePartial(outputPath string)
}

// ProcessRequest identifies one claimed upload to run through the ladder.
type ProcessRequest struct {
	MovieID    uint
	Slug       string
	SourcePath string
	Language   string
}

// ProcessResult reports what one run produced.
type ProcessResult struct {
	State           PipelineState
	Produced        []media.Quality
	Failed          []media.Quality
	DurationMinutes int
}

// Pipeline runs one upload through probe, plan, encode and reconcile.
// The claimed source file is removed exactly once no matter where the run
// stops; produced renditions are kept even when a later tier fails.
type Pipeline struct {
	prober        media.Prober
	encoder       media.Encoder
	store         RenditionStore
	renditionRepo media.RenditionRepository
	movieRepo     catalog.MovieRepository
	cfg           *config.MediaConfig
	logger        logger.Interface
}

func NewPipeline(
	prober media.Prober,
	encoder media.Encoder,
	store RenditionStore,
	renditionRepo media.RenditionRepository,
	movieRepo catalog.MovieRepository,
	cfg *config.MediaConfig,
	logger logger.Interface,
) *Pipeline {
	return &Pipeline{
		prober:        prober,
		encoder:       encoder,
		store:         store,
		renditionRepo: renditionRepo,
		movieRepo:     movieRepo,
		cfg:           cfg,
		logger:        logger.With("component", "media.pipeline"),
	}
}

// Process executes the full run. Each successfully encoded tier is recorded
// in the catalog immediately, so a failure mid-ladder still leaves the
// earlier tiers playable.
func (p *Pipeline) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	result := &ProcessResult{State: StateReceived}
	defer func() {
		if err := p.store.RemoveSource(req.SourcePath); err != nil {
			p.logger.Warnw("failed to remove claimed source",
				"movie_id", req.MovieID,
				"path", req.SourcePath,
				"error", err)
		} else {
			result.State = StateCleanedUp
		}
	}()

	p.logger.Infow("processing started",
		"movie_id", req.MovieID,
		"slug", req.Slug,
		"source", req.SourcePath)

	info, err := p.prober.Probe(ctx, req.SourcePath)
	if err != nil {
		p.logger.Errorw("source inspection failed", "movie_id", req.MovieID, "error", err)
		return result, fmt.Errorf("inspect source: %w", err)
	}
	result.State = StateInspected
	result.DurationMinutes = info.DurationSeconds / 60

	plan := media.PlanLadder(info.Height)
	if len(plan) == 0 {
		return result, media.ErrEmptyPlan
	}
	result.State = StatePlanned
	p.logger.Infow("ladder planned",
		"movie_id", req.MovieID,
		"source_height", info.Height,
		"rungs", len(plan))

	language := req.Language
	if language == "" {
		language = p.cfg.DefaultLanguage
	}

	result.State = StateEncoding
	var firstEncodeErr error
	for _, rung := range plan {
		if ctx.Err() != nil {
			firstEncodeErr = ctx.Err()
			break
		}

		if err := p.encodeTier(ctx, req, rung, language); err != nil {
			result.Failed = append(result.Failed, rung.Quality)
			if firstEncodeErr == nil {
				firstEncodeErr = err
			}
			if p.cfg.AbortOnTierFailure {
				p.logger.Warnw("aborting remaining tiers after failure",
					"movie_id", req.MovieID,
					"failed_quality", rung.Quality.String())
				break
			}
			continue
		}
		result.Produced = append(result.Produced, rung.Quality)
	}

	if result.DurationMinutes > 0 {
		if err := p.movieRepo.UpdateDuration(ctx, req.MovieID, result.DurationMinutes); err != nil {
			p.logger.Warnw("failed to record duration",
				"movie_id", req.MovieID,
				"error", err)
		}
	}
	result.State = StateReconciled

	p.logger.Infow("processing finished",
		"movie_id", req.MovieID,
		"produced", len(result.Produced),
		"failed", len(result.Failed))

	if len(result.Produced) == 0 && firstEncodeErr != nil {
		return result, fmt.Errorf("no renditions produced: %w", firstEncodeErr)
	}
	if firstEncodeErr != nil {
		var encodeErr *media.EncodeError
		if errors.As(firstEncodeErr, &encodeErr) {
			p.logger.Warnw("run completed with partial ladder",
				"movie_id", req.MovieID,
				"first_failure", encodeErr.Quality.String())
		}
	}
	return result, nil
}

// encodeTier produces one rendition file and upserts its catalog row. The
// output file is deleted on failure so a broken file never sits under a
// servable path.
func (p *Pipeline) encodeTier(ctx context.Context, req ProcessRequest, rung media.Rung, language string) error {
	outputPath, err := p.store.RenditionPath(req.Slug, rung.Quality)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	encodeCtx := ctx
	if p.cfg.EncodeTimeoutMin > 0 {
		var cancel context.CancelFunc
		encodeCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.EncodeTimeoutMin)*time.Minute)
		defer cancel()
	}

	if err := p.encoder.Encode(encodeCtx, req.SourcePath, outputPath, rung); err != nil {
		p.store.RemovePartial(outputPath)
		return err
	}

	rendition, err := media.NewRendition(req.MovieID, rung.Quality, language,
		p.store.RenditionURL(req.Slug, rung.Quality))
	if err != nil {
		return fmt.Errorf("build rendition: %w", err)
	}

	if err := p.renditionRepo.Upsert(ctx, rendition); err != nil {
		return fmt.Errorf("record rendition: %w", err)
	}

	p.logger.Infow("rendition produced",
		"movie_id", req.MovieID,
		"quality", rung.Quality.String(),
		"url", rendition.FileURL())
	return nil
}
