// Package cache buffers playback view counts in Redis so every stream
// request does not turn into a MySQL write.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kinora/internal/domain/catalog"
	"kinora/internal/shared/logger"
)

// ViewCache accumulates per-movie view counts and periodically drains
// them into the movie table.
type ViewCache interface {
	IncrView(ctx context.Context, movieID uint) error
	GetPendingViews(ctx context.Context, movieID uint) (uint64, error)
	FlushToDatabase(ctx context.Context) error
}

type RedisViewCache struct {
	client    *redis.Client
	movieRepo catalog.MovieRepository
	logger    logger.Interface
}

func NewRedisViewCache(
	client *redis.Client,
	movieRepo catalog.MovieRepository,
	logger logger.Interface,
) ViewCache {
	return &RedisViewCache{
		client:    client,
		movieRepo: movieRepo,
		logger:    logger,
	}
}

// IncrView atomically increments the pending view counter for a movie.
func (c *RedisViewCache) IncrView(ctx context.Context, movieID uint) error {
	key := viewKey(movieID)

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, key)
	// Expiration prevents orphaned counters if a movie is deleted
	pipe.Expire(ctx, key, 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Errorw("failed to increment view count in redis",
			"movie_id", movieID,
			"error", err,
		)
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	return nil
}

// GetPendingViews returns views counted since the last flush.
func (c *RedisViewCache) GetPendingViews(ctx context.Context, movieID uint) (uint64, error) {
	val, err := c.client.Get(ctx, viewKey(movieID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get pending views: %w", err)
	}

	count, _ := strconv.ParseUint(val, 10, 64)
	return count, nil
}

// FlushToDatabase drains all pending counters into MySQL with atomic
// increments, deleting each key only after its flush succeeded.
func (c *RedisViewCache) FlushToDatabase(ctx context.Context) error {
	c.logger.Debugw("starting view count flush to database")

	flushedCount := 0
	errorCount := 0

	iter := c.client.Scan(ctx, 0, "movie:*:views", 100).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()

		movieID, err := parseMovieIDFromKey(key)
		if err != nil {
			c.logger.Warnw("failed to parse movie id from key", "key", key, "error", err)
			continue
		}

		val, err := c.client.Get(ctx, key).Result()
		if err != nil {
			c.logger.Errorw("failed to get view count from redis", "key", key, "error", err)
			errorCount++
			continue
		}

		delta, _ := strconv.ParseUint(val, 10, 64)
		if delta == 0 {
			c.client.Del(ctx, key)
			continue
		}

		if err := c.movieRepo.IncrementViews(ctx, movieID, delta); err != nil {
			c.logger.Errorw("failed to flush view count to database",
				"movie_id", movieID,
				"delta", delta,
				"error", err,
			)
			errorCount++
			continue
		}

		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.logger.Warnw("failed to delete redis key after flush",
				"key", key,
				"error", err,
			)
		}

		flushedCount++
	}

	if err := iter.Err(); err != nil {
		c.logger.Errorw("error during redis scan", "error", err)
		return fmt.Errorf("scan error: %w", err)
	}

	c.logger.Infow("view count flush completed",
		"flushed_count", flushedCount,
		"error_count", errorCount,
	)

	return nil
}

func viewKey(movieID uint) string {
	return fmt.Sprintf("movie:%d:views", movieID)
}

// parseMovieIDFromKey extracts the movie ID from a view counter key.
// Example: "movie:123:views" -> 123
func parseMovieIDFromKey(key string) (uint, error) {
	var movieID uint
	if _, err := fmt.Sscanf(key, "movie:%d:views", &movieID); err != nil {
		return 0, fmt.Errorf("invalid key format: %s", key)
	}
	return movieID, nil
}
