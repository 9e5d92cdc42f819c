package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"devconnector/internal/config"
	"devconnector/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	postsKey      = "posts:all"
	generationKey = "posts:gen"
)

var errStaleGeneration = errors.New("posts cache generation moved")

// PostCache holds the full post list served by GET /api/posts.
//
// Every Invalidate bumps a generation counter. A list read from the store is
// only cached when the generation it was read under is still current, so a
// mutation that commits during a fill is never hidden behind the old list.
type PostCache interface {
	GetPosts(ctx context.Context) ([]models.Post, bool, error)
	Generation(ctx context.Context) (int64, error)
	// SetPosts stores posts unless the generation has moved past gen.
	SetPosts(ctx context.Context, gen int64, posts []models.Post) error
	Invalidate(ctx context.Context) error
}

type RedisPostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisPostCache(client *redis.Client, ttl time.Duration) *RedisPostCache {
	return &RedisPostCache{client: client, ttl: ttl}
}

func (c *RedisPostCache) GetPosts(ctx context.Context) ([]models.Post, bool, error) {
	data, err := c.client.Get(ctx, postsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read posts cache: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false, fmt.Errorf("failed to decode posts cache: %w", err)
	}

	return posts, true, nil
}

func (c *RedisPostCache) Generation(ctx context.Context) (int64, error) {
	return readGeneration(ctx, c.client)
}

func (c *RedisPostCache) SetPosts(ctx context.Context, gen int64, posts []models.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode posts cache: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, postsKey, data, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	// an invalidation won the race; the list we hold is already outdated
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write posts cache: %w", err)
	}

	return nil
}

func (c *RedisPostCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, postsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate posts cache: %w", err)
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, g stringGetter) (int64, error) {
	gen, err := g.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read posts cache generation: %w", err)
	}
	return gen, nil
}

// NoopPostCache is used when Redis is disabled.
type NoopPostCache struct{}

func (NoopPostCache) GetPosts(context.Context) ([]models.Post, bool, error) {
	return nil, false, nil
}

func (NoopPostCache) Generation(context.Context) (int64, error) {
	return 0, nil
}

func (NoopPostCache) SetPosts(context.Context, int64, []models.Post) error {
	return nil
}

func (NoopPostCache) Invalidate(context.Context) error {
	return nil
}
