package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/compress"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	gapAnalysisGenerationKey = "gap_analysis:generation"
	defaultTTL               = time.Hour
)

// gapAnalysisKey scopes a result to the graph generation it was computed for,
// bumping the generation orphans every older entry until it expires.
func gapAnalysisKey(generation int64, names []string) (string, error) {
	encoded, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("gap_analysis:%d:%s", generation, encoded), nil
}

// NewRedisClient connects to the redis server at url, e.g. redis://localhost:6379/0.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

var _ GapAnalysisCache = (*RedisGapAnalysisCache)(nil)

type RedisGapAnalysisCache struct {
	client  *redis.Client
	encoder compress.Compress
	ttl     time.Duration
}

func NewRedisGapAnalysisCache(client *redis.Client, encoder compress.Compress, ttl time.Duration) *RedisGapAnalysisCache {
	if encoder == nil {
		encoder = compress.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &RedisGapAnalysisCache{client: client, encoder: encoder, ttl: ttl}
}

func (r *RedisGapAnalysisCache) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, gapAnalysisGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *RedisGapAnalysisCache) Get(ctx context.Context, names []string) ([]defs.Document, bool, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return nil, false, err
	}

	key, err := gapAnalysisKey(gen, names)
	if err != nil {
		return nil, false, err
	}

	buf, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	data, err := r.encoder.Decode(buf)
	if err != nil {
		return nil, false, err
	}

	var docs []defs.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, false, err
	}

	return docs, true, nil
}

func (r *RedisGapAnalysisCache) Set(ctx context.Context, names []string, docs []defs.Document) error {
	gen, err := r.generation(ctx)
	if err != nil {
		return err
	}

	key, err := gapAnalysisKey(gen, names)
	if err != nil {
		return err
	}

	marshal, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	data, err := r.encoder.Encode(marshal)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisGapAnalysisCache) Invalidate(ctx context.Context) error {
	gen, err := r.client.Incr(ctx, gapAnalysisGenerationKey).Result()
	if err != nil {
		return err
	}

	logrus.Debugf("gap analysis cache moved to generation %d", gen)
	return nil
}
