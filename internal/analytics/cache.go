package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adaptgrant/pkg/types"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "adaptgrant:analytics:"

func NewRedis(config *types.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         config.RedisAddr,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

func cacheKey(report string) string {
	return keyPrefix + report
}

// errCacheMiss is returned by load when the key is absent.
var errCacheMiss = errors.New("analytics cache miss")

func (s *Service) load(ctx context.Context, report string, out any) error {
	if s.redis == nil {
		return errCacheMiss
	}

	data, err := s.redis.Get(ctx, cacheKey(report)).Bytes()
	if errors.Is(err, redis.Nil) {
		return errCacheMiss
	}
	if err != nil {
		return fmt.Errorf("read cached %s report: %w", report, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode cached %s report: %w", report, err)
	}

	return nil
}

func (s *Service) store(ctx context.Context, report string, value any) error {
	if s.redis == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s report: %w", report, err)
	}

	return s.redis.Set(ctx, cacheKey(report), data, s.ttl).Err()
}

// cached serves report from Redis when present and computes and stores it
// otherwise. Redis failures are logged and fall through to compute.
func cached[T any](ctx context.Context, s *Service, report string, compute func(ctx context.Context) (T, error)) (T, error) {
	var value T

	err := s.load(ctx, report, &value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, errCacheMiss) {
		s.logger.WithError(err).WithField("report", report).Warn("analytics cache unavailable, computing directly")
	}

	value, err = compute(ctx)
	if err != nil {
		return value, err
	}

	if err := s.store(ctx, report, value); err != nil {
		s.logger.WithError(err).WithField("report", report).Warn("failed to cache analytics report")
	}

	return value, nil
}

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}

	keys := make([]string, 0, len(Reports))
	for _, report := range Reports {
		keys = append(keys, cacheKey(report))
	}

	return s.redis.Del(ctx, keys...).Err()
}
