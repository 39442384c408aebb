package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/metrics"
	"github.com/godilite/mgnrega-dashboard/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// cachedValue wraps a cached payload with the time it was fetched so hits
// can decide whether a background refresh is due.
type cachedValue[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// addTTLJitter extends ttl by up to 10% so entries written together do not
// expire together.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(int64(ttl)/10+1))
}

// shareFetch runs fn at most once per key among concurrent callers. fn runs
// detached from the caller's cancellation so one abandoned request cannot fail
// the others waiting on it; each caller still stops waiting when its own ctx ends.
func shareFetch[T any](ctx context.Context, sf *singleflight.Group, key string, fn FetchFunc[T]) (T, error) {
	var zero T

	ch := sf.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		value, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("type mismatch for key %q", key)
		}
		return value, nil
	}
}

func storeInBackground[T any](c Cacher, key string, value T, ttl time.Duration, logger *zap.Logger) {
	go func() {
		setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
		defer cancel()

		ttlWithJitter := addTTLJitter(ttl)
		entry := cachedValue[T]{Value: value, FetchedAt: time.Now().UTC()}
		if err := c.Set(setCtx, key, entry, ttlWithJitter); err != nil {
			logger.Warn("failed to populate cache", zap.String("key", key), zap.Error(err))
			return
		}
		logger.Debug("cache populated", zap.String("key", key), zap.Duration("ttl", ttlWithJitter))
	}()
}

func triggerBackgroundRefresh[T any](
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) {
	go func() {
		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}

			setCtx, cancelSet := context.WithTimeout(context.Background(), defaultSetTimeout)
			defer cancelSet()

			entry := cachedValue[T]{Value: value, FetchedAt: time.Now().UTC()}
			if err := c.Set(setCtx, key, entry, addTTLJitter(ttl)); err != nil {
				logger.Warn("failed to update cache in background", zap.String("key", key), zap.Error(err))
			} else {
				logger.Debug("cache refreshed in background", zap.String("key", key))
			}
			return value, nil
		})
	}()
}

// FindAndCache implements read-through caching with singleflight and
// refresh-ahead: a hit older than half the TTL is served and refreshed in the
// background.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached cachedValue[T]
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.RecordsCacheTotal.WithLabelValues("hit").Inc()
		logger.Debug("cache hit", zap.String("key", key))
		if time.Since(cached.FetchedAt) > ttl/2 {
			triggerBackgroundRefresh(c, sf, key, ttl, logger, fn)
		}
		return cached.Value, nil

	case errors.Is(err, cache.ErrMiss):
		metrics.RecordsCacheTotal.WithLabelValues("miss").Inc()
		logger.Debug("cache miss", zap.String("key", key))

	default:
		metrics.RecordsCacheTotal.WithLabelValues("error").Inc()
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	return shareFetch(ctx, sf, key, func(fetchCtx context.Context) (T, error) {
		value, err := fn(fetchCtx)
		if err != nil {
			return zero, err
		}
		storeInBackground(c, key, value, ttl, logger)
		return value, nil
	})
}
