package cbr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/property-insights/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const referenceRateKey = "cbr:reference-rate"

// ErrCacheMiss is returned by a RateCache that holds no fresh value
var ErrCacheMiss = errors.New("cache miss")

// RateSource fetches the reference rate from upstream
type RateSource interface {
	ReferenceRate(ctx context.Context) (models.ReferenceRate, error)
}

// RateCache stores the last fetched reference rate
type RateCache interface {
	Get(ctx context.Context) (models.ReferenceRate, error)
	Set(ctx context.Context, rate models.ReferenceRate, ttl time.Duration) error
}

// RedisRateCache keeps the reference rate in Redis
type RedisRateCache struct {
	rdb *redis.Client
}

// NewRedisRateCache wraps an existing Redis client
func NewRedisRateCache(rdb *redis.Client) *RedisRateCache {
	return &RedisRateCache{rdb: rdb}
}

func (c *RedisRateCache) Get(ctx context.Context) (models.ReferenceRate, error) {
	data, err := c.rdb.Get(ctx, referenceRateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ReferenceRate{}, ErrCacheMiss
	}
	if err != nil {
		return models.ReferenceRate{}, fmt.Errorf("failed to read cached rate: %w", err)
	}
	var rate models.ReferenceRate
	if err := json.Unmarshal(data, &rate); err != nil {
		return models.ReferenceRate{}, fmt.Errorf("failed to decode cached rate: %w", err)
	}
	return rate, nil
}

func (c *RedisRateCache) Set(ctx context.Context, rate models.ReferenceRate, ttl time.Duration) error {
	data, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to encode rate: %w", err)
	}
	if err := c.rdb.Set(ctx, referenceRateKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}

// MemoryRateCache is used when no Redis address is configured
type MemoryRateCache struct {
	mu      sync.Mutex
	rate    models.ReferenceRate
	expires time.Time
	now     func() time.Time
}

// NewMemoryRateCache creates an empty in-process cache
func NewMemoryRateCache() *MemoryRateCache {
	return &MemoryRateCache{now: time.Now}
}

func (c *MemoryRateCache) Get(_ context.Context) (models.ReferenceRate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expires.IsZero() || !c.now().Before(c.expires) {
		return models.ReferenceRate{}, ErrCacheMiss
	}
	return c.rate, nil
}

func (c *MemoryRateCache) Set(_ context.Context, rate models.ReferenceRate, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
	c.expires = c.now().Add(ttl)
	return nil
}

// CachedRateProvider serves the reference rate from cache and falls back to
// the upstream source on a miss
type CachedRateProvider struct {
	source RateSource
	cache  RateCache
	ttl    time.Duration
	log    *logrus.Logger
}

// NewCachedRateProvider combines a source and a cache
func NewCachedRateProvider(source RateSource, cache RateCache, ttl time.Duration, log *logrus.Logger) *CachedRateProvider {
	return &CachedRateProvider{source: source, cache: cache, ttl: ttl, log: log}
}

// ReferenceRate returns the cached rate or fetches a fresh one
func (p *CachedRateProvider) ReferenceRate(ctx context.Context) (models.ReferenceRate, error) {
	rate, err := p.cache.Get(ctx)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		p.log.WithError(err).Warn("Reference rate cache unavailable")
	}
	return p.Refresh(ctx)
}

// Refresh fetches the rate from upstream and stores it in the cache
func (p *CachedRateProvider) Refresh(ctx context.Context) (models.ReferenceRate, error) {
	rate, err := p.source.ReferenceRate(ctx)
	if err != nil {
		return models.ReferenceRate{}, err
	}
	if err := p.cache.Set(ctx, rate, p.ttl); err != nil {
		p.log.WithError(err).Warn("Failed to cache reference rate")
	}
	return rate, nil
}
