package cache

import (
	"fmt"
	"time"

	"github.com/openshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CouponCacheFactory creates coupon caches based on configuration
type CouponCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CouponCacheFactoryOption is a functional option for configuring the factory
type CouponCacheFactoryOption func(*CouponCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CouponCacheFactoryOption {
	return func(f *CouponCacheFactory) {
		f.logger = logger
	}
}

// WithTTL sets the entry TTL for created caches
func WithTTL(ttl time.Duration) CouponCacheFactoryOption {
	return func(f *CouponCacheFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) CouponCacheFactoryOption {
	return func(f *CouponCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCouponCacheFactory creates a new factory
func NewCouponCacheFactory(cfg config.RedisConfig, opts ...CouponCacheFactoryOption) *CouponCacheFactory {
	f := &CouponCacheFactory{
		redisConfig:           cfg,
		ttl:                   defaultCouponTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-based coupon cache
func (f *CouponCacheFactory) CreateRedisCache() (CouponCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisCouponCache(redisCfg, WithRedisTTL(f.ttl), WithRedisLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis coupon cache: %w", err)
	}
	return cache, nil
}

// CreateInMemoryCache creates an in-memory coupon cache
func (f *CouponCacheFactory) CreateInMemoryCache() CouponCache {
	return NewInMemoryCouponCache(f.ttl)
}

// CreateCache tries Redis first and falls back to in-memory if Redis is
// unavailable and fallback is allowed
func (f *CouponCacheFactory) CreateCache() (CouponCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis coupon cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for coupon cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory coupon cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
