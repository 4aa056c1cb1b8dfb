package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openshop/backend/internal/domain/promotion"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCouponCache implements CouponCache using Redis
type RedisCouponCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisCouponCacheOption is a functional option for configuring the cache
type RedisCouponCacheOption func(*RedisCouponCache)

// WithRedisTTL sets the entry TTL
func WithRedisTTL(ttl time.Duration) RedisCouponCacheOption {
	return func(c *RedisCouponCache) {
		c.ttl = ttl
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisCouponCacheOption {
	return func(c *RedisCouponCache) {
		c.logger = logger
	}
}

// NewRedisCouponCache creates a new Redis-based coupon cache
func NewRedisCouponCache(cfg RedisConfig, opts ...RedisCouponCacheOption) (*RedisCouponCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisCouponCache{
		client:     client,
		ownsClient: true,
		ttl:        defaultCouponTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// NewRedisCouponCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisCouponCacheWithClient(client *redis.Client, opts ...RedisCouponCacheOption) *RedisCouponCache {
	cache := &RedisCouponCache{
		client:     client,
		ownsClient: false,
		ttl:        defaultCouponTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func couponKey(code string) string {
	return "coupon:" + code
}

// Get returns the cached coupon for a code, or false on miss
func (c *RedisCouponCache) Get(ctx context.Context, code string) (*promotion.Coupon, bool) {
	data, err := c.client.Get(ctx, couponKey(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("coupon cache read failed", zap.String("code", code), zap.Error(err))
		}
		return nil, false
	}

	var coupon promotion.Coupon
	if err := json.Unmarshal(data, &coupon); err != nil {
		c.logger.Warn("coupon cache entry corrupt", zap.String("code", code), zap.Error(err))
		c.client.Del(ctx, couponKey(code))
		return nil, false
	}
	return &coupon, true
}

// Set stores a coupon under its code
func (c *RedisCouponCache) Set(ctx context.Context, coupon *promotion.Coupon) {
	data, err := json.Marshal(coupon)
	if err != nil {
		c.logger.Warn("coupon not cacheable", zap.String("code", coupon.Code), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, couponKey(coupon.Code), data, c.ttl).Err(); err != nil {
		c.logger.Warn("coupon cache write failed", zap.String("code", coupon.Code), zap.Error(err))
	}
}

// Invalidate drops the cached entry for a code
func (c *RedisCouponCache) Invalidate(ctx context.Context, code string) {
	if err := c.client.Del(ctx, couponKey(code)).Err(); err != nil {
		c.logger.Warn("coupon cache invalidation failed", zap.String("code", code), zap.Error(err))
	}
}

// Close releases the Redis client if this cache owns it
func (c *RedisCouponCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
