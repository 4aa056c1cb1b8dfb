package cache

import (
	"context"
	"time"

	"github.com/openshop/backend/internal/domain/promotion"
)

// defaultCouponTTL bounds staleness of cached coupon rows. Usage counters
// move on redemption, so entries must expire quickly.
const defaultCouponTTL = 5 * time.Minute

// CouponCache caches coupon lookups by code. A miss is not an error; the
// caller falls through to the repository.
type CouponCache interface {
	// Get returns the cached coupon for a code, or false on miss
	Get(ctx context.Context, code string) (*promotion.Coupon, bool)
	// Set stores a coupon under its code
	Set(ctx context.Context, coupon *promotion.Coupon)
	// Invalidate drops the cached entry for a code
	Invalidate(ctx context.Context, code string)
	// Close releases cache resources
	Close() error
}

// RedisConfig holds connection settings for Redis-backed caches
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}
