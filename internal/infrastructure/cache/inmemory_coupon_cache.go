package cache

import (
	"context"
	"sync"
	"time"

	"github.com/openshop/backend/internal/domain/promotion"
)

const cleanupInterval = 30 * time.Second

type couponEntry struct {
	coupon    *promotion.Coupon
	expiresAt time.Time
}

func (e *couponEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryCouponCache implements CouponCache with process-local storage.
// Suitable for single-instance deployments and tests; entries are not
// shared across processes.
type InMemoryCouponCache struct {
	entries sync.Map // map[string]*couponEntry
	ttl     time.Duration
	stopCh  chan struct{}
	once    sync.Once
}

// NewInMemoryCouponCache creates a new in-memory coupon cache
func NewInMemoryCouponCache(ttl time.Duration) *InMemoryCouponCache {
	if ttl <= 0 {
		ttl = defaultCouponTTL
	}
	cache := &InMemoryCouponCache{
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go cache.cleanupExpired()
	return cache
}

// Get returns the cached coupon for a code, or false on miss
func (c *InMemoryCouponCache) Get(_ context.Context, code string) (*promotion.Coupon, bool) {
	value, ok := c.entries.Load(code)
	if !ok {
		return nil, false
	}
	entry := value.(*couponEntry)
	if entry.isExpired() {
		c.entries.Delete(code)
		return nil, false
	}
	return entry.coupon, true
}

// Set stores a coupon under its code
func (c *InMemoryCouponCache) Set(_ context.Context, coupon *promotion.Coupon) {
	c.entries.Store(coupon.Code, &couponEntry{
		coupon:    coupon,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate drops the cached entry for a code
func (c *InMemoryCouponCache) Invalidate(_ context.Context, code string) {
	c.entries.Delete(code)
}

// Close stops the background cleanup goroutine
func (c *InMemoryCouponCache) Close() error {
	c.once.Do(func() {
		close(c.stopCh)
	})
	return nil
}

func (c *InMemoryCouponCache) cleanupExpired() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value interface{}) bool {
				if value.(*couponEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}
