package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/openshop/backend/internal/domain/promotion"
	"github.com/openshop/backend/internal/domain/shared"
	"github.com/openshop/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// CouponResolver implements promotion.CouponService: it resolves coupon
// codes through a cache-backed lookup and enforces expiry and usage
// limits. Invalid codes resolve to nil without error so the best-value
// selection can simply skip the gated promotion.
type CouponResolver struct {
	coupons promotion.CouponRepository
	cache   cache.CouponCache
	logger  *zap.Logger
}

// NewCouponResolver creates a coupon resolver. The cache is optional.
func NewCouponResolver(coupons promotion.CouponRepository, couponCache cache.CouponCache, logger *zap.Logger) *CouponResolver {
	return &CouponResolver{
		coupons: coupons,
		cache:   couponCache,
		logger:  logger,
	}
}

// FindValidCoupon implements promotion.CouponService
func (r *CouponResolver) FindValidCoupon(ctx context.Context, code, customerEmail string) (*promotion.Coupon, error) {
	coupon, err := r.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, nil
	}

	if coupon.IsExpired(time.Now()) || coupon.IsExhausted() {
		return nil, nil
	}

	if coupon.UsageLimitPerCustomer > 0 {
		count, err := r.coupons.CountUsageByCustomer(ctx, code, customerEmail)
		if err != nil {
			return nil, err
		}
		if count >= coupon.UsageLimitPerCustomer {
			return nil, nil
		}
	}

	return coupon, nil
}

func (r *CouponResolver) lookup(ctx context.Context, code string) (*promotion.Coupon, error) {
	if r.cache != nil {
		if coupon, ok := r.cache.Get(ctx, code); ok {
			return coupon, nil
		}
	}

	coupon, err := r.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, coupon)
	}
	return coupon, nil
}
