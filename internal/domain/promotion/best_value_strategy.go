package promotion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BestValueStrategy selects, among competing buckets of mutually-exclusive
// promotions, the single bucket yielding the greatest cumulative discount
// and applies it. Best deal is the industry standard since it gives the
// customer the lowest possible price; alternative strategies (priority
// based etc.) replace this implementation wholesale.
type BestValueStrategy struct {
	coupons CouponService
	logger  *zap.Logger
}

// NewBestValueStrategy creates a best-value application strategy
func NewBestValueStrategy(coupons CouponService, logger *zap.Logger) *BestValueStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BestValueStrategy{coupons: coupons, logger: logger}
}

// Apply evaluates all buckets against the pricing context and performs the
// actions of the winning bucket. Buckets are independent units of failure:
// an error or panic inside one bucket skips that bucket and the scan
// continues. Equal cumulative discounts keep the earlier bucket.
func (s *BestValueStrategy) Apply(ctx context.Context, buckets [][]PromoTriplet, pctx *Context) error {
	validCoupons, err := s.loadCoupons(ctx, pctx)
	if err != nil {
		return err
	}

	var bestValue []PromoTriplet
	bestDiscountValue := decimal.Zero

	for idx, bucket := range buckets {
		applicable, discountValue, err := s.evaluateBucket(ctx, bucket, pctx, validCoupons)
		if err != nil {
			s.logger.Error("unable to apply best value promotions",
				zap.String("marker", "alert"),
				zap.Int("bucket", idx),
				zap.Error(err),
			)
			continue
		}

		if len(applicable) > 0 && discountValue.GreaterThan(bestDiscountValue) {
			bestDiscountValue = discountValue
			bestValue = applicable
		}
	}

	for _, promo := range bestValue {
		pctx.Promotion = promo.Promotion
		pctx.ActionContext = promo.Promotion.ActionContext
		pctx.AppliedCode = s.appliedCode(promo, validCoupons[promo.Promotion.ID])

		if err := promo.Action.Perform(pctx); err != nil {
			return fmt.Errorf("perform promotion %s: %w", promo.Promotion.Code, err)
		}
	}

	return nil
}

// evaluateBucket accumulates the bucket's applicable triplets and their
// cumulative discount. It never lets a panic escape the bucket.
func (s *BestValueStrategy) evaluateBucket(ctx context.Context, bucket []PromoTriplet, pctx *Context, validCoupons map[uuid.UUID]*Coupon) (applicable []PromoTriplet, discountValue decimal.Decimal, err error) {
	defer func() {
		if r := recover(); r != nil {
			applicable = nil
			discountValue = decimal.Zero
			err = fmt.Errorf("bucket evaluation panicked: %v", r)
		}
	}()

	discountValue = decimal.Zero
	now := time.Now()

	for _, promo := range bucket {
		if !promo.Promotion.IsActive(now) {
			continue
		}

		pctx.Promotion = promo.Promotion
		pctx.ActionContext = promo.Promotion.ActionContext

		if promo.Promotion.CouponTriggered {
			// Only allow a coupon promotion when a valid coupon is attached
			if _, ok := validCoupons[promo.Promotion.ID]; !ok {
				continue
			}
		}

		// The condition may be heavy, so coupons are checked first
		eligible, err := promo.Condition.IsEligible(ctx, pctx)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !eligible {
			continue
		}

		discount, err := promo.Action.TestDiscountValue(pctx)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if discount.IsPositive() {
			// Only a promotion yielding an actual discount qualifies
			applicable = append(applicable, promo)
			discountValue = discountValue.Add(discount)
		}
	}

	return applicable, discountValue, nil
}

// loadCoupons resolves the cart's coupon codes into valid coupons keyed by
// promotion id
func (s *BestValueStrategy) loadCoupons(ctx context.Context, pctx *Context) (map[uuid.UUID]*Coupon, error) {
	if len(pctx.CouponCodes) == 0 {
		return map[uuid.UUID]*Coupon{}, nil
	}

	coupons := make(map[uuid.UUID]*Coupon, len(pctx.CouponCodes))
	for _, code := range pctx.CouponCodes {
		coupon, err := s.coupons.FindValidCoupon(ctx, code, pctx.CustomerEmail)
		if err != nil {
			return nil, fmt.Errorf("resolve coupon %s: %w", code, err)
		}
		if coupon != nil {
			coupons[coupon.PromotionID] = coupon
		}
	}
	return coupons, nil
}

func (s *BestValueStrategy) appliedCode(promo PromoTriplet, coupon *Coupon) string {
	if promo.Promotion.CouponTriggered && coupon != nil {
		return promo.Promotion.Code + ":" + coupon.Code
	}
	return promo.Promotion.Code
}
