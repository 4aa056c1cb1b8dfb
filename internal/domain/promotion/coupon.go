package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openshop/backend/internal/domain/shared"
)

// Coupon maps a code to a promotion. Usage limits are enforced by the
// coupon service at lookup time; the aggregate records the counters.
type Coupon struct {
	shared.BaseEntity
	Code                  string    `gorm:"not null;uniqueIndex"`
	PromotionID           uuid.UUID `gorm:"type:uuid;not null;index"`
	UsageLimit            int       `gorm:"not null;default:0"` // 0 means unlimited
	UsageLimitPerCustomer int       `gorm:"not null;default:0"`
	UsageCount            int       `gorm:"not null;default:0"`
	ExpiresAt             *time.Time
}

// TableName returns the table name for GORM
func (Coupon) TableName() string {
	return "promotion_coupons"
}

// NewCoupon creates a coupon for a promotion
func NewCoupon(code string, promotionID uuid.UUID, usageLimit, usageLimitPerCustomer int) (*Coupon, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Coupon code cannot be empty")
	}
	if promotionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROMOTION", "Promotion ID cannot be empty")
	}
	return &Coupon{
		BaseEntity:            shared.NewBaseEntity(),
		Code:                  code,
		PromotionID:           promotionID,
		UsageLimit:            usageLimit,
		UsageLimitPerCustomer: usageLimitPerCustomer,
	}, nil
}

// IsExpired returns true if the coupon's expiry has passed
func (c *Coupon) IsExpired(at time.Time) bool {
	return c.ExpiresAt != nil && at.After(*c.ExpiresAt)
}

// IsExhausted returns true if the overall usage limit is reached
func (c *Coupon) IsExhausted() bool {
	return c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit
}

// MarkUsed increments the usage counter
func (c *Coupon) MarkUsed() {
	c.UsageCount++
	c.UpdatedAt = time.Now()
}

// CouponService resolves coupon codes to valid coupons
type CouponService interface {
	// FindValidCoupon returns the coupon for a code if it exists, is not
	// expired and respects usage limits for the customer. Returns
	// (nil, nil) when the code is unknown or no longer valid.
	FindValidCoupon(ctx context.Context, code, customerEmail string) (*Coupon, error)
}

// PromotionRepository persists promotions
type PromotionRepository interface {
	// FindByCode finds a promotion by its unique code
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	// FindActiveByShop returns the enabled, in-window promotions of a shop
	// ordered by bucket then code
	FindActiveByShop(ctx context.Context, shopCode string, at time.Time) ([]Promotion, error)
	// Save persists a promotion
	Save(ctx context.Context, promo *Promotion) error
}

// CouponRepository persists coupons
type CouponRepository interface {
	// FindByCode finds a coupon by its unique code
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// CountUsageByCustomer counts how often a customer redeemed a coupon
	CountUsageByCustomer(ctx context.Context, code, customerEmail string) (int, error)
	// Save persists a coupon
	Save(ctx context.Context, coupon *Coupon) error
}
