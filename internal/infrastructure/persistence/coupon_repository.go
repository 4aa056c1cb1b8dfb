package persistence

import (
	"context"
	"errors"

	"github.com/openshop/backend/internal/domain/promotion"
	"github.com/openshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// CouponUsage records one redemption of a coupon by a customer
type CouponUsage struct {
	shared.BaseEntity
	CouponCode    string `gorm:"not null;index:idx_coupon_usage,priority:1"`
	CustomerEmail string `gorm:"not null;index:idx_coupon_usage,priority:2"`
	OrderNumber   string `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CouponUsage) TableName() string {
	return "promotion_coupon_usages"
}

// GormCouponRepository implements promotion.CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode finds a coupon by its unique code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// CountUsageByCustomer counts how often a customer redeemed a coupon
func (r *GormCouponRepository) CountUsageByCustomer(ctx context.Context, code, customerEmail string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&CouponUsage{}).
		Where("coupon_code = ? AND customer_email = ?", code, customerEmail).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Save persists a coupon
func (r *GormCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}
