package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/openshop/backend/internal/domain/promotion"
	"github.com/openshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPromotionRepository implements promotion.PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByCode finds a promotion by its unique code
func (r *GormPromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	var promo promotion.Promotion
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &promo, nil
}

// FindActiveByShop returns the enabled, in-window promotions of a shop
// ordered by bucket then code
func (r *GormPromotionRepository) FindActiveByShop(ctx context.Context, shopCode string, at time.Time) ([]promotion.Promotion, error) {
	var promos []promotion.Promotion
	if err := r.db.WithContext(ctx).
		Where("shop_code = ? AND enabled = ?", shopCode, true).
		Where("enabled_from IS NULL OR enabled_from <= ?", at).
		Where("enabled_to IS NULL OR enabled_to >= ?", at).
		Order("bucket ASC, code ASC").
		Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// Save persists a promotion
func (r *GormPromotionRepository) Save(ctx context.Context, promo *promotion.Promotion) error {
	return r.db.WithContext(ctx).Save(promo).Error
}
