package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements inventory.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Warehouse, error) {
	var warehouse inventory.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &warehouse, nil
}

// FindByCode finds a warehouse by its unique code
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*inventory.Warehouse, error) {
	var warehouse inventory.Warehouse
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&warehouse).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &warehouse, nil
}

// FindByShopMapped returns the enabled warehouses of a shop keyed by code
func (r *GormWarehouseRepository) FindByShopMapped(ctx context.Context, shopCode string) (map[string]*inventory.Warehouse, error) {
	var warehouses []inventory.Warehouse
	if err := r.db.WithContext(ctx).
		Where("shop_code = ? AND disabled = ?", shopCode, false).
		Find(&warehouses).Error; err != nil {
		return nil, err
	}

	mapped := make(map[string]*inventory.Warehouse, len(warehouses))
	for idx := range warehouses {
		mapped[warehouses[idx].Code] = &warehouses[idx]
	}
	return mapped, nil
}

// Save persists a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *inventory.Warehouse) error {
	return r.db.WithContext(ctx).Save(warehouse).Error
}
