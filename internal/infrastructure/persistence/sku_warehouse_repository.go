package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSkuWarehouseRepository implements inventory.SkuWarehouseRepository using GORM
type GormSkuWarehouseRepository struct {
	db *gorm.DB
}

// NewGormSkuWarehouseRepository creates a new GormSkuWarehouseRepository
func NewGormSkuWarehouseRepository(db *gorm.DB) *GormSkuWarehouseRepository {
	return &GormSkuWarehouseRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormSkuWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.SkuWarehouse, error) {
	var record inventory.SkuWarehouse
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByWarehouseSku finds the stock record for a warehouse-SKU pair
func (r *GormSkuWarehouseRepository) FindByWarehouseSku(ctx context.Context, warehouseCode, skuCode string) (*inventory.SkuWarehouse, error) {
	var record inventory.SkuWarehouse
	if err := r.db.WithContext(ctx).
		Where("warehouse_code = ? AND sku_code = ?", warehouseCode, skuCode).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindBySku finds all stock records for a SKU across warehouses
func (r *GormSkuWarehouseRepository) FindBySku(ctx context.Context, skuCode string) ([]inventory.SkuWarehouse, error) {
	var records []inventory.SkuWarehouse
	if err := r.db.WithContext(ctx).
		Where("sku_code = ?", skuCode).
		Order("warehouse_code ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a stock record with optimistic version check
func (r *GormSkuWarehouseRepository) Save(ctx context.Context, record *inventory.SkuWarehouse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing inventory.SkuWarehouse
		err := tx.Select("version").First(&existing, "id = ?", record.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(record).Error
		}
		if err != nil {
			return err
		}

		if existing.Version != record.Version {
			return shared.ErrConcurrencyConflict
		}
		record.IncrementVersion()
		record.UpdatedAt = time.Now()

		result := tx.Model(&inventory.SkuWarehouse{}).
			Where("id = ? AND version = ?", record.ID, existing.Version).
			Updates(map[string]interface{}{
				"quantity":       record.Quantity,
				"reserved":       record.Reserved,
				"availability":   record.Availability,
				"available_from": record.AvailableFrom,
				"available_to":   record.AvailableTo,
				"release_date":   record.ReleaseDate,
				"version":        record.Version,
				"updated_at":     record.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}
