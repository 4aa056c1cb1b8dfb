package inventory

import (
	"context"

	"github.com/google/uuid"
)

// SkuWarehouseRepository persists stock records
type SkuWarehouseRepository interface {
	// FindByID finds a stock record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SkuWarehouse, error)
	// FindByWarehouseSku finds the stock record for a warehouse-SKU pair.
	// Returns shared.ErrNotFound if no record exists.
	FindByWarehouseSku(ctx context.Context, warehouseCode, skuCode string) (*SkuWarehouse, error)
	// FindBySku finds all stock records for a SKU across warehouses
	FindBySku(ctx context.Context, skuCode string) ([]SkuWarehouse, error)
	// Save persists a stock record with optimistic version check.
	// Returns shared.ErrConcurrencyConflict on version mismatch.
	Save(ctx context.Context, record *SkuWarehouse) error
}

// WarehouseRepository persists warehouses
type WarehouseRepository interface {
	// FindByID finds a warehouse by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	// FindByCode finds a warehouse by its unique code
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	// FindByShopMapped returns the enabled warehouses of a shop keyed by code
	FindByShopMapped(ctx context.Context, shopCode string) (map[string]*Warehouse, error)
	// Save persists a warehouse
	Save(ctx context.Context, warehouse *Warehouse) error
}
