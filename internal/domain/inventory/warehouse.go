package inventory

import (
	"time"

	"github.com/openshop/backend/internal/domain/shared"
)

// Warehouse is a fulfilment location attached to a shop. Deliveries
// reference warehouses by supplier code.
type Warehouse struct {
	shared.BaseEntity
	Code       string `gorm:"not null;uniqueIndex"`
	Name       string `gorm:"not null"`
	ShopCode   string `gorm:"not null;index"`
	CountryISO string
	Disabled   bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse for a shop
func NewWarehouse(code, name, shopCode string) (*Warehouse, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Warehouse code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}
	if shopCode == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop code cannot be empty")
	}
	return &Warehouse{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		ShopCode:   shopCode,
	}, nil
}

// Disable takes the warehouse out of fulfilment rotation
func (w *Warehouse) Disable() {
	w.Disabled = true
	w.UpdatedAt = time.Now()
}

// Enable returns the warehouse to fulfilment rotation
func (w *Warehouse) Enable() {
	w.Disabled = false
	w.UpdatedAt = time.Now()
}
