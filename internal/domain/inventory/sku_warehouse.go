package inventory

import (
	"time"

	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Availability controls how a stock record participates in reservation
type Availability string

const (
	// AvailabilityStandard sells from physical stock only
	AvailabilityStandard Availability = "STANDARD"
	// AvailabilityPreorder sells ahead of the release date
	AvailabilityPreorder Availability = "PREORDER"
	// AvailabilityBackorder allows reservation beyond physical stock
	AvailabilityBackorder Availability = "BACKORDER"
	// AvailabilityAlways never runs out (services, digital goods)
	AvailabilityAlways Availability = "ALWAYS"
	// AvailabilityShowroom is display only, never purchasable
	AvailabilityShowroom Availability = "SHOWROOM"
)

// IsValid checks if the value is a known Availability
func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityStandard, AvailabilityPreorder, AvailabilityBackorder, AvailabilityAlways, AvailabilityShowroom:
		return true
	}
	return false
}

// AllowsBackorder returns true if reservation may exceed physical stock
func (a Availability) AllowsBackorder() bool {
	return a == AvailabilityBackorder || a == AvailabilityAlways
}

// SkuWarehouse represents stock of a single SKU at a single warehouse.
// It is the aggregate root for reservation operations.
// The composite identifier is WarehouseCode + SkuCode.
type SkuWarehouse struct {
	shared.BaseAggregateRoot
	WarehouseCode string          `gorm:"not null;uniqueIndex:idx_sku_warehouse,priority:1"`
	SkuCode       string          `gorm:"not null;uniqueIndex:idx_sku_warehouse,priority:2"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Physical stock on hand
	Reserved      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Held for pending orders
	Availability  Availability    `gorm:"not null;default:'STANDARD'"`
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	ReleaseDate   *time.Time // Preorder fulfilment date
}

// TableName returns the table name for GORM
func (SkuWarehouse) TableName() string {
	return "sku_warehouses"
}

// NewSkuWarehouse creates a stock record for a warehouse-SKU combination
func NewSkuWarehouse(warehouseCode, skuCode string, availability Availability) (*SkuWarehouse, error) {
	if warehouseCode == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse code cannot be empty")
	}
	if skuCode == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU code cannot be empty")
	}
	if !availability.IsValid() {
		return nil, shared.NewDomainError("INVALID_AVAILABILITY", "Unknown availability mode")
	}

	return &SkuWarehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseCode:     warehouseCode,
		SkuCode:           skuCode,
		Quantity:          decimal.Zero,
		Reserved:          decimal.Zero,
		Availability:      availability,
	}, nil
}

// AvailableToSell returns stock on hand minus outstanding reservations
func (s *SkuWarehouse) AvailableToSell() decimal.Decimal {
	return s.Quantity.Sub(s.Reserved)
}

// IsAvailable returns true if the record can take reservations at the given time.
// Showroom records are display only; the from/to window bounds seasonal stock.
func (s *SkuWarehouse) IsAvailable(at time.Time) bool {
	if s.Availability == AvailabilityShowroom {
		return false
	}
	if s.AvailableFrom != nil && at.Before(*s.AvailableFrom) {
		return false
	}
	if s.AvailableTo != nil && at.After(*s.AvailableTo) {
		return false
	}
	return true
}

// Reserve holds quantity for a pending order and returns the remainder
// that could not be reserved. With backorderAllowed the full quantity is
// always reserved and the remainder is zero; without it the reservation
// is capped at available-to-sell so stock never goes negative.
func (s *SkuWarehouse) Reserve(quantity decimal.Decimal, backorderAllowed bool) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}

	if backorderAllowed {
		s.Reserved = s.Reserved.Add(quantity)
		s.touch()
		s.AddDomainEvent(NewStockReservedEvent(s, quantity))
		return decimal.Zero, nil
	}

	available := s.AvailableToSell()
	if available.LessThanOrEqual(decimal.Zero) {
		return quantity, nil
	}

	reservable := decimal.Min(quantity, available)
	s.Reserved = s.Reserved.Add(reservable)
	s.touch()
	s.AddDomainEvent(NewStockReservedEvent(s, reservable))

	return quantity.Sub(reservable), nil
}

// ReleaseReservation returns held quantity back to available-to-sell and
// returns the remainder that was not held. Used when an order is cancelled
// before allocation.
func (s *SkuWarehouse) ReleaseReservation(quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	releasable := decimal.Min(quantity, s.Reserved)
	s.Reserved = s.Reserved.Sub(releasable)
	s.touch()
	s.AddDomainEvent(NewReservationReleasedEvent(s, releasable))

	return quantity.Sub(releasable), nil
}

// DebitReservation consumes held quantity on shipment: both the reservation
// and the physical stock are reduced. Returns the remainder that was not held.
func (s *SkuWarehouse) DebitReservation(quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Debit quantity must be positive")
	}

	debitable := decimal.Min(quantity, s.Reserved)
	s.Reserved = s.Reserved.Sub(debitable)
	s.Quantity = s.Quantity.Sub(debitable)
	s.touch()
	s.AddDomainEvent(NewReservationDebitedEvent(s, debitable))

	return quantity.Sub(debitable), nil
}

// CreditQuantity adds physical stock (inbound delivery, returns)
func (s *SkuWarehouse) CreditQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Credit quantity must be positive")
	}
	s.Quantity = s.Quantity.Add(quantity)
	s.touch()
	return nil
}

// SetAvailabilityWindow bounds the period during which the record takes reservations
func (s *SkuWarehouse) SetAvailabilityWindow(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return shared.NewDomainError("INVALID_WINDOW", "Available-to cannot precede available-from")
	}
	s.AvailableFrom = from
	s.AvailableTo = to
	s.touch()
	return nil
}

// touch refreshes the modification timestamp; the version column is
// advanced by the repository on save.
func (s *SkuWarehouse) touch() {
	s.Touch()
}
