package inventory

import (
	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the inventory bounded context
const (
	EventTypeStockReserved       = "inventory.stock_reserved"
	EventTypeReservationReleased = "inventory.reservation_released"
	EventTypeReservationDebited  = "inventory.reservation_debited"
)

const aggregateTypeSkuWarehouse = "SkuWarehouse"

// StockReservedEvent is emitted when quantity is held for a pending order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	WarehouseCode string          `json:"warehouse_code"`
	SkuCode       string          `json:"sku_code"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reserved      decimal.Decimal `json:"reserved"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(s *SkuWarehouse, quantity decimal.Decimal) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, aggregateTypeSkuWarehouse, s.ID),
		WarehouseCode:   s.WarehouseCode,
		SkuCode:         s.SkuCode,
		Quantity:        quantity,
		Reserved:        s.Reserved,
	}
}

// ReservationReleasedEvent is emitted when a held quantity is returned to stock
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	WarehouseCode string          `json:"warehouse_code"`
	SkuCode       string          `json:"sku_code"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reserved      decimal.Decimal `json:"reserved"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(s *SkuWarehouse, quantity decimal.Decimal) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, aggregateTypeSkuWarehouse, s.ID),
		WarehouseCode:   s.WarehouseCode,
		SkuCode:         s.SkuCode,
		Quantity:        quantity,
		Reserved:        s.Reserved,
	}
}

// ReservationDebitedEvent is emitted when a held quantity is consumed by shipment
type ReservationDebitedEvent struct {
	shared.BaseDomainEvent
	WarehouseCode string          `json:"warehouse_code"`
	SkuCode       string          `json:"sku_code"`
	Quantity      decimal.Decimal `json:"quantity"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// NewReservationDebitedEvent creates a new ReservationDebitedEvent
func NewReservationDebitedEvent(s *SkuWarehouse, quantity decimal.Decimal) *ReservationDebitedEvent {
	return &ReservationDebitedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationDebited, aggregateTypeSkuWarehouse, s.ID),
		WarehouseCode:   s.WarehouseCode,
		SkuCode:         s.SkuCode,
		Quantity:        quantity,
		Remaining:       s.Quantity,
	}
}
