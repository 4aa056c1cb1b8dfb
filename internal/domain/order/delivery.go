package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DeliveryGroup classifies how a delivery is fulfilled
type DeliveryGroup string

const (
	DeliveryGroupStandard   DeliveryGroup = "D1" // In-stock items
	DeliveryGroupPreorder   DeliveryGroup = "D2" // Items awaiting release
	DeliveryGroupBackorder  DeliveryGroup = "D3" // Items reserved beyond stock
	DeliveryGroupMixed      DeliveryGroup = "D4" // Standard + waiting items shipped together
	DeliveryGroupElectronic DeliveryGroup = "D5" // Digital goods, no inventory reservation
)

// DeliveryStatus represents the fulfilment state of a delivery.
// Transitions are monotonic within this vocabulary.
type DeliveryStatus string

const (
	DeliveryStatusPending        DeliveryStatus = "ds.pending"
	DeliveryStatusReserved       DeliveryStatus = "ds.inventory.reserved"
	DeliveryStatusInventoryWait  DeliveryStatus = "ds.inventory.wait"
	DeliveryStatusAllocated      DeliveryStatus = "ds.inventory.allocated"
	DeliveryStatusWaitingPayment DeliveryStatus = "ds.waiting.payment"
	DeliveryStatusShipping       DeliveryStatus = "ds.shipment.inprogress"
	DeliveryStatusShipped        DeliveryStatus = "ds.shipped"
	DeliveryStatusCancelled      DeliveryStatus = "ds.cancelled"
)

// deliveryStatusRank orders statuses for the monotonic-transition check
var deliveryStatusRank = map[DeliveryStatus]int{
	DeliveryStatusPending:        0,
	DeliveryStatusReserved:       1,
	DeliveryStatusInventoryWait:  2,
	DeliveryStatusWaitingPayment: 2,
	DeliveryStatusAllocated:      3,
	DeliveryStatusShipping:       4,
	DeliveryStatusShipped:        5,
	DeliveryStatusCancelled:      5,
}

// DeliveryItem is a line item within a delivery
type DeliveryItem struct {
	ID           uuid.UUID
	DeliveryID   uuid.UUID
	SkuCode      string
	SkuName      string
	SupplierCode string // Resolves the fulfilment warehouse
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// LineTotal returns quantity * unit price
func (i *DeliveryItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// Delivery is a shippable grouping of order line items fulfilled from one
// supplier/warehouse. It belongs to exactly one order.
type Delivery struct {
	shared.BaseEntity
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	DeliveryNumber string    `gorm:"not null;uniqueIndex"`
	Group          DeliveryGroup
	Status         DeliveryStatus
	Items          []DeliveryItem  `gorm:"foreignKey:DeliveryID;references:ID"`
	Cost           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Delivery) TableName() string {
	return "order_deliveries"
}

// NewDelivery creates a new delivery in DeliveryStatusPending
func NewDelivery(deliveryNumber string, group DeliveryGroup, cost decimal.Decimal) (*Delivery, error) {
	if deliveryNumber == "" {
		return nil, shared.NewDomainError("INVALID_DELIVERY_NUMBER", "Delivery number cannot be empty")
	}
	if cost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Delivery cost cannot be negative")
	}
	return &Delivery{
		BaseEntity:     shared.NewBaseEntity(),
		DeliveryNumber: deliveryNumber,
		Group:          group,
		Status:         DeliveryStatusPending,
		Items:          make([]DeliveryItem, 0),
		Cost:           cost,
	}, nil
}

// AddItem adds a line item to the delivery
func (d *Delivery) AddItem(skuCode, skuName, supplierCode string, quantity, unitPrice decimal.Decimal) error {
	if skuCode == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU code cannot be empty")
	}
	if supplierCode == "" {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier code cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	d.Items = append(d.Items, DeliveryItem{
		ID:           uuid.New(),
		DeliveryID:   d.ID,
		SkuCode:      skuCode,
		SkuName:      skuName,
		SupplierCode: supplierCode,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
	})
	d.UpdatedAt = time.Now()
	return nil
}

// IsElectronic returns true for digital deliveries that skip inventory reservation
func (d *Delivery) IsElectronic() bool {
	return d.Group == DeliveryGroupElectronic
}

// ItemsTotal returns the sum of all line totals
func (d *Delivery) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range d.Items {
		total = total.Add(d.Items[idx].LineTotal())
	}
	return total
}

// ChangeStatus moves the delivery forward in the status vocabulary.
// Moving backwards is rejected to keep transitions monotonic.
func (d *Delivery) ChangeStatus(target DeliveryStatus) error {
	currentRank, ok := deliveryStatusRank[d.Status]
	if !ok {
		return shared.NewDomainError("INVALID_STATE", "Unknown delivery status")
	}
	targetRank, ok := deliveryStatusRank[target]
	if !ok {
		return shared.NewDomainError("INVALID_STATE", "Unknown target delivery status")
	}
	if targetRank < currentRank {
		return shared.NewDomainError("INVALID_TRANSITION", "Delivery status cannot move backwards")
	}
	d.Status = target
	d.UpdatedAt = time.Now()
	return nil
}
