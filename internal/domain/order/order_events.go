package order

import (
	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the order bounded context
const (
	EventTypeOrderCreated       = "order.created"
	EventTypeOrderStatusChanged = "order.status_changed"
)

const aggregateTypeOrder = "Order"

// OrderCreatedEvent is emitted when an order is assembled from a cart
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	ShopCode      string          `json:"shop_code"`
	CustomerEmail string          `json:"customer_email"`
	Currency      string          `json:"currency"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		ShopCode:        o.ShopCode,
		CustomerEmail:   o.CustomerEmail,
		Currency:        o.Currency,
		GrandTotal:      o.GrandTotal,
	}
}

// OrderStatusChangedEvent is emitted on every applied state transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string      `json:"order_number"`
	FromStatus  OrderStatus `json:"from_status"`
	ToStatus    OrderStatus `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from,
		ToStatus:        to,
	}
}
