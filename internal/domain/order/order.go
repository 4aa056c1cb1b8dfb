package order

import (
	"fmt"

	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusNone           OrderStatus = "os.none"
	OrderStatusPending        OrderStatus = "os.pending"
	OrderStatusWaitingPayment OrderStatus = "os.waiting.payment"
	OrderStatusInProgress     OrderStatus = "os.in.progress"
	OrderStatusCompleted      OrderStatus = "os.completed"
	OrderStatusCancelled      OrderStatus = "os.cancelled"
	OrderStatusReturned       OrderStatus = "os.returned"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNone, OrderStatusPending, OrderStatusWaitingPayment,
		OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusNone:
		return target == OrderStatusPending || target == OrderStatusCancelled
	case OrderStatusPending:
		return target == OrderStatusInProgress || target == OrderStatusWaitingPayment || target == OrderStatusCancelled
	case OrderStatusWaitingPayment:
		return target == OrderStatusInProgress || target == OrderStatusCancelled
	case OrderStatusInProgress:
		return target == OrderStatusCompleted || target == OrderStatusReturned || target == OrderStatusCancelled
	case OrderStatusCompleted:
		return target == OrderStatusReturned
	case OrderStatusCancelled, OrderStatusReturned:
		return false // Terminal states
	}
	return false
}

// Order represents a customer order aggregate root. Orders are created from
// a finalized shopping cart in OrderStatusNone and mutated exclusively
// through state-transition events; they are never deleted.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber    string `gorm:"not null;uniqueIndex"`
	ShopCode       string `gorm:"not null;index"`
	MasterShopCode string // Set when the selling shop is a sub-shop
	CustomerEmail  string `gorm:"not null;index"`
	Currency       string `gorm:"not null"`
	PgLabel        string // Payment gateway label selected at checkout
	Status         OrderStatus
	ListTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Sum of line prices
	DeliveryCost   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PromoSavings   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CouponCodes    []string        `gorm:"serializer:json"` // Coupons attached at checkout
	AppliedPromo   []string        `gorm:"serializer:json"` // Promotion codes applied to pricing
	Deliveries     []Delivery      `gorm:"foreignKey:OrderID;references:ID"`
	CancelReason   string
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "customer_orders"
}

// NewOrder creates a new order in OrderStatusNone
func NewOrder(orderNumber, shopCode, customerEmail, currency string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if shopCode == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop code cannot be empty")
	}
	if customerEmail == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer email cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		ShopCode:          shopCode,
		CustomerEmail:     customerEmail,
		Currency:          currency,
		Status:            OrderStatusNone,
		ListTotal:         decimal.Zero,
		DeliveryCost:      decimal.Zero,
		GrandTotal:        decimal.Zero,
		Deliveries:        make([]Delivery, 0),
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// SetPaymentGateway records the gateway label selected at checkout
func (o *Order) SetPaymentGateway(pgLabel string) error {
	if pgLabel == "" {
		return shared.NewDomainError("INVALID_PG_LABEL", "Payment gateway label cannot be empty")
	}
	o.PgLabel = pgLabel
	o.touch()
	return nil
}

// SetMasterShop records the master shop a sub-shop inherits gateway config from
func (o *Order) SetMasterShop(masterShopCode string) {
	o.MasterShopCode = masterShopCode
	o.touch()
}

// PaymentGatewayShop returns the shop whose gateway configuration applies:
// the master shop when the selling shop is a sub-shop, the shop itself otherwise.
func (o *Order) PaymentGatewayShop() string {
	if o.MasterShopCode != "" {
		return o.MasterShopCode
	}
	return o.ShopCode
}

// AddDelivery attaches a delivery to the order.
// Only allowed while the order has not entered the state machine.
func (o *Order) AddDelivery(delivery *Delivery) error {
	if o.Status != OrderStatusNone {
		return shared.NewDomainError("INVALID_STATE", "Cannot add deliveries after checkout")
	}
	delivery.OrderID = o.ID
	o.Deliveries = append(o.Deliveries, *delivery)
	o.recalculateTotals()
	o.touch()
	return nil
}

// AttachCoupons records the coupon codes carried by the cart at checkout
func (o *Order) AttachCoupons(codes []string) {
	o.CouponCodes = append(o.CouponCodes, codes...)
	o.touch()
}

// MarkPromoApplied records a promotion code applied to this order's pricing
func (o *Order) MarkPromoApplied(promoCode string) {
	for _, code := range o.AppliedPromo {
		if code == promoCode {
			return
		}
	}
	o.AppliedPromo = append(o.AppliedPromo, promoCode)
	o.touch()
}

// ApplyPromoSavings deducts an absolute discount from the grand total.
// Savings never take the total below zero.
func (o *Order) ApplyPromoSavings(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Promo savings cannot be negative")
	}
	if amount.GreaterThan(o.GrandTotal) {
		amount = o.GrandTotal
	}
	o.PromoSavings = o.PromoSavings.Add(amount)
	o.GrandTotal = o.GrandTotal.Sub(amount)
	o.touch()
	return nil
}

// TransitionTo moves the order to the target status, validating the edge
func (o *Order) TransitionTo(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return NewOrderError("INVALID_TRANSITION",
			fmt.Sprintf("cannot transition order %s from %s to %s", o.OrderNumber, o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))
	return nil
}

// Cancel moves the order to cancelled and records the reason
func (o *Order) Cancel(reason string) error {
	if err := o.TransitionTo(OrderStatusCancelled); err != nil {
		return err
	}
	o.CancelReason = reason
	return nil
}

// GetDelivery returns the delivery with the given number, or nil
func (o *Order) GetDelivery(deliveryNumber string) *Delivery {
	for idx := range o.Deliveries {
		if o.Deliveries[idx].DeliveryNumber == deliveryNumber {
			return &o.Deliveries[idx]
		}
	}
	return nil
}

// recalculateTotals recalculates list, delivery and grand totals from deliveries
func (o *Order) recalculateTotals() {
	list := decimal.Zero
	cost := decimal.Zero
	for idx := range o.Deliveries {
		list = list.Add(o.Deliveries[idx].ItemsTotal())
		cost = cost.Add(o.Deliveries[idx].Cost)
	}
	o.ListTotal = list
	o.DeliveryCost = cost
	o.GrandTotal = list.Add(cost)
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCancelled || o.Status == OrderStatusReturned
}

func (o *Order) touch() {
	o.Touch()
}
