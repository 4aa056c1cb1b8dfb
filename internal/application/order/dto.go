package order

import (
	"time"

	"github.com/openshop/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// ==================== Checkout DTOs ====================

// CheckoutRequest represents a finalized shopping cart submitted for checkout
type CheckoutRequest struct {
	ShopCode       string              `json:"shop_code" binding:"required,min=1,max=50"`
	MasterShopCode string              `json:"master_shop_code"`
	CustomerEmail  string              `json:"customer_email" binding:"required,email"`
	Currency       string              `json:"currency" binding:"required,len=3"`
	PgLabel        string              `json:"pg_label" binding:"required,min=1,max=100"`
	CouponCodes    []string            `json:"coupon_codes"`
	DeliveryCost   decimal.Decimal     `json:"delivery_cost"`
	Items          []CheckoutItemInput `json:"items" binding:"required,min=1"`
}

// CheckoutItemInput represents a cart line
type CheckoutItemInput struct {
	SkuCode      string          `json:"sku_code" binding:"required,min=1,max=100"`
	SkuName      string          `json:"sku_name" binding:"required,min=1,max=200"`
	SupplierCode string          `json:"supplier_code" binding:"required,min=1,max=50"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	Electronic   bool            `json:"electronic"`
}

// TransitionRequest represents a request to fire a state-machine event
type TransitionRequest struct {
	Event  string                 `json:"event" binding:"required,min=1,max=100"`
	Params map[string]interface{} `json:"params"`
}

// ==================== Responses ====================

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"order_number"`
	ShopCode      string             `json:"shop_code"`
	CustomerEmail string             `json:"customer_email"`
	Currency      string             `json:"currency"`
	PgLabel       string             `json:"pg_label"`
	Status        string             `json:"status"`
	ListTotal     decimal.Decimal    `json:"list_total"`
	DeliveryCost  decimal.Decimal    `json:"delivery_cost"`
	PromoSavings  decimal.Decimal    `json:"promo_savings"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	CouponCodes   []string           `json:"coupon_codes,omitempty"`
	AppliedPromo  []string           `json:"applied_promo,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	Deliveries    []DeliveryResponse `json:"deliveries"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// DeliveryResponse represents a delivery in API responses
type DeliveryResponse struct {
	DeliveryNumber string                 `json:"delivery_number"`
	Group          string                 `json:"group"`
	Status         string                 `json:"status"`
	Cost           decimal.Decimal        `json:"cost"`
	Items          []DeliveryItemResponse `json:"items"`
}

// DeliveryItemResponse represents a delivery line in API responses
type DeliveryItemResponse struct {
	SkuCode      string          `json:"sku_code"`
	SkuName      string          `json:"sku_name"`
	SupplierCode string          `json:"supplier_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// ToOrderResponse converts an order aggregate to its response DTO
func ToOrderResponse(ord *order.Order) OrderResponse {
	deliveries := make([]DeliveryResponse, 0, len(ord.Deliveries))
	for idx := range ord.Deliveries {
		deliveries = append(deliveries, toDeliveryResponse(&ord.Deliveries[idx]))
	}
	return OrderResponse{
		ID:            ord.ID.String(),
		OrderNumber:   ord.OrderNumber,
		ShopCode:      ord.ShopCode,
		CustomerEmail: ord.CustomerEmail,
		Currency:      ord.Currency,
		PgLabel:       ord.PgLabel,
		Status:        ord.Status.String(),
		ListTotal:     ord.ListTotal,
		DeliveryCost:  ord.DeliveryCost,
		PromoSavings:  ord.PromoSavings,
		GrandTotal:    ord.GrandTotal,
		CouponCodes:   ord.CouponCodes,
		AppliedPromo:  ord.AppliedPromo,
		CancelReason:  ord.CancelReason,
		Deliveries:    deliveries,
		CreatedAt:     ord.CreatedAt,
		UpdatedAt:     ord.UpdatedAt,
	}
}

func toDeliveryResponse(d *order.Delivery) DeliveryResponse {
	items := make([]DeliveryItemResponse, 0, len(d.Items))
	for idx := range d.Items {
		item := &d.Items[idx]
		items = append(items, DeliveryItemResponse{
			SkuCode:      item.SkuCode,
			SkuName:      item.SkuName,
			SupplierCode: item.SupplierCode,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal(),
		})
	}
	return DeliveryResponse{
		DeliveryNumber: d.DeliveryNumber,
		Group:          string(d.Group),
		Status:         string(d.Status),
		Cost:           d.Cost,
		Items:          items,
	}
}
