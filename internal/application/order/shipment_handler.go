package order

import (
	"context"
	"fmt"

	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// ParamDeliveryNumber is the event param selecting the delivery a
// shipment event applies to
const ParamDeliveryNumber = "delivery_number"

// ShipmentCompleteHandler finishes one delivery: the authorization hold
// is captured, the reserved stock is debited off the shelf and the
// delivery moves to shipped. The order itself completes separately once
// every delivery reached a final state.
type ShipmentCompleteHandler struct {
	warehouses inventory.WarehouseRepository
	resolver   *inventory.Resolver
	processors *payment.ProcessorFactory
	logger     *zap.Logger
}

// NewShipmentCompleteHandler creates the shipment-complete transition handler
func NewShipmentCompleteHandler(
	warehouses inventory.WarehouseRepository,
	resolver *inventory.Resolver,
	processors *payment.ProcessorFactory,
	logger *zap.Logger,
) *ShipmentCompleteHandler {
	return &ShipmentCompleteHandler{
		warehouses: warehouses,
		resolver:   resolver,
		processors: processors,
		logger:     logger,
	}
}

// Handle implements order.OrderEventHandler
func (h *ShipmentCompleteHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	deliveryNumber, _ := event.Params[ParamDeliveryNumber].(string)
	if deliveryNumber == "" {
		return false, order.NewOrderError("DELIVERY_REQUIRED",
			"shipment completion needs a delivery number")
	}

	delivery := ord.GetDelivery(deliveryNumber)
	if delivery == nil {
		return false, order.NewOrderError("DELIVERY_NOT_FOUND",
			fmt.Sprintf("order %s has no delivery %s", ord.OrderNumber, deliveryNumber))
	}

	switch delivery.Status {
	case order.DeliveryStatusShipped:
		// Already captured and debited
		return true, nil
	case order.DeliveryStatusAllocated, order.DeliveryStatusShipping:
	default:
		return false, order.NewOrderError("DELIVERY_NOT_ALLOCATED",
			fmt.Sprintf("delivery %s is %s, funds are not held yet",
				deliveryNumber, delivery.Status))
	}

	processor := h.processors.Create(ord.PgLabel, ord.PaymentGatewayShop())
	if result := processor.ShipmentComplete(ctx, ord, deliveryNumber); result != payment.PaymentStatusOk {
		return false, order.NewOrderError("CAPTURE_FAILED",
			fmt.Sprintf("capture for delivery %s of order %s failed",
				deliveryNumber, ord.OrderNumber))
	}

	if err := h.debitQuantity(ctx, ord, delivery); err != nil {
		return false, err
	}

	if err := delivery.ChangeStatus(order.DeliveryStatusShipped); err != nil {
		return false, err
	}

	h.logger.Info("delivery shipped and captured",
		zap.String("order_number", ord.OrderNumber),
		zap.String("delivery_number", deliveryNumber),
	)
	return true, nil
}

// debitQuantity consumes the delivery's reservations: stock physically
// left the warehouse, so both reserved and on-hand quantity go down.
func (h *ShipmentCompleteHandler) debitQuantity(ctx context.Context, ord *order.Order, delivery *order.Delivery) error {
	if delivery.IsElectronic() {
		return nil
	}

	warehouseByCode, err := h.warehouses.FindByShopMapped(ctx, ord.ShopCode)
	if err != nil {
		return fmt.Errorf("resolve warehouses for shop %s: %w", ord.ShopCode, err)
	}

	for idx := range delivery.Items {
		item := &delivery.Items[idx]

		selected, ok := warehouseByCode[item.SupplierCode]
		if !ok {
			h.logger.Warn("warehouse gone before debit, reservation may leak",
				zap.String("supplier_code", item.SupplierCode),
				zap.String("sku_code", item.SkuCode),
			)
			continue
		}

		remainder, err := h.resolver.DebitReservation(ctx, selected.Code, item.SkuCode, item.Quantity)
		if err != nil {
			return fmt.Errorf("debit %s of sku %s: %w", item.Quantity, item.SkuCode, err)
		}
		if remainder.IsPositive() {
			h.logger.Warn("reservation smaller than shipped quantity",
				zap.String("sku_code", item.SkuCode),
				zap.String("remainder", remainder.String()),
			)
		}
	}
	return nil
}
