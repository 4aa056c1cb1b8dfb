package order

import (
	"context"
	"fmt"

	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ParamCancelReason is the event param carrying the cancellation reason
const ParamCancelReason = "reason"

// CancelOrderHandler is the compensating transition: it returns reserved
// inventory to stock, reverses payments and moves the order to cancelled.
// It runs both for customer cancellations and for failed authorizations
// fired from the pending handler.
type CancelOrderHandler struct {
	warehouses inventory.WarehouseRepository
	resolver   *inventory.Resolver
	processors *payment.ProcessorFactory
	logger     *zap.Logger
}

// NewCancelOrderHandler creates the cancel transition handler
func NewCancelOrderHandler(
	warehouses inventory.WarehouseRepository,
	resolver *inventory.Resolver,
	processors *payment.ProcessorFactory,
	logger *zap.Logger,
) *CancelOrderHandler {
	return &CancelOrderHandler{
		warehouses: warehouses,
		resolver:   resolver,
		processors: processors,
		logger:     logger,
	}
}

// Handle implements order.OrderEventHandler
func (h *CancelOrderHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	// Shipped deliveries keep their status: the goods went out, only the
	// captured funds come back. Everything else releases its reservation.
	capturedTotal := decimal.Zero
	for idx := range ord.Deliveries {
		delivery := &ord.Deliveries[idx]
		if delivery.Status == order.DeliveryStatusShipped {
			capturedTotal = capturedTotal.Add(delivery.ItemsTotal().Add(delivery.Cost))
			continue
		}
		if err := h.releaseQuantity(ctx, ord, delivery); err != nil {
			return false, err
		}
	}

	processor := h.processors.Create(ord.PgLabel, ord.PaymentGatewayShop())
	if result := processor.CancelOrder(ctx, ord); result != payment.PaymentStatusOk {
		h.logger.Error("payment reversal incomplete on cancellation",
			zap.String("order_number", ord.OrderNumber),
			zap.String("pg_label", ord.PgLabel),
			zap.String("result", string(result)),
		)
	}
	if capturedTotal.IsPositive() {
		if result := processor.RefundNotification(ctx, ord, capturedTotal); result != payment.PaymentStatusOk {
			h.logger.Error("refund incomplete on cancellation",
				zap.String("order_number", ord.OrderNumber),
				zap.String("amount", capturedTotal.String()),
				zap.String("result", string(result)),
			)
		}
	}

	reason, _ := event.Params[ParamCancelReason].(string)
	if reason == "" {
		reason = "order cancelled"
	}
	if err := ord.Cancel(reason); err != nil {
		return false, err
	}

	h.logger.Info("order cancelled",
		zap.String("order_number", ord.OrderNumber),
		zap.String("reason", reason),
	)
	return true, nil
}

// releaseQuantity returns a reserved delivery's held quantity to stock and
// marks the delivery cancelled. Deliveries that never reached the reserved
// state have nothing to release.
func (h *CancelOrderHandler) releaseQuantity(ctx context.Context, ord *order.Order, delivery *order.Delivery) error {
	if !delivery.IsElectronic() && delivery.Status == order.DeliveryStatusReserved {

		warehouseByCode, err := h.warehouses.FindByShopMapped(ctx, ord.ShopCode)
		if err != nil {
			return fmt.Errorf("resolve warehouses for shop %s: %w", ord.ShopCode, err)
		}

		for idx := range delivery.Items {
			item := &delivery.Items[idx]

			selected, ok := warehouseByCode[item.SupplierCode]
			if !ok {
				h.logger.Warn("warehouse gone before release, reservation may leak",
					zap.String("supplier_code", item.SupplierCode),
					zap.String("sku_code", item.SkuCode),
				)
				continue
			}

			remainder, err := h.resolver.ReleaseReservation(ctx, selected.Code, item.SkuCode, item.Quantity)
			if err != nil {
				return fmt.Errorf("release %s of sku %s: %w", item.Quantity, item.SkuCode, err)
			}
			if remainder.IsPositive() {
				h.logger.Warn("reservation smaller than released quantity",
					zap.String("sku_code", item.SkuCode),
					zap.String("remainder", remainder.String()),
				)
			}
		}
	}

	return delivery.ChangeStatus(order.DeliveryStatusCancelled)
}
