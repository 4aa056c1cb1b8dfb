package order

import (
	"context"
	"fmt"
	"time"

	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PendingOrderHandler drives the initial transition of a checked-out
// order: it reserves inventory for every non-electronic delivery, then
// kicks off payment authorization and fires the follow-up event matching
// the gateway's verdict.
type PendingOrderHandler struct {
	warehouses inventory.WarehouseRepository
	resolver   *inventory.Resolver
	processors *payment.ProcessorFactory
	next       order.TransitionFunc
	logger     *zap.Logger
}

// NewPendingOrderHandler creates the pending transition handler. The next
// func comes from the state manager, which exists before any handler is
// registered, so no runtime lookup is needed to close the cycle.
func NewPendingOrderHandler(
	warehouses inventory.WarehouseRepository,
	resolver *inventory.Resolver,
	processors *payment.ProcessorFactory,
	next order.TransitionFunc,
	logger *zap.Logger,
) *PendingOrderHandler {
	return &PendingOrderHandler{
		warehouses: warehouses,
		resolver:   resolver,
		processors: processors,
		next:       next,
		logger:     logger,
	}
}

// reservedLine remembers one persisted stock hold so a failing later
// line can give it back.
type reservedLine struct {
	warehouseCode string
	skuCode       string
	quantity      decimal.Decimal
}

// Handle reserves stock, moves the order to pending and dispatches on the
// gateway mode. An allocation failure releases the holds taken so far,
// then propagates uncaught and leaves the order in its pre-transition
// state.
func (h *PendingOrderHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	var reserved []reservedLine
	for idx := range ord.Deliveries {
		lines, err := h.reserveQuantity(ctx, ord, &ord.Deliveries[idx])
		reserved = append(reserved, lines...)
		if err != nil {
			h.rollbackReservations(ctx, ord.OrderNumber, reserved)
			return false, err
		}
	}

	if err := ord.TransitionTo(order.OrderStatusPending); err != nil {
		return false, err
	}

	processor := h.processors.Create(ord.PgLabel, ord.PaymentGatewayShop())
	if !processor.IsGatewayEnabled() {
		return false, payment.NewGatewayDisabledError(ord.PgLabel, ord.ShopCode)
	}

	mode := processor.Gateway().Mode()
	switch {
	case mode.IsOnline():
		result := processor.Authorize(ctx, ord)
		h.logger.Info("online authorization finished",
			zap.String("order_number", ord.OrderNumber),
			zap.String("pg_label", ord.PgLabel),
			zap.String("result", string(result)),
		)
		switch result {
		case payment.PaymentStatusOk:
			// Payment held, reserved quantity will be allocated
			return h.next(ctx, order.NewOrderEventFrom(event, order.EventPaymentOk))
		case payment.PaymentStatusProcessing:
			return h.next(ctx, order.NewOrderEventFrom(event, order.EventPaymentProcessing))
		default:
			// Bad payment, the cancel handler returns the reservation
			return h.next(ctx, order.NewOrderEventFrom(event, order.EventCancel))
		}
	case mode.IsAutoCapture():
		// Offline auto capture, e.g. B2B invoice through contact
		return h.next(ctx, order.NewOrderEventFrom(event, order.EventPaymentConfirmed))
	default:
		// Offline, wait for manual confirmation about the payment
		return h.next(ctx, order.NewOrderEventFrom(event, order.EventPaymentOffline))
	}
}

// reserveQuantity allocates SKU quantity on the warehouses belonging to
// the shop the order was made in. The delivery is marked reserved only
// after every line succeeded; a failing line aborts with an
// ItemAllocationError naming the SKU. The returned lines are the holds
// this call persisted, complete even on failure so the caller can
// release them.
func (h *PendingOrderHandler) reserveQuantity(ctx context.Context, ord *order.Order, delivery *order.Delivery) ([]reservedLine, error) {
	var reserved []reservedLine

	if !delivery.IsElectronic() {

		warehouseByCode, err := h.warehouses.FindByShopMapped(ctx, ord.ShopCode)
		if err != nil {
			return reserved, fmt.Errorf("resolve warehouses for shop %s: %w", ord.ShopCode, err)
		}

		now := time.Now()

		for idx := range delivery.Items {
			item := &delivery.Items[idx]

			selected, ok := warehouseByCode[item.SupplierCode]
			if !ok {
				return reserved, order.NewItemAllocationError("N/A", decimal.Zero,
					fmt.Sprintf("warehouse %s is not found for %s:%s",
						item.SupplierCode, delivery.DeliveryNumber, item.SkuCode))
			}

			record, err := h.resolver.FindByWarehouseSku(ctx, selected.Code, item.SkuCode)
			if err != nil || record == nil || !record.IsAvailable(now) {
				return reserved, order.NewItemAllocationError(item.SkuCode, item.Quantity,
					fmt.Sprintf("no stock record, cannot allocate qty %s for sku %s in delivery %s",
						item.Quantity, item.SkuCode, delivery.DeliveryNumber))
			}

			backorder := record.Availability.AllowsBackorder()

			remainder, err := h.resolver.Reservation(ctx, selected.Code, item.SkuCode, item.Quantity, backorder)
			if err != nil {
				return reserved, fmt.Errorf("reserve %s of sku %s: %w", item.Quantity, item.SkuCode, err)
			}
			reserved = append(reserved, reservedLine{
				warehouseCode: selected.Code,
				skuCode:       item.SkuCode,
				quantity:      item.Quantity.Sub(remainder),
			})

			if remainder.IsPositive() {
				// Reservation requires stock records with inventory-supported availability
				return reserved, order.NewItemAllocationError(item.SkuCode, item.Quantity,
					fmt.Sprintf("out of stock, cannot allocate qty %s for sku %s in delivery %s",
						item.Quantity, item.SkuCode, delivery.DeliveryNumber))
			}
		}
	}

	return reserved, delivery.ChangeStatus(order.DeliveryStatusReserved)
}

// rollbackReservations gives persisted holds back after a failed
// allocation. Best effort: a release that fails here is logged and left
// for manual stock correction.
func (h *PendingOrderHandler) rollbackReservations(ctx context.Context, orderNumber string, reserved []reservedLine) {
	for _, line := range reserved {
		if !line.quantity.IsPositive() {
			continue
		}
		if _, err := h.resolver.ReleaseReservation(ctx, line.warehouseCode, line.skuCode, line.quantity); err != nil {
			h.logger.Warn("reservation rollback failed",
				zap.String("order_number", orderNumber),
				zap.String("warehouse_code", line.warehouseCode),
				zap.String("sku_code", line.skuCode),
				zap.String("quantity", line.quantity.String()),
				zap.Error(err),
			)
		}
	}
}
