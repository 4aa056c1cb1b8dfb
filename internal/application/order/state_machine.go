package order

import (
	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// NewOrderStateMachine builds the state manager with the full transition
// handler chain registered. The manager's follow-up func is handed to the
// pending handler before registration, so handlers can fire their
// downstream events without reaching back into a registry at runtime.
func NewOrderStateMachine(
	warehouses inventory.WarehouseRepository,
	resolver *inventory.Resolver,
	processors *payment.ProcessorFactory,
	logger *zap.Logger,
) *order.StateManager {
	manager := order.NewStateManager()
	next := manager.Next()

	manager.Register(order.EventPending, NewPendingOrderHandler(warehouses, resolver, processors, next, logger))
	manager.Register(order.EventPaymentOk, NewPaymentOkHandler(logger))
	manager.Register(order.EventPaymentProcessing, NewPaymentProcessingHandler(logger))
	manager.Register(order.EventPaymentOffline, NewPaymentOfflineHandler(logger))
	manager.Register(order.EventPaymentConfirmed, NewPaymentConfirmedHandler(logger))
	manager.Register(order.EventShipmentComplete, NewShipmentCompleteHandler(warehouses, resolver, processors, logger))
	manager.Register(order.EventCancel, NewCancelOrderHandler(warehouses, resolver, processors, logger))
	manager.Register(order.EventComplete, NewCompleteOrderHandler(logger))

	return manager
}
