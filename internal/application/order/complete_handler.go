package order

import (
	"context"

	"github.com/openshop/backend/internal/domain/order"
	"go.uber.org/zap"
)

// CompleteOrderHandler closes an order once every delivery reached a final
// fulfilment state.
type CompleteOrderHandler struct {
	logger *zap.Logger
}

// NewCompleteOrderHandler creates the completion transition handler
func NewCompleteOrderHandler(logger *zap.Logger) *CompleteOrderHandler {
	return &CompleteOrderHandler{logger: logger}
}

// Handle implements order.OrderEventHandler
func (h *CompleteOrderHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	for idx := range ord.Deliveries {
		status := ord.Deliveries[idx].Status
		if status != order.DeliveryStatusShipped && status != order.DeliveryStatusCancelled {
			return false, order.NewOrderError("DELIVERIES_OPEN",
				"order has deliveries that are not shipped yet")
		}
	}

	if err := ord.TransitionTo(order.OrderStatusCompleted); err != nil {
		return false, err
	}

	h.logger.Info("order completed",
		zap.String("order_number", ord.OrderNumber),
	)
	return true, nil
}
