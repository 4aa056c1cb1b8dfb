package order

import (
	"context"

	"github.com/openshop/backend/internal/domain/order"
	"go.uber.org/zap"
)

// PaymentOkHandler advances an order whose authorization succeeded: the
// order moves to in-progress and reserved deliveries are marked allocated.
type PaymentOkHandler struct {
	logger *zap.Logger
}

// NewPaymentOkHandler creates the payment-ok transition handler
func NewPaymentOkHandler(logger *zap.Logger) *PaymentOkHandler {
	return &PaymentOkHandler{logger: logger}
}

// Handle implements order.OrderEventHandler
func (h *PaymentOkHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	for idx := range ord.Deliveries {
		if ord.Deliveries[idx].Status == order.DeliveryStatusCancelled {
			continue
		}
		if err := ord.Deliveries[idx].ChangeStatus(order.DeliveryStatusAllocated); err != nil {
			return false, err
		}
	}

	if err := ord.TransitionTo(order.OrderStatusInProgress); err != nil {
		return false, err
	}

	h.logger.Info("payment authorized, order in progress",
		zap.String("order_number", ord.OrderNumber),
	)
	return true, nil
}

// PaymentProcessingHandler parks an order whose authorization is still in
// flight at the gateway.
type PaymentProcessingHandler struct {
	logger *zap.Logger
}

// NewPaymentProcessingHandler creates the payment-processing transition handler
func NewPaymentProcessingHandler(logger *zap.Logger) *PaymentProcessingHandler {
	return &PaymentProcessingHandler{logger: logger}
}

// Handle implements order.OrderEventHandler
func (h *PaymentProcessingHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	for idx := range ord.Deliveries {
		if ord.Deliveries[idx].Status == order.DeliveryStatusCancelled {
			continue
		}
		if err := ord.Deliveries[idx].ChangeStatus(order.DeliveryStatusWaitingPayment); err != nil {
			return false, err
		}
	}

	if err := ord.TransitionTo(order.OrderStatusWaitingPayment); err != nil {
		return false, err
	}

	h.logger.Info("payment processing, order waiting",
		zap.String("order_number", ord.OrderNumber),
	)
	return true, nil
}

// PaymentOfflineHandler parks an order paid through a manual offline
// gateway until payment confirmation arrives.
type PaymentOfflineHandler struct {
	logger *zap.Logger
}

// NewPaymentOfflineHandler creates the payment-offline transition handler
func NewPaymentOfflineHandler(logger *zap.Logger) *PaymentOfflineHandler {
	return &PaymentOfflineHandler{logger: logger}
}

// Handle implements order.OrderEventHandler
func (h *PaymentOfflineHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	for idx := range ord.Deliveries {
		if ord.Deliveries[idx].Status == order.DeliveryStatusCancelled {
			continue
		}
		if err := ord.Deliveries[idx].ChangeStatus(order.DeliveryStatusWaitingPayment); err != nil {
			return false, err
		}
	}

	if err := ord.TransitionTo(order.OrderStatusWaitingPayment); err != nil {
		return false, err
	}

	h.logger.Info("offline payment, order awaiting manual confirmation",
		zap.String("order_number", ord.OrderNumber),
	)
	return true, nil
}

// PaymentConfirmedHandler advances an order whose offline payment was
// confirmed (auto-capture invoice or manual confirmation).
type PaymentConfirmedHandler struct {
	logger *zap.Logger
}

// NewPaymentConfirmedHandler creates the payment-confirmed transition handler
func NewPaymentConfirmedHandler(logger *zap.Logger) *PaymentConfirmedHandler {
	return &PaymentConfirmedHandler{logger: logger}
}

// Handle implements order.OrderEventHandler
func (h *PaymentConfirmedHandler) Handle(ctx context.Context, event *order.OrderEvent) (bool, error) {
	ord := event.Order

	for idx := range ord.Deliveries {
		if ord.Deliveries[idx].Status == order.DeliveryStatusCancelled {
			continue
		}
		if err := ord.Deliveries[idx].ChangeStatus(order.DeliveryStatusAllocated); err != nil {
			return false, err
		}
	}

	if err := ord.TransitionTo(order.OrderStatusInProgress); err != nil {
		return false, err
	}

	h.logger.Info("payment confirmed, order in progress",
		zap.String("order_number", ord.OrderNumber),
	)
	return true, nil
}
