package payment

import (
	"context"
	"time"

	"github.com/openshop/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Processor orchestrates gateway operations for one order. Instances are
// created per invocation by the factory because gateway clients are not
// thread-safe; a processor must not be shared between goroutines.
type Processor struct {
	gateway  Gateway
	recorder PaymentRecorder
	logger   *zap.Logger
}

// NewProcessor creates a processor bound to a gateway. A nil gateway
// produces a disabled processor; callers check IsGatewayEnabled before use.
func NewProcessor(gateway Gateway, recorder PaymentRecorder, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{gateway: gateway, recorder: recorder, logger: logger}
}

// IsGatewayEnabled returns true when a gateway is configured and active
func (p *Processor) IsGatewayEnabled() bool {
	return p.gateway != nil
}

// Gateway returns the bound gateway
func (p *Processor) Gateway() Gateway {
	return p.gateway
}

// Authorize places an authorization hold per delivery and aggregates the
// results. Any failure voids the holds that already succeeded and yields
// PaymentStatusFailed; otherwise one processing result makes the whole
// authorization PaymentStatusProcessing.
func (p *Processor) Authorize(ctx context.Context, ord *order.Order) PaymentStatus {
	payments := p.paymentsFor(ord, OperationAuth)

	var succeeded []Payment
	atLeastOneProcessing := false
	atLeastOneError := false

	for _, pay := range payments {
		if atLeastOneError {
			// No point authorizing further deliveries, all holds get reversed
			pay.Result = PaymentStatusFailed
			pay.Message = "skipped after earlier authorization failure"
			p.record(ctx, pay)
			continue
		}

		result, err := p.gateway.Authorize(ctx, pay)
		if err != nil {
			p.logger.Error("authorize failed",
				zap.String("order_number", pay.OrderNumber),
				zap.String("delivery_number", pay.DeliveryNumber),
				zap.Error(err),
			)
			result = pay
			result.Result = PaymentStatusFailed
			result.Message = err.Error()
		}
		p.record(ctx, result)

		switch result.Result {
		case PaymentStatusOk:
			succeeded = append(succeeded, result)
		case PaymentStatusProcessing:
			atLeastOneProcessing = true
		default:
			atLeastOneError = true
		}
	}

	if atLeastOneError {
		p.reverseAuthorizations(ctx, succeeded)
		return PaymentStatusFailed
	}
	if atLeastOneProcessing {
		return PaymentStatusProcessing
	}
	return PaymentStatusOk
}

// CancelOrder reverses the order's outstanding authorization holds.
// Shipped deliveries are skipped: their funds were captured and go back
// through RefundNotification instead. Used by the compensating cancel
// transition.
func (p *Processor) CancelOrder(ctx context.Context, ord *order.Order) PaymentStatus {
	if !p.IsGatewayEnabled() || !p.gateway.Mode().IsOnline() {
		// Offline gateways have nothing to reverse
		return PaymentStatusOk
	}

	status := PaymentStatusOk
	for _, pay := range p.voidablePayments(ord) {
		result, err := p.gateway.Void(ctx, pay)
		if err != nil {
			p.logger.Error("void failed",
				zap.String("order_number", pay.OrderNumber),
				zap.String("delivery_number", pay.DeliveryNumber),
				zap.Error(err),
			)
			result = pay
			result.Result = PaymentStatusFailed
			result.Message = err.Error()
		}
		p.record(ctx, result)
		if result.Result != PaymentStatusOk {
			status = PaymentStatusFailed
		}
	}
	return status
}

// ShipmentComplete captures the authorization hold for one delivery.
// Fired when the delivery leaves the warehouse, so funds are collected
// only for goods that actually shipped.
func (p *Processor) ShipmentComplete(ctx context.Context, ord *order.Order, deliveryNumber string) PaymentStatus {
	delivery := ord.GetDelivery(deliveryNumber)
	if delivery == nil {
		return PaymentStatusFailed
	}
	if !p.IsGatewayEnabled() || !p.gateway.Mode().IsOnline() {
		// Offline funds settle outside the gateway
		return PaymentStatusOk
	}

	pay := p.paymentFor(ord, delivery, OperationCapture)
	result, err := p.gateway.Capture(ctx, pay)
	if err != nil {
		p.logger.Error("capture failed",
			zap.String("order_number", pay.OrderNumber),
			zap.String("delivery_number", pay.DeliveryNumber),
			zap.Error(err),
		)
		result = pay
		result.Result = PaymentStatusFailed
		result.Message = err.Error()
	}
	p.record(ctx, result)
	return result.Result
}

// RefundNotification returns captured funds to the customer. Online
// gateways execute the refund; offline payments only record it, the
// money moves by hand.
func (p *Processor) RefundNotification(ctx context.Context, ord *order.Order, amount decimal.Decimal) PaymentStatus {
	pay := Payment{
		OrderNumber:  ord.OrderNumber,
		ShopCode:     ord.ShopCode,
		GatewayLabel: ord.PgLabel,
		Operation:    OperationRefund,
		Amount:       amount,
		Currency:     ord.Currency,
		ProcessedAt:  time.Now(),
	}

	if !p.IsGatewayEnabled() {
		pay.Result = PaymentStatusFailed
		pay.Message = "no payment gateway configured"
		p.record(ctx, pay)
		return PaymentStatusFailed
	}
	if !p.gateway.Mode().IsOnline() {
		pay.Result = PaymentStatusOk
		pay.Message = "offline refund, settled manually"
		p.record(ctx, pay)
		return PaymentStatusOk
	}

	result, err := p.gateway.Refund(ctx, pay)
	if err != nil {
		p.logger.Error("refund failed",
			zap.String("order_number", pay.OrderNumber),
			zap.Error(err),
		)
		result = pay
		result.Result = PaymentStatusFailed
		result.Message = err.Error()
	}
	p.record(ctx, result)
	return result.Result
}

// paymentsFor builds one payment per delivery; an order without deliveries
// yields a single payment for the grand total.
func (p *Processor) paymentsFor(ord *order.Order, op PaymentOperation) []Payment {
	if len(ord.Deliveries) == 0 {
		return []Payment{{
			OrderNumber:  ord.OrderNumber,
			ShopCode:     ord.ShopCode,
			GatewayLabel: ord.PgLabel,
			Operation:    op,
			Amount:       ord.GrandTotal,
			Currency:     ord.Currency,
			ProcessedAt:  time.Now(),
		}}
	}

	payments := make([]Payment, 0, len(ord.Deliveries))
	for idx := range ord.Deliveries {
		payments = append(payments, p.paymentFor(ord, &ord.Deliveries[idx], op))
	}
	return payments
}

// voidablePayments builds void payments for deliveries whose holds are
// still outstanding. Shipped deliveries are excluded, their funds were
// already captured.
func (p *Processor) voidablePayments(ord *order.Order) []Payment {
	if len(ord.Deliveries) == 0 {
		return p.paymentsFor(ord, OperationVoidCapture)
	}

	payments := make([]Payment, 0, len(ord.Deliveries))
	for idx := range ord.Deliveries {
		delivery := &ord.Deliveries[idx]
		if delivery.Status == order.DeliveryStatusShipped {
			continue
		}
		payments = append(payments, p.paymentFor(ord, delivery, OperationVoidCapture))
	}
	return payments
}

func (p *Processor) paymentFor(ord *order.Order, delivery *order.Delivery, op PaymentOperation) Payment {
	return Payment{
		OrderNumber:    ord.OrderNumber,
		DeliveryNumber: delivery.DeliveryNumber,
		ShopCode:       ord.ShopCode,
		GatewayLabel:   ord.PgLabel,
		Operation:      op,
		Amount:         delivery.ItemsTotal().Add(delivery.Cost),
		Currency:       ord.Currency,
		ProcessedAt:    time.Now(),
	}
}

func (p *Processor) reverseAuthorizations(ctx context.Context, succeeded []Payment) {
	for _, pay := range succeeded {
		pay.Operation = OperationVoidCapture
		result, err := p.gateway.Void(ctx, pay)
		if err != nil {
			p.logger.Error("reverse authorization failed",
				zap.String("order_number", pay.OrderNumber),
				zap.String("delivery_number", pay.DeliveryNumber),
				zap.Error(err),
			)
			continue
		}
		p.record(ctx, result)
	}
}

func (p *Processor) record(ctx context.Context, pay Payment) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, pay); err != nil {
		p.logger.Warn("payment attempt not recorded",
			zap.String("order_number", pay.OrderNumber),
			zap.Error(err),
		)
	}
}
