package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openshop/backend/internal/domain/payment"
)

// InvoiceGateway implements payment.Gateway for offline settlement. No
// external processor is involved: auto-capture instances settle
// immediately (B2B invoicing), manual instances wait for a payment
// confirmation recorded out of band.
type InvoiceGateway struct {
	label string
	mode  payment.GatewayMode
}

// NewInvoiceGateway creates an offline gateway. Mode must be one of the
// offline variants.
func NewInvoiceGateway(label string, mode payment.GatewayMode) (*InvoiceGateway, error) {
	if label == "" {
		return nil, fmt.Errorf("invoice gateway: label is required")
	}
	if mode.IsOnline() {
		return nil, fmt.Errorf("invoice gateway: mode %s requires an external processor", mode)
	}
	return &InvoiceGateway{label: label, mode: mode}, nil
}

// Label implements payment.Gateway
func (g *InvoiceGateway) Label() string {
	return g.label
}

// Mode implements payment.Gateway
func (g *InvoiceGateway) Mode() payment.GatewayMode {
	return g.mode
}

// Authorize records an offline hold. Auto-capture gateways settle at once;
// manual gateways stay pending until confirmed.
func (g *InvoiceGateway) Authorize(_ context.Context, pay payment.Payment) (payment.Payment, error) {
	return g.settle(pay), nil
}

// Capture settles an offline payment
func (g *InvoiceGateway) Capture(_ context.Context, pay payment.Payment) (payment.Payment, error) {
	pay.TransactionRef = g.nextRef()
	pay.Result = payment.PaymentStatusOk
	pay.ProcessedAt = time.Now()
	return pay, nil
}

// Refund acknowledges an offline refund; the transfer happens out of band
func (g *InvoiceGateway) Refund(_ context.Context, pay payment.Payment) (payment.Payment, error) {
	pay.TransactionRef = g.nextRef()
	pay.Result = payment.PaymentStatusManual
	pay.ProcessedAt = time.Now()
	return pay, nil
}

// Void releases an offline hold
func (g *InvoiceGateway) Void(_ context.Context, pay payment.Payment) (payment.Payment, error) {
	pay.TransactionRef = g.nextRef()
	pay.Result = payment.PaymentStatusOk
	pay.ProcessedAt = time.Now()
	return pay, nil
}

func (g *InvoiceGateway) settle(pay payment.Payment) payment.Payment {
	pay.TransactionRef = g.nextRef()
	pay.ProcessedAt = time.Now()
	if g.mode.IsAutoCapture() {
		pay.Result = payment.PaymentStatusOk
	} else {
		pay.Result = payment.PaymentStatusManual
	}
	return pay
}

func (g *InvoiceGateway) nextRef() string {
	return "INV-" + uuid.NewString()
}

var _ payment.Gateway = (*InvoiceGateway)(nil)
