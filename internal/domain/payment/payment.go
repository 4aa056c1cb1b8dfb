package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the outcome of one gateway operation
type PaymentStatus string

const (
	PaymentStatusOk         PaymentStatus = "Ok"
	PaymentStatusProcessing PaymentStatus = "Processing"
	PaymentStatusFailed     PaymentStatus = "Failed"
	PaymentStatusManual     PaymentStatus = "Manual" // Awaiting offline confirmation
)

// PaymentOperation names the gateway operation performed
type PaymentOperation string

const (
	OperationAuth        PaymentOperation = "AUTH"
	OperationAuthCapture PaymentOperation = "AUTH_CAPTURE"
	OperationCapture     PaymentOperation = "CAPTURE"
	OperationRefund      PaymentOperation = "REFUND"
	OperationVoidCapture PaymentOperation = "VOID_CAPTURE"
)

// Payment is an ephemeral value object representing one gateway attempt.
// The core does not persist payments itself; a PaymentRecorder may be
// attached to the processor to hand attempts to external persistence.
type Payment struct {
	OrderNumber    string
	DeliveryNumber string
	ShopCode       string
	GatewayLabel   string
	Operation      PaymentOperation
	Amount         decimal.Decimal
	Currency       string
	TransactionRef string
	Result         PaymentStatus
	Message        string
	ProcessedAt    time.Time
}

// PaymentRecorder receives every gateway attempt for external persistence
type PaymentRecorder interface {
	Record(ctx context.Context, payment Payment) error
}
