package payment

import "context"

// GatewayMode is the capability variant of a payment gateway. It replaces
// per-feature boolean flags with a single dispatch point: the pending
// handler branches on the mode, nothing else.
type GatewayMode string

const (
	// GatewayModeOnlineSync authorizes synchronously against an external processor
	GatewayModeOnlineSync GatewayMode = "ONLINE_SYNC"
	// GatewayModeOfflineAutoCapture captures without an external call (B2B invoice)
	GatewayModeOfflineAutoCapture GatewayMode = "OFFLINE_AUTO_CAPTURE"
	// GatewayModeOfflineManual waits for a manual payment confirmation
	GatewayModeOfflineManual GatewayMode = "OFFLINE_MANUAL"
)

// IsOnline returns true for gateways that call an external processor
func (m GatewayMode) IsOnline() bool {
	return m == GatewayModeOnlineSync
}

// IsAutoCapture returns true for offline gateways that settle immediately
func (m GatewayMode) IsAutoCapture() bool {
	return m == GatewayModeOfflineAutoCapture
}

// Gateway abstracts one payment gateway. Implementations are not assumed
// to be thread-safe; the factory hands a fresh processor per invocation.
type Gateway interface {
	// Label identifies the gateway in order and shop configuration
	Label() string
	// Mode returns the capability variant of this gateway
	Mode() GatewayMode
	// Authorize places a hold for the payment amount
	Authorize(ctx context.Context, payment Payment) (Payment, error)
	// Capture settles a previously authorized payment
	Capture(ctx context.Context, payment Payment) (Payment, error)
	// Refund returns a captured amount to the customer
	Refund(ctx context.Context, payment Payment) (Payment, error)
	// Void releases an authorization hold without settling
	Void(ctx context.Context, payment Payment) (Payment, error)
}
