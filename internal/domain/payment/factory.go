package payment

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// GatewayDisabledError signals that a gateway is configured on the order
// but not active for the shop. It aborts the transition before any
// external call is made.
type GatewayDisabledError struct {
	Label    string
	ShopCode string
}

// Error implements the error interface
func (e *GatewayDisabledError) Error() string {
	return fmt.Sprintf("payment gateway %s is disabled in shop %s", e.Label, e.ShopCode)
}

// NewGatewayDisabledError creates a new disabled-gateway error
func NewGatewayDisabledError(label, shopCode string) *GatewayDisabledError {
	return &GatewayDisabledError{Label: label, ShopCode: shopCode}
}

// ProcessorFactory creates a fresh Processor per invocation for a
// gateway-label + shop pair. Gateways are registered per shop; a shop
// without its own registration falls through to nothing, which the
// caller resolves by asking with the master shop code.
type ProcessorFactory struct {
	mu       sync.RWMutex
	gateways map[string]map[string]Gateway // shopCode -> label -> gateway
	recorder PaymentRecorder
	logger   *zap.Logger
}

// ProcessorFactoryOption is a functional option for configuring the factory
type ProcessorFactoryOption func(*ProcessorFactory)

// WithRecorder attaches external payment persistence to created processors
func WithRecorder(recorder PaymentRecorder) ProcessorFactoryOption {
	return func(f *ProcessorFactory) {
		f.recorder = recorder
	}
}

// WithLogger sets the logger passed to created processors
func WithLogger(logger *zap.Logger) ProcessorFactoryOption {
	return func(f *ProcessorFactory) {
		f.logger = logger
	}
}

// NewProcessorFactory creates a new factory
func NewProcessorFactory(opts ...ProcessorFactoryOption) *ProcessorFactory {
	f := &ProcessorFactory{
		gateways: make(map[string]map[string]Gateway),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RegisterGateway makes a gateway available to a shop under its label
func (f *ProcessorFactory) RegisterGateway(shopCode string, gateway Gateway) {
	f.mu.Lock()
	defer f.mu.Unlock()
	shopGateways, ok := f.gateways[shopCode]
	if !ok {
		shopGateways = make(map[string]Gateway)
		f.gateways[shopCode] = shopGateways
	}
	shopGateways[gateway.Label()] = gateway
}

// UnregisterGateway disables a gateway for a shop
func (f *ProcessorFactory) UnregisterGateway(shopCode, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if shopGateways, ok := f.gateways[shopCode]; ok {
		delete(shopGateways, label)
	}
}

// Create returns a fresh processor for the gateway label in the given
// shop. A processor is always returned; when no gateway is registered the
// processor reports IsGatewayEnabled() == false and the caller decides
// how to fail.
func (f *ProcessorFactory) Create(label, shopCode string) *Processor {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var gateway Gateway
	if shopGateways, ok := f.gateways[shopCode]; ok {
		gateway = shopGateways[label]
	}
	return NewProcessor(gateway, f.recorder, f.logger)
}
