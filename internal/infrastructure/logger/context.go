package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ShopCodeKey is the context key for the shop the request acts on
	ShopCodeKey contextKey = "shop_code"
	// OrderNumberKey is the context key for the order a request operates on
	OrderNumberKey contextKey = "order_number"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithShopCode adds the shop code to context and returns the enriched logger
func WithShopCode(ctx context.Context, logger *zap.Logger, shopCode string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ShopCodeKey, shopCode)
	enriched := logger.With(zap.String("shop_code", shopCode))
	return WithContext(ctx, enriched), enriched
}

// WithOrderNumber adds the order number to context and returns the enriched logger
func WithOrderNumber(ctx context.Context, logger *zap.Logger, orderNumber string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, OrderNumberKey, orderNumber)
	enriched := logger.With(zap.String("order_number", orderNumber))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetShopCode retrieves the shop code from context
func GetShopCode(ctx context.Context) string {
	if shopCode, ok := ctx.Value(ShopCodeKey).(string); ok {
		return shopCode
	}
	return ""
}

// GetOrderNumber retrieves the order number from context
func GetOrderNumber(ctx context.Context) string {
	if orderNumber, ok := ctx.Value(OrderNumberKey).(string); ok {
		return orderNumber
	}
	return ""
}
