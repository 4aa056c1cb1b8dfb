package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderError is the base error for failed order transitions.
// Callers of FireTransition catch it to distinguish transition failures
// from infrastructure errors.
type OrderError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *OrderError) Error() string {
	return e.Message
}

// NewOrderError creates a new order error
func NewOrderError(code, message string) *OrderError {
	return &OrderError{Code: code, Message: message}
}

// ItemAllocationError signals that inventory cannot satisfy a line item.
// It aborts the current transition and carries the offending SKU and the
// quantity that was requested.
type ItemAllocationError struct {
	SkuCode  string
	Quantity decimal.Decimal
	Message  string
}

// Error implements the error interface
func (e *ItemAllocationError) Error() string {
	return fmt.Sprintf("cannot allocate %s of sku %s: %s", e.Quantity, e.SkuCode, e.Message)
}

// NewItemAllocationError creates a new allocation error
func NewItemAllocationError(skuCode string, quantity decimal.Decimal, message string) *ItemAllocationError {
	return &ItemAllocationError{SkuCode: skuCode, Quantity: quantity, Message: message}
}
