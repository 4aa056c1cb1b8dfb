package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository persists customer orders
type OrderRepository interface {
	// FindByID finds an order by its ID, deliveries and items included
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByOrderNumber finds an order by its unique order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	// FindByCustomerEmail finds a customer's orders, newest first
	FindByCustomerEmail(ctx context.Context, email string) ([]Order, error)
	// Save persists the order and its deliveries with optimistic version check.
	// Returns shared.ErrConcurrencyConflict on version mismatch.
	Save(ctx context.Context, order *Order) error
	// GenerateOrderNumber produces the next order number for a shop
	GenerateOrderNumber(ctx context.Context, shopCode string) (string, error)
}
