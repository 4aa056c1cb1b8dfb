package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID, deliveries and items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var ord order.Order
	if err := r.db.WithContext(ctx).
		Preload("Deliveries.Items").
		Preload("Deliveries").
		First(&ord, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// FindByOrderNumber finds an order by its unique order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var ord order.Order
	if err := r.db.WithContext(ctx).
		Preload("Deliveries.Items").
		Preload("Deliveries").
		Where("order_number = ?", orderNumber).
		First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// FindByCustomerEmail finds a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomerEmail(ctx context.Context, email string) ([]order.Order, error) {
	var orders []order.Order
	if err := r.db.WithContext(ctx).
		Preload("Deliveries.Items").
		Preload("Deliveries").
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an order together with its deliveries and items.
// Updates carry an optimistic version check; a mismatch returns
// shared.ErrConcurrencyConflict.
func (r *GormOrderRepository) Save(ctx context.Context, ord *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing order.Order
		err := tx.Select("version").First(&existing, "id = ?", ord.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(ord).Error
		}
		if err != nil {
			return err
		}

		if existing.Version != ord.Version {
			return shared.ErrConcurrencyConflict
		}
		ord.IncrementVersion()
		ord.UpdatedAt = time.Now()

		// Struct-based update so the JSON serializer covers the slice columns
		result := tx.Model(&order.Order{}).
			Where("id = ? AND version = ?", ord.ID, existing.Version).
			Select("status", "pg_label", "master_shop_code", "list_total",
				"delivery_cost", "promo_savings", "grand_total", "coupon_codes",
				"applied_promo", "cancel_reason", "version", "updated_at").
			Updates(ord)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.saveDeliveries(tx, ord)
	})
}

// saveDeliveries upserts the order's deliveries and their items, removing
// rows no longer present on the aggregate
func (r *GormOrderRepository) saveDeliveries(tx *gorm.DB, ord *order.Order) error {
	currentIDs := make([]uuid.UUID, len(ord.Deliveries))
	for i := range ord.Deliveries {
		currentIDs[i] = ord.Deliveries[i].ID
	}

	query := tx.Where("order_id = ?", ord.ID)
	if len(currentIDs) > 0 {
		query = query.Where("id NOT IN ?", currentIDs)
	}
	if err := query.Delete(&order.Delivery{}).Error; err != nil {
		return err
	}

	for i := range ord.Deliveries {
		delivery := &ord.Deliveries[i]
		delivery.OrderID = ord.ID
		if err := tx.Save(delivery).Error; err != nil {
			return err
		}
		for j := range delivery.Items {
			delivery.Items[j].DeliveryID = delivery.ID
			if err := tx.Save(&delivery.Items[j]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateOrderNumber produces the next order number for a shop.
// Format: SHOP-YYYY-NNNNN (e.g., SHOP10-2026-00042).
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, shopCode string) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d-", shopCode, year)

	var lastOrder order.Order
	err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("shop_code = ? AND order_number LIKE ?", shopCode, prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) >= 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[len(parts)-1], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}
