package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestOrder(t *testing.T) *Order {
	ord, err := NewOrder("SHOP10-2026-00001", "SHOP10", "bob@test.example.com", "EUR")
	require.NoError(t, err)
	return ord
}

func createTestDelivery(t *testing.T, number string, group DeliveryGroup, cost float64) *Delivery {
	delivery, err := NewDelivery(number, group, decimal.NewFromFloat(cost))
	require.NoError(t, err)
	return delivery
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusNone, true},
		{OrderStatusPending, true},
		{OrderStatusWaitingPayment, true},
		{OrderStatusInProgress, true},
		{OrderStatusCompleted, true},
		{OrderStatusCancelled, true},
		{OrderStatusReturned, true},
		{OrderStatus("os.unknown"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		// From os.none
		{OrderStatusNone, OrderStatusPending, true},
		{OrderStatusNone, OrderStatusCancelled, true},
		{OrderStatusNone, OrderStatusInProgress, false},
		{OrderStatusNone, OrderStatusCompleted, false},
		// From os.pending
		{OrderStatusPending, OrderStatusInProgress, true},
		{OrderStatusPending, OrderStatusWaitingPayment, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		// From os.waiting.payment
		{OrderStatusWaitingPayment, OrderStatusInProgress, true},
		{OrderStatusWaitingPayment, OrderStatusCancelled, true},
		{OrderStatusWaitingPayment, OrderStatusCompleted, false},
		{OrderStatusWaitingPayment, OrderStatusPending, false},
		// From os.in.progress
		{OrderStatusInProgress, OrderStatusCompleted, true},
		{OrderStatusInProgress, OrderStatusReturned, true},
		{OrderStatusInProgress, OrderStatusCancelled, true},
		{OrderStatusInProgress, OrderStatusPending, false},
		// From os.completed
		{OrderStatusCompleted, OrderStatusReturned, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		// Terminal states
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusInProgress, false},
		{OrderStatusReturned, OrderStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Order Tests
// ============================================

func TestNewOrder(t *testing.T) {
	t.Run("creates order in os.none", func(t *testing.T) {
		ord := createTestOrder(t)

		assert.Equal(t, OrderStatusNone, ord.Status)
		assert.Equal(t, "SHOP10-2026-00001", ord.OrderNumber)
		assert.True(t, ord.GrandTotal.IsZero())
		assert.Len(t, ord.GetDomainEvents(), 1)
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		_, err := NewOrder("", "SHOP10", "bob@test.example.com", "EUR")
		assert.Error(t, err)

		_, err = NewOrder("SHOP10-2026-00001", "", "bob@test.example.com", "EUR")
		assert.Error(t, err)

		_, err = NewOrder("SHOP10-2026-00001", "SHOP10", "", "EUR")
		assert.Error(t, err)

		_, err = NewOrder("SHOP10-2026-00001", "SHOP10", "bob@test.example.com", "")
		assert.Error(t, err)
	})
}

func TestOrder_PaymentGatewayShop(t *testing.T) {
	t.Run("uses own shop by default", func(t *testing.T) {
		ord := createTestOrder(t)
		assert.Equal(t, "SHOP10", ord.PaymentGatewayShop())
	})

	t.Run("uses master shop when set", func(t *testing.T) {
		ord := createTestOrder(t)
		ord.SetMasterShop("MASTER")
		assert.Equal(t, "MASTER", ord.PaymentGatewayShop())
	})
}

func TestOrder_AddDelivery(t *testing.T) {
	t.Run("recalculates totals", func(t *testing.T) {
		ord := createTestOrder(t)

		delivery := createTestDelivery(t, "SHOP10-2026-00001-1", DeliveryGroupStandard, 16.77)
		require.NoError(t, delivery.AddItem("CC_TEST1", "Test 1", "WAREHOUSE_1", decimal.NewFromInt(3), decimal.NewFromFloat(190.01)))
		require.NoError(t, delivery.AddItem("CC_TEST3", "Test 3", "WAREHOUSE_1", decimal.NewFromInt(2), decimal.NewFromFloat(70.99)))

		require.NoError(t, ord.AddDelivery(delivery))

		assert.True(t, ord.ListTotal.Equal(decimal.NewFromFloat(712.01)), "list total was %s", ord.ListTotal)
		assert.True(t, ord.DeliveryCost.Equal(decimal.NewFromFloat(16.77)))
		assert.True(t, ord.GrandTotal.Equal(decimal.NewFromFloat(728.78)), "grand total was %s", ord.GrandTotal)
	})

	t.Run("rejected after checkout", func(t *testing.T) {
		ord := createTestOrder(t)
		require.NoError(t, ord.TransitionTo(OrderStatusPending))

		delivery := createTestDelivery(t, "SHOP10-2026-00001-1", DeliveryGroupStandard, 0)
		assert.Error(t, ord.AddDelivery(delivery))
	})
}

func TestOrder_ApplyPromoSavings(t *testing.T) {
	setup := func(t *testing.T) *Order {
		ord := createTestOrder(t)
		delivery := createTestDelivery(t, "SHOP10-2026-00001-1", DeliveryGroupStandard, 0)
		require.NoError(t, delivery.AddItem("CC_TEST1", "Test 1", "WAREHOUSE_1", decimal.NewFromInt(1), decimal.NewFromInt(100)))
		require.NoError(t, ord.AddDelivery(delivery))
		return ord
	}

	t.Run("deducts from grand total", func(t *testing.T) {
		ord := setup(t)
		require.NoError(t, ord.ApplyPromoSavings(decimal.NewFromInt(15)))

		assert.True(t, ord.GrandTotal.Equal(decimal.NewFromInt(85)))
		assert.True(t, ord.PromoSavings.Equal(decimal.NewFromInt(15)))
	})

	t.Run("clamped at grand total", func(t *testing.T) {
		ord := setup(t)
		require.NoError(t, ord.ApplyPromoSavings(decimal.NewFromInt(150)))

		assert.True(t, ord.GrandTotal.IsZero())
		assert.True(t, ord.PromoSavings.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects negative savings", func(t *testing.T) {
		ord := setup(t)
		assert.Error(t, ord.ApplyPromoSavings(decimal.NewFromInt(-1)))
	})
}

func TestOrder_MarkPromoApplied(t *testing.T) {
	ord := createTestOrder(t)

	ord.MarkPromoApplied("SALE15")
	ord.MarkPromoApplied("SALE15")
	ord.MarkPromoApplied("COUPON:CODE1")

	assert.Equal(t, []string{"SALE15", "COUPON:CODE1"}, ord.AppliedPromo)
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("records reason", func(t *testing.T) {
		ord := createTestOrder(t)
		require.NoError(t, ord.Cancel("payment failed"))

		assert.Equal(t, OrderStatusCancelled, ord.Status)
		assert.Equal(t, "payment failed", ord.CancelReason)
		assert.True(t, ord.IsTerminal())
	})

	t.Run("rejected from terminal state", func(t *testing.T) {
		ord := createTestOrder(t)
		require.NoError(t, ord.Cancel("first"))

		err := ord.Cancel("second")
		assert.Error(t, err)
		assert.Equal(t, "first", ord.CancelReason)
	})
}

func TestOrder_GetDelivery(t *testing.T) {
	ord := createTestOrder(t)
	delivery := createTestDelivery(t, "SHOP10-2026-00001-1", DeliveryGroupStandard, 0)
	require.NoError(t, delivery.AddItem("CC_TEST1", "Test 1", "WAREHOUSE_1", decimal.NewFromInt(1), decimal.NewFromInt(10)))
	require.NoError(t, ord.AddDelivery(delivery))

	assert.NotNil(t, ord.GetDelivery("SHOP10-2026-00001-1"))
	assert.Nil(t, ord.GetDelivery("SHOP10-2026-00001-9"))
}

// ============================================
// Delivery Tests
// ============================================

func TestDelivery_ChangeStatus(t *testing.T) {
	t.Run("moves forward", func(t *testing.T) {
		delivery := createTestDelivery(t, "D-1", DeliveryGroupStandard, 0)

		require.NoError(t, delivery.ChangeStatus(DeliveryStatusReserved))
		require.NoError(t, delivery.ChangeStatus(DeliveryStatusAllocated))
		require.NoError(t, delivery.ChangeStatus(DeliveryStatusShipped))
	})

	t.Run("rejects moving backwards", func(t *testing.T) {
		delivery := createTestDelivery(t, "D-1", DeliveryGroupStandard, 0)
		require.NoError(t, delivery.ChangeStatus(DeliveryStatusAllocated))

		assert.Error(t, delivery.ChangeStatus(DeliveryStatusReserved))
		assert.Equal(t, DeliveryStatusAllocated, delivery.Status)
	})

	t.Run("cancel allowed from any forward state", func(t *testing.T) {
		delivery := createTestDelivery(t, "D-1", DeliveryGroupStandard, 0)
		require.NoError(t, delivery.ChangeStatus(DeliveryStatusShipping))
		assert.NoError(t, delivery.ChangeStatus(DeliveryStatusCancelled))
	})
}

func TestDelivery_AddItem(t *testing.T) {
	delivery := createTestDelivery(t, "D-1", DeliveryGroupStandard, 0)

	t.Run("accumulates items total", func(t *testing.T) {
		require.NoError(t, delivery.AddItem("SKU-1", "One", "WAREHOUSE_1", decimal.NewFromInt(2), decimal.NewFromFloat(9.99)))
		require.NoError(t, delivery.AddItem("SKU-2", "Two", "WAREHOUSE_1", decimal.NewFromInt(1), decimal.NewFromFloat(5.01)))

		assert.True(t, delivery.ItemsTotal().Equal(decimal.NewFromFloat(24.99)))
	})

	t.Run("rejects invalid lines", func(t *testing.T) {
		assert.Error(t, delivery.AddItem("", "One", "WAREHOUSE_1", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		assert.Error(t, delivery.AddItem("SKU-1", "One", "", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		assert.Error(t, delivery.AddItem("SKU-1", "One", "WAREHOUSE_1", decimal.Zero, decimal.NewFromInt(1)))
		assert.Error(t, delivery.AddItem("SKU-1", "One", "WAREHOUSE_1", decimal.NewFromInt(1), decimal.NewFromInt(-1)))
	})
}

func TestDelivery_IsElectronic(t *testing.T) {
	electronic := createTestDelivery(t, "D-1", DeliveryGroupElectronic, 0)
	standard := createTestDelivery(t, "D-2", DeliveryGroupStandard, 0)

	assert.True(t, electronic.IsElectronic())
	assert.False(t, standard.IsElectronic())
}
