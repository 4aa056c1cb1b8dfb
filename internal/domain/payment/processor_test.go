package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/openshop/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts per-delivery authorization verdicts and records
// every operation it sees.
type fakeGateway struct {
	label      string
	mode       GatewayMode
	verdicts   map[string]PaymentStatus // delivery number -> authorize verdict
	authorizes []string
	voids      []string
	captures   []string
	refunds    []string
	authErr    error
	captureErr error
	refundErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		label:    "testPaymentGateway",
		mode:     GatewayModeOnlineSync,
		verdicts: make(map[string]PaymentStatus),
	}
}

func (g *fakeGateway) Label() string     { return g.label }
func (g *fakeGateway) Mode() GatewayMode { return g.mode }

func (g *fakeGateway) Authorize(ctx context.Context, pay Payment) (Payment, error) {
	g.authorizes = append(g.authorizes, pay.DeliveryNumber)
	if g.authErr != nil {
		return pay, g.authErr
	}
	pay.Result = PaymentStatusOk
	if verdict, ok := g.verdicts[pay.DeliveryNumber]; ok {
		pay.Result = verdict
	}
	return pay, nil
}

func (g *fakeGateway) Capture(ctx context.Context, pay Payment) (Payment, error) {
	g.captures = append(g.captures, pay.DeliveryNumber)
	if g.captureErr != nil {
		return pay, g.captureErr
	}
	pay.Result = PaymentStatusOk
	return pay, nil
}

func (g *fakeGateway) Refund(ctx context.Context, pay Payment) (Payment, error) {
	g.refunds = append(g.refunds, pay.OrderNumber)
	if g.refundErr != nil {
		return pay, g.refundErr
	}
	pay.Result = PaymentStatusOk
	return pay, nil
}

func (g *fakeGateway) Void(ctx context.Context, pay Payment) (Payment, error) {
	g.voids = append(g.voids, pay.DeliveryNumber)
	pay.Result = PaymentStatusOk
	return pay, nil
}

// fakeRecorder collects recorded payment attempts
type fakeRecorder struct {
	attempts []Payment
}

func (r *fakeRecorder) Record(ctx context.Context, pay Payment) error {
	r.attempts = append(r.attempts, pay)
	return nil
}

// Test helpers
func createPaidOrder(t *testing.T, deliveryNumbers ...string) *order.Order {
	ord, err := order.NewOrder("SHOP10-2026-00001", "SHOP10", "bob@test.example.com", "EUR")
	require.NoError(t, err)
	require.NoError(t, ord.SetPaymentGateway("testPaymentGateway"))

	for _, number := range deliveryNumbers {
		delivery, err := order.NewDelivery(number, order.DeliveryGroupStandard, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, delivery.AddItem("CC_TEST1", "Test 1", "WAREHOUSE_1", decimal.NewFromInt(1), decimal.NewFromInt(50)))
		require.NoError(t, ord.AddDelivery(delivery))
	}
	return ord
}

// ============================================
// Processor.Authorize Tests
// ============================================

func TestProcessor_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("all deliveries ok", func(t *testing.T) {
		gateway := newFakeGateway()
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1", "D-2")

		result := processor.Authorize(ctx, ord)

		assert.Equal(t, PaymentStatusOk, result)
		assert.Equal(t, []string{"D-1", "D-2"}, gateway.authorizes)
		assert.Empty(t, gateway.voids)
	})

	t.Run("one processing makes whole authorization processing", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.verdicts["D-2"] = PaymentStatusProcessing
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1", "D-2")

		result := processor.Authorize(ctx, ord)

		assert.Equal(t, PaymentStatusProcessing, result)
		assert.Empty(t, gateway.voids)
	})

	t.Run("one failure voids earlier holds", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.verdicts["D-2"] = PaymentStatusFailed
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1", "D-2", "D-3")

		result := processor.Authorize(ctx, ord)

		assert.Equal(t, PaymentStatusFailed, result)
		assert.Equal(t, []string{"D-1"}, gateway.voids, "only the successful hold is reversed")
		// D-3 is skipped, never authorized
		assert.Equal(t, []string{"D-1", "D-2"}, gateway.authorizes)
	})

	t.Run("gateway error counts as failure", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.authErr = errors.New("connection reset")
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1")

		result := processor.Authorize(ctx, ord)

		assert.Equal(t, PaymentStatusFailed, result)
	})

	t.Run("order without deliveries authorizes grand total", func(t *testing.T) {
		gateway := newFakeGateway()
		recorder := &fakeRecorder{}
		processor := NewProcessor(gateway, recorder, nil)
		ord := createPaidOrder(t)

		result := processor.Authorize(ctx, ord)

		assert.Equal(t, PaymentStatusOk, result)
		require.Len(t, recorder.attempts, 1)
		assert.Empty(t, recorder.attempts[0].DeliveryNumber)
	})

	t.Run("every attempt is recorded", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.verdicts["D-1"] = PaymentStatusFailed
		recorder := &fakeRecorder{}
		processor := NewProcessor(gateway, recorder, nil)
		ord := createPaidOrder(t, "D-1", "D-2")

		processor.Authorize(ctx, ord)

		// D-1 failed, D-2 recorded as skipped
		require.Len(t, recorder.attempts, 2)
		assert.Equal(t, PaymentStatusFailed, recorder.attempts[0].Result)
		assert.Equal(t, PaymentStatusFailed, recorder.attempts[1].Result)
		assert.Equal(t, "skipped after earlier authorization failure", recorder.attempts[1].Message)
	})
}

// ============================================
// Processor.CancelOrder Tests
// ============================================

func TestProcessor_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("online gateway voids per delivery", func(t *testing.T) {
		gateway := newFakeGateway()
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1", "D-2")

		result := processor.CancelOrder(ctx, ord)

		assert.Equal(t, PaymentStatusOk, result)
		assert.Equal(t, []string{"D-1", "D-2"}, gateway.voids)
	})

	t.Run("offline gateway has nothing to reverse", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.mode = GatewayModeOfflineManual
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1")

		result := processor.CancelOrder(ctx, ord)

		assert.Equal(t, PaymentStatusOk, result)
		assert.Empty(t, gateway.voids)
	})

	t.Run("disabled processor reports ok", func(t *testing.T) {
		processor := NewProcessor(nil, nil, nil)
		ord := createPaidOrder(t, "D-1")

		assert.Equal(t, PaymentStatusOk, processor.CancelOrder(ctx, ord))
	})

	t.Run("shipped delivery is not voided", func(t *testing.T) {
		gateway := newFakeGateway()
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1", "D-2")
		require.NoError(t, ord.GetDelivery("D-1").ChangeStatus(order.DeliveryStatusShipped))

		result := processor.CancelOrder(ctx, ord)

		assert.Equal(t, PaymentStatusOk, result)
		assert.Equal(t, []string{"D-2"}, gateway.voids)
	})
}

// ============================================
// Processor.ShipmentComplete Tests
// ============================================

func TestProcessor_ShipmentComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("captures the delivery hold", func(t *testing.T) {
		gateway := newFakeGateway()
		recorder := &fakeRecorder{}
		processor := NewProcessor(gateway, recorder, nil)
		ord := createPaidOrder(t, "D-1", "D-2")

		result := processor.ShipmentComplete(ctx, ord, "D-2")

		assert.Equal(t, PaymentStatusOk, result)
		assert.Equal(t, []string{"D-2"}, gateway.captures)
		require.Len(t, recorder.attempts, 1)
		assert.Equal(t, OperationCapture, recorder.attempts[0].Operation)
		assert.Equal(t, "D-2", recorder.attempts[0].DeliveryNumber)
	})

	t.Run("unknown delivery fails", func(t *testing.T) {
		gateway := newFakeGateway()
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1")

		assert.Equal(t, PaymentStatusFailed, processor.ShipmentComplete(ctx, ord, "D-9"))
		assert.Empty(t, gateway.captures)
	})

	t.Run("gateway error fails the capture", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.captureErr = errors.New("gateway down")
		recorder := &fakeRecorder{}
		processor := NewProcessor(gateway, recorder, nil)
		ord := createPaidOrder(t, "D-1")

		result := processor.ShipmentComplete(ctx, ord, "D-1")

		assert.Equal(t, PaymentStatusFailed, result)
		require.Len(t, recorder.attempts, 1)
		assert.Equal(t, PaymentStatusFailed, recorder.attempts[0].Result)
	})

	t.Run("offline gateway settles outside", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.mode = GatewayModeOfflineManual
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1")

		assert.Equal(t, PaymentStatusOk, processor.ShipmentComplete(ctx, ord, "D-1"))
		assert.Empty(t, gateway.captures)
	})

	t.Run("disabled processor reports ok without panicking", func(t *testing.T) {
		processor := NewProcessor(nil, nil, nil)
		ord := createPaidOrder(t, "D-1")

		assert.NotPanics(t, func() {
			assert.Equal(t, PaymentStatusOk, processor.ShipmentComplete(ctx, ord, "D-1"))
		})
	})
}

// ============================================
// Processor.RefundNotification Tests
// ============================================

func TestProcessor_RefundNotification(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(50)

	t.Run("online gateway executes the refund", func(t *testing.T) {
		gateway := newFakeGateway()
		recorder := &fakeRecorder{}
		processor := NewProcessor(gateway, recorder, nil)
		ord := createPaidOrder(t, "D-1")

		result := processor.RefundNotification(ctx, ord, amount)

		assert.Equal(t, PaymentStatusOk, result)
		assert.Equal(t, []string{"SHOP10-2026-00001"}, gateway.refunds)
		require.Len(t, recorder.attempts, 1)
		assert.Equal(t, OperationRefund, recorder.attempts[0].Operation)
		assert.True(t, recorder.attempts[0].Amount.Equal(amount))
	})

	t.Run("gateway error fails the refund", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.refundErr = errors.New("gateway down")
		processor := NewProcessor(gateway, nil, nil)
		ord := createPaidOrder(t, "D-1")

		assert.Equal(t, PaymentStatusFailed, processor.RefundNotification(ctx, ord, amount))
	})

	t.Run("offline refund is recorded for manual settlement", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.mode = GatewayModeOfflineManual
		recorder := &fakeRecorder{}
		processor := NewProcessor(gateway, recorder, nil)
		ord := createPaidOrder(t, "D-1")

		result := processor.RefundNotification(ctx, ord, amount)

		assert.Equal(t, PaymentStatusOk, result)
		assert.Empty(t, gateway.refunds)
		require.Len(t, recorder.attempts, 1)
		assert.Equal(t, PaymentStatusOk, recorder.attempts[0].Result)
	})

	t.Run("disabled processor fails without panicking", func(t *testing.T) {
		recorder := &fakeRecorder{}
		processor := NewProcessor(nil, recorder, nil)
		ord := createPaidOrder(t, "D-1")

		assert.NotPanics(t, func() {
			assert.Equal(t, PaymentStatusFailed, processor.RefundNotification(ctx, ord, amount))
		})
		require.Len(t, recorder.attempts, 1)
		assert.Equal(t, PaymentStatusFailed, recorder.attempts[0].Result)
	})
}

// ============================================
// ProcessorFactory Tests
// ============================================

func TestProcessorFactory(t *testing.T) {
	t.Run("registered gateway yields enabled processor", func(t *testing.T) {
		factory := NewProcessorFactory()
		factory.RegisterGateway("SHOP10", newFakeGateway())

		processor := factory.Create("testPaymentGateway", "SHOP10")
		assert.True(t, processor.IsGatewayEnabled())
	})

	t.Run("unknown shop or label yields disabled processor", func(t *testing.T) {
		factory := NewProcessorFactory()
		factory.RegisterGateway("SHOP10", newFakeGateway())

		assert.False(t, factory.Create("testPaymentGateway", "SHOP99").IsGatewayEnabled())
		assert.False(t, factory.Create("otherGateway", "SHOP10").IsGatewayEnabled())
	})

	t.Run("unregister disables gateway", func(t *testing.T) {
		factory := NewProcessorFactory()
		factory.RegisterGateway("SHOP10", newFakeGateway())
		factory.UnregisterGateway("SHOP10", "testPaymentGateway")

		assert.False(t, factory.Create("testPaymentGateway", "SHOP10").IsGatewayEnabled())
	})

	t.Run("each create returns a fresh processor", func(t *testing.T) {
		factory := NewProcessorFactory()
		factory.RegisterGateway("SHOP10", newFakeGateway())

		first := factory.Create("testPaymentGateway", "SHOP10")
		second := factory.Create("testPaymentGateway", "SHOP10")
		assert.NotSame(t, first, second)
	})
}
