package order

import (
	"context"
	"fmt"

	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/promotion"
	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PromoBucketProvider supplies the mutually-exclusive promotion buckets
// configured for a shop. Triplets inside one bucket compete; at most one
// wins per bucket.
type PromoBucketProvider interface {
	Buckets(ctx context.Context, shopCode string) ([][]promotion.PromoTriplet, error)
}

// OrderService handles order business operations: checkout assembly and
// state-machine transitions.
type OrderService struct {
	orders         order.OrderRepository
	manager        *order.StateManager
	strategy       *promotion.BestValueStrategy
	promoBuckets   PromoBucketProvider
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders order.OrderRepository,
	manager *order.StateManager,
	strategy *promotion.BestValueStrategy,
	promoBuckets PromoBucketProvider,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:       orders,
		manager:      manager,
		strategy:     strategy,
		promoBuckets: promoBuckets,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateFromCart assembles an order from a finalized cart: generates the
// order number, splits items into deliveries by supplier with digital
// goods in their own electronic delivery, prices the total and applies
// the best-value promotion selection. The order is saved in its initial
// status; the caller fires the pending event to start fulfilment.
func (s *OrderService) CreateFromCart(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	orderNumber, err := s.orders.GenerateOrderNumber(ctx, req.ShopCode)
	if err != nil {
		return nil, err
	}

	ord, err := order.NewOrder(orderNumber, req.ShopCode, req.CustomerEmail, req.Currency)
	if err != nil {
		return nil, err
	}
	if err := ord.SetPaymentGateway(req.PgLabel); err != nil {
		return nil, err
	}
	if req.MasterShopCode != "" {
		ord.SetMasterShop(req.MasterShopCode)
	}

	if err := s.assembleDeliveries(ord, req); err != nil {
		return nil, err
	}

	if len(req.CouponCodes) > 0 {
		ord.AttachCoupons(req.CouponCodes)
	}

	if err := s.applyPromotions(ctx, ord); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, ord); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ord)

	s.logger.Info("order created",
		zap.String("order_number", ord.OrderNumber),
		zap.String("shop_code", ord.ShopCode),
		zap.String("grand_total", ord.GrandTotal.String()),
	)

	response := ToOrderResponse(ord)
	return &response, nil
}

// Transition loads an order, fires one state-machine event against it and
// persists the outcome. The handler's work and the status change are saved
// together; a handler error leaves the stored order untouched.
func (s *OrderService) Transition(ctx context.Context, orderNumber, eventID string, params map[string]interface{}) (*OrderResponse, error) {
	ord, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	event := order.NewOrderEvent(eventID, ord)
	for key, value := range params {
		event.Params[key] = value
	}

	handled, err := s.manager.FireTransition(ctx, event)
	if err != nil {
		return nil, err
	}
	if !handled {
		return nil, order.NewOrderError("NOT_HANDLED",
			fmt.Sprintf("event %s was not applied to order %s", eventID, orderNumber))
	}

	if err := s.orders.Save(ctx, ord); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ord)

	response := ToOrderResponse(ord)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its number
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	ord, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(ord)
	return &response, nil
}

// ListByCustomer retrieves a customer's orders, newest first
func (s *OrderService) ListByCustomer(ctx context.Context, email string) ([]OrderResponse, error) {
	orders, err := s.orders.FindByCustomerEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for idx := range orders {
		responses = append(responses, ToOrderResponse(&orders[idx]))
	}
	return responses, nil
}

// assembleDeliveries splits cart lines into deliveries: one per supplier
// for physical goods, one shared electronic delivery for digital goods.
// The cart-level delivery cost lands on the first physical delivery.
func (s *OrderService) assembleDeliveries(ord *order.Order, req CheckoutRequest) error {
	type deliveryKey struct {
		supplier   string
		electronic bool
	}

	keys := make([]deliveryKey, 0)
	grouped := make(map[deliveryKey][]CheckoutItemInput)
	for _, item := range req.Items {
		key := deliveryKey{supplier: item.SupplierCode, electronic: item.Electronic}
		if item.Electronic {
			// One electronic delivery regardless of supplier
			key.supplier = ""
		}
		if _, seen := grouped[key]; !seen {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], item)
	}

	costAssigned := false
	for seq, key := range keys {
		group := order.DeliveryGroupStandard
		cost := decimal.Zero
		if key.electronic {
			group = order.DeliveryGroupElectronic
		} else if !costAssigned {
			cost = req.DeliveryCost
			costAssigned = true
		}

		delivery, err := order.NewDelivery(fmt.Sprintf("%s-%d", ord.OrderNumber, seq+1), group, cost)
		if err != nil {
			return err
		}
		for _, item := range grouped[key] {
			if err := delivery.AddItem(item.SkuCode, item.SkuName, item.SupplierCode, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}
		if err := ord.AddDelivery(delivery); err != nil {
			return err
		}
	}
	return nil
}

// applyPromotions runs the best-value selection against the priced order
// and converts the winning fraction into absolute savings.
func (s *OrderService) applyPromotions(ctx context.Context, ord *order.Order) error {
	if s.strategy == nil || s.promoBuckets == nil {
		return nil
	}

	buckets, err := s.promoBuckets.Buckets(ctx, ord.ShopCode)
	if err != nil {
		return err
	}
	if len(buckets) == 0 {
		return nil
	}

	pctx := promotion.NewContext(ord.CustomerEmail, ord.CouponCodes, ord.GrandTotal)
	if err := s.strategy.Apply(ctx, buckets, pctx); err != nil {
		return err
	}

	if pctx.Discount.IsPositive() {
		savings := ord.GrandTotal.Mul(pctx.Discount).Round(2)
		if err := ord.ApplyPromoSavings(savings); err != nil {
			return err
		}
	}
	for _, code := range pctx.AppliedCodes {
		ord.MarkPromoApplied(code)
	}
	return nil
}

func (s *OrderService) publishEvents(ctx context.Context, ord *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	events := ord.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("domain events not published",
			zap.String("order_number", ord.OrderNumber),
			zap.Error(err),
		)
		return
	}
	ord.ClearDomainEvents()
}
