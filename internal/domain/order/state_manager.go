package order

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// Transition event identifiers. Registration is keyed by these; the
// current-state check lives in the handlers via TransitionTo validation.
const (
	EventPending           = "evt.pending"
	EventPaymentOk         = "evt.payment.ok"
	EventPaymentProcessing = "evt.payment.processing"
	EventPaymentOffline    = "evt.payment.offline"
	EventPaymentConfirmed  = "evt.payment.confirmed"
	EventShipmentComplete  = "evt.shipment.complete"
	EventCancel            = "evt.cancel"
	EventComplete          = "evt.complete"
)

// OrderEvent carries one state-machine event for one order
type OrderEvent struct {
	ID     string
	Order  *Order
	Params map[string]interface{}
}

// NewOrderEvent creates a new order event
func NewOrderEvent(id string, o *Order) *OrderEvent {
	return &OrderEvent{ID: id, Order: o, Params: make(map[string]interface{})}
}

// NewOrderEventFrom creates a follow-up event inheriting the parent's params
func NewOrderEventFrom(parent *OrderEvent, id string) *OrderEvent {
	return &OrderEvent{ID: id, Order: parent.Order, Params: parent.Params}
}

// OrderEventHandler performs the side effects of one transition event
// (reserve inventory, call the payment gateway) and reports whether the
// transition applied.
type OrderEventHandler interface {
	Handle(ctx context.Context, event *OrderEvent) (bool, error)
}

// TransitionFunc fires a follow-up transition from inside a handler. The
// state manager injects it after both sides exist, which breaks the
// manager-handler construction cycle without a runtime service lookup.
// Follow-up transitions run within the lock already held for the order.
type TransitionFunc func(ctx context.Context, event *OrderEvent) (bool, error)

// stateStripes is the number of mutex stripes serializing transitions.
// Transitions for one order always hit the same stripe; unrelated orders
// proceed in parallel.
const stateStripes = 64

// StateManager drives the order event handler chain. Exactly one handler
// is registered per event id. A transition is all-or-nothing: if the
// handler fails, the order status is left as it was before the event.
type StateManager struct {
	mu       sync.RWMutex
	handlers map[string]OrderEventHandler
	stripes  [stateStripes]sync.Mutex
}

// NewStateManager creates a state manager with no registered handlers
func NewStateManager() *StateManager {
	return &StateManager{
		handlers: make(map[string]OrderEventHandler),
	}
}

// Register binds a handler to an event id, replacing any previous binding
func (m *StateManager) Register(eventID string, handler OrderEventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventID] = handler
}

// Next returns the TransitionFunc handlers use to fire follow-up events.
// It dispatches without re-acquiring the order's stripe lock, so it must
// only be called from within a running handler.
func (m *StateManager) Next() TransitionFunc {
	return m.fire
}

// FireTransition locks the order's stripe, dispatches the event to its
// handler and reports whether the transition applied. On handler error the
// order status is restored to its pre-transition value.
func (m *StateManager) FireTransition(ctx context.Context, event *OrderEvent) (bool, error) {
	if event == nil || event.Order == nil {
		return false, NewOrderError("INVALID_EVENT", "order event must carry an order")
	}

	stripe := &m.stripes[orderStripe(event.Order.ID)]
	stripe.Lock()
	defer stripe.Unlock()

	return m.fire(ctx, event)
}

// fire dispatches without locking; FireTransition and handler follow-ups land here
func (m *StateManager) fire(ctx context.Context, event *OrderEvent) (bool, error) {
	m.mu.RLock()
	handler, ok := m.handlers[event.ID]
	m.mu.RUnlock()

	if !ok {
		return false, NewOrderError("NO_HANDLER",
			fmt.Sprintf("no handler registered for event %s", event.ID))
	}

	statusBefore := event.Order.Status

	handled, err := handler.Handle(ctx, event)
	if err != nil {
		// Delivery-level progress that completed before the failure stays;
		// the order-level status change is rolled back.
		event.Order.Status = statusBefore
		return false, err
	}

	return handled, nil
}

func orderStripe(orderID uuid.UUID) uint32 {
	h := fnv.New32a()
	h.Write(orderID[:])
	return h.Sum32() % stateStripes
}
