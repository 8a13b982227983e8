// Package checkout derives checkout progression from basket completeness.
// The step sequence is an explicit transition table built from the store's
// flow configuration, so the skip rules are auditable in one place.
package checkout

import "pos-basket/internal/model"

// Flow holds the configuration that shapes the step sequence for a store.
type Flow struct {
	// CollectBillingAddress inserts the billing address step between
	// shipping method and payment.
	CollectBillingAddress bool
	// AllowDifferentStorePickup enables the pickup-at-another-store flow,
	// whose completion skips the shipping method step (the method is
	// auto-assigned server-side, so the selection screen has no choices).
	AllowDifferentStorePickup bool
}

// Machine is the checkout state machine: a linear ordered sequence with one
// named exception for different-store pickup.
type Machine struct {
	flow  Flow
	order []model.CheckoutState
	next  map[model.CheckoutState]model.CheckoutState
}

// NewMachine builds the transition table for the given flow.
func NewMachine(flow Flow) *Machine {
	order := []model.CheckoutState{
		model.StateCart,
		model.StateShippingAddress,
		model.StateShippingMethod,
	}
	if flow.CollectBillingAddress {
		order = append(order, model.StateBillingAddress)
	}
	order = append(order, model.StatePayment, model.StateOrderCreation)

	next := make(map[model.CheckoutState]model.CheckoutState, len(order))
	for i := 0; i < len(order)-1; i++ {
		next[order[i]] = order[i+1]
	}

	return &Machine{flow: flow, order: order, next: next}
}

// States returns the ordered step sequence.
func (m *Machine) States() []model.CheckoutState {
	out := make([]model.CheckoutState, len(m.order))
	copy(out, m.order)
	return out
}

// Contains reports whether the state is part of this flow.
func (m *Machine) Contains(s model.CheckoutState) bool {
	_, ok := m.next[s]
	return ok || s == m.order[len(m.order)-1]
}

// Initial returns the entry state. Reached on basket clear, removal of the
// last item, or an explicit return-to-cart action.
func (m *Machine) Initial() model.CheckoutState {
	return model.StateCart
}

// Next returns the successor of current in the linear sequence.
// The second return is false at the end of the sequence or for a state not
// in this flow.
func (m *Machine) Next(current model.CheckoutState) (model.CheckoutState, bool) {
	n, ok := m.next[current]
	return n, ok
}

// NextAfterDifferentStorePickup returns the successor when the current
// transition completes a different-store pickup: the shipping method step is
// skipped because the method is auto-assigned. For flows without the pickup
// option, or when the successor is not the method step, this is plain Next.
func (m *Machine) NextAfterDifferentStorePickup(current model.CheckoutState) (model.CheckoutState, bool) {
	n, ok := m.next[current]
	if !ok {
		return n, false
	}
	if m.flow.AllowDifferentStorePickup && n == model.StateShippingMethod {
		return m.next[n], true
	}
	return n, true
}

// CanEnableCheckout gates order creation: product items must exist, a
// shipping address must be present (or a store-fulfillment mode chosen),
// and a shipping method must be selected.
func CanEnableCheckout(b *model.Basket) bool {
	if b == nil || len(b.ProductItems) == 0 {
		return false
	}
	if b.ShippingAddress() == nil && !b.ShipToStore && !b.DifferentStorePickup {
		return false
	}
	return b.SelectedShippingMethod() != nil
}
