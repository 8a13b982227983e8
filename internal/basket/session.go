// Package basket composes the aggregate operations an associate performs on
// one shopping basket: item edits, checkout progression, price overrides,
// coupons, payment, and order creation/abandonment. Every mutation goes
// through the optimistic-sync core and publishes a typed change.
package basket

import (
	"context"
	"log/slog"
	"sync"

	"pos-basket/internal/checkout"
	"pos-basket/internal/gateway"
	"pos-basket/internal/model"
	"pos-basket/internal/optimistic"
)

// Config holds the store-level knobs that shape a session's behavior.
// Values typically come from the gateway's capability handshake, with the
// service configuration as fallback.
type Config struct {
	Flow checkout.Flow
	// FreeShippingMethodIDs are the shipping methods that compose an
	// automatic zero-price shipping override in ship-to-store flows.
	FreeShippingMethodIDs []string
	// OverrideRequiresManager demands an authorizing manager ID on every
	// active price override.
	OverrideRequiresManager bool
}

// Session is one associate's basket editing session. Only one logical
// mutation may be in flight at a time; the sync core serializes local
// callers while the etag guards against other channels.
type Session struct {
	gw       gateway.Interface
	syncer   *optimistic.Syncer
	machine  *checkout.Machine
	notifier *model.Notifier
	cfg      Config
	logger   *slog.Logger

	mu       sync.Mutex
	status   model.CheckoutState
	preOrder *model.Basket // snapshot taken at order creation, for abandon restore
}

// New fetches (or server-side creates) the current basket and builds a
// session around it.
func New(ctx context.Context, gw gateway.Interface, cfg Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := gw.GetBasket(ctx)
	if err != nil {
		return nil, err
	}
	s := &Session{
		gw:       gw,
		syncer:   optimistic.New(gw, b, logger),
		machine:  checkout.NewMachine(cfg.Flow),
		notifier: model.NewNotifier(),
		cfg:      cfg,
		logger:   logger,
		status:   model.StateCart,
	}
	return s, nil
}

// Basket returns a snapshot of the aggregate with the session's checkout
// status stamped on.
func (s *Session) Basket() *model.Basket {
	b := s.syncer.Basket()
	b.Status = s.CheckoutStatus()
	return b
}

// Subscribe registers an observer for basket changes.
func (s *Session) Subscribe(buffer int) (int, <-chan model.Change) {
	return s.notifier.Subscribe(buffer)
}

// Unsubscribe removes an observer.
func (s *Session) Unsubscribe(id int) {
	s.notifier.Unsubscribe(id)
}

// CheckoutStatus returns the basket's current checkout step.
func (s *Session) CheckoutStatus() model.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetCheckoutStatus moves the session to an explicit step. Rejected for
// states outside the configured flow.
func (s *Session) SetCheckoutStatus(state model.CheckoutState) error {
	if !s.machine.Contains(state) {
		return model.NewValidationFault("checkout_status", "state not in configured flow")
	}
	s.mu.Lock()
	s.status = state
	s.mu.Unlock()
	s.publish(model.ChangeStatus)
	return nil
}

// NextCheckoutState returns the step after the current one, applying the
// different-store-pickup skip when that flow is active on the basket.
func (s *Session) NextCheckoutState() (model.CheckoutState, bool) {
	current := s.CheckoutStatus()
	if s.syncer.Basket().DifferentStorePickup {
		return s.machine.NextAfterDifferentStorePickup(current)
	}
	return s.machine.Next(current)
}

// CanEnableCheckout reports whether order creation may be offered.
func (s *Session) CanEnableCheckout() bool {
	return checkout.CanEnableCheckout(s.syncer.Basket())
}

// Refresh refetches the authoritative basket.
func (s *Session) Refresh(ctx context.Context) (*model.Basket, error) {
	b, err := s.syncer.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeReset)
	return s.stamp(b), nil
}

// publish snapshots current state and notifies observers.
func (s *Session) publish(kind model.ChangeKind) {
	s.notifier.Publish(model.Change{Kind: kind, Basket: s.Basket()})
}

// stamp copies the session status onto a snapshot before returning it.
func (s *Session) stamp(b *model.Basket) *model.Basket {
	b.Status = s.CheckoutStatus()
	return b
}

// validateOverride checks an override's shape and, when the store demands
// it, the authorizing manager ID, before any gateway call is issued.
func (s *Session) validateOverride(ov model.PriceOverride) error {
	if !ov.Active() {
		return nil
	}
	if ov.Value < 0 {
		return model.NewValidationFault("value", "must not be negative")
	}
	if ov.ReasonCode == "" {
		return model.NewValidationFault("reason_code", "required for an active override")
	}
	if s.cfg.OverrideRequiresManager && ov.ManagerID == "" {
		return model.NewAuthorizationFault("manager approval for price overrides")
	}
	return nil
}

// guardPostOrder rejects basket-shape mutations while an order exists.
// Post-order mode allows only order-scoped payment operations and abandon.
func (s *Session) guardPostOrder() error {
	if s.syncer.Basket().HasOrder() {
		return model.NewValidationFault("basket", "order already created; abandon it to edit the basket")
	}
	return nil
}
