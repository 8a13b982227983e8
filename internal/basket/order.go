package basket

import (
	"context"
	"log/slog"

	"pos-basket/internal/checkout"
	"pos-basket/internal/gateway"
	"pos-basket/internal/model"
)

// CreateOrder turns the basket into an order. The completeness gate is
// enforced here as well as in the UI, so a direct API caller cannot create
// an order from an incomplete basket. A deep snapshot of the pre-order
// basket is kept for restoration if the order is later abandoned.
func (s *Session) CreateOrder(ctx context.Context) (*model.Basket, error) {
	pre := s.syncer.Basket()
	if pre.HasOrder() {
		return nil, model.NewValidationFault("basket", "order already created")
	}
	if !checkout.CanEnableCheckout(pre) {
		return nil, model.NewValidationFault("basket", "basket is not ready for order creation")
	}

	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.CreateOrder(ctx, basketID, etag)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.preOrder = pre
	s.status = model.StateOrderCreation
	s.mu.Unlock()

	s.logger.Info("order created",
		slog.String("basket_id", b.ID),
		slog.String("order_no", b.OrderNo),
	)
	s.publish(model.ChangeOrderCreated)
	return s.stamp(b), nil
}

// AbandonOrder reverses a created order back into an editable basket under
// manager authorization, then restores the pre-order state the reversal
// drops server-side: addresses, shipping method, price overrides, and
// coupons. The replay is best effort; a step that fails is logged and
// skipped so the associate is never stuck holding an abandoned order.
func (s *Session) AbandonOrder(ctx context.Context, req gateway.AbandonRequest) (*model.Basket, error) {
	if req.EmployeeID == "" || req.Passcode == "" {
		return nil, model.NewAuthorizationFault("order abandonment")
	}
	cur := s.syncer.Basket()
	if !cur.HasOrder() {
		return nil, model.NewValidationFault("order_no", "no order to abandon")
	}

	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.AbandonOrder(ctx, basketID, etag, req)
	})
	if err != nil {
		return nil, err
	}
	// The reversal response can still echo the order number; the session's
	// contract is that abandonment clears it.
	if b.OrderNo != "" {
		b.OrderNo = ""
		s.syncer.Replace(b)
		b = s.syncer.Basket()
	}

	s.mu.Lock()
	snapshot := s.preOrder
	s.preOrder = nil
	s.status = model.StatePayment
	s.mu.Unlock()

	if snapshot != nil {
		b = s.restoreFromSnapshot(ctx, snapshot, b)
	}

	s.logger.Info("order abandoned",
		slog.String("basket_id", b.ID),
		slog.String("order_no", cur.OrderNo),
		slog.String("employee_id", req.EmployeeID),
	)
	s.publish(model.ChangeOrderAbandoned)
	return s.stamp(b), nil
}

// restoreFromSnapshot replays associate-applied state from the pre-order
// snapshot onto the reversed basket. Each step compares against the current
// state so a field the reversal preserved is not re-sent.
func (s *Session) restoreFromSnapshot(ctx context.Context, snap, cur *model.Basket) *model.Basket {
	replay := func(what string, op func(ctx context.Context, basketID, etag string) (*model.Basket, error)) {
		b, err := s.syncer.Do(ctx, op)
		if err != nil {
			s.logger.Warn("post-abandon restore step failed",
				slog.String("step", what),
				slog.String("error", err.Error()),
			)
			return
		}
		cur = b
	}

	// Addresses first: the method catalog is address-dependent, so a method
	// replay against an address-less basket would be rejected.
	if a := snap.ShippingAddress(); a != nil && cur.ShippingAddress() == nil {
		addr := *a
		replay("shipping_address", func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			return s.gw.SetShippingAddress(ctx, basketID, etag, addr)
		})
	}
	if snap.BillingAddress != nil && cur.BillingAddress == nil {
		addr := *snap.BillingAddress
		replay("billing_address", func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			return s.gw.SetBillingAddress(ctx, basketID, etag, addr)
		})
	}
	if m := snap.SelectedShippingMethod(); m != nil && cur.SelectedShippingMethod() == nil {
		id := m.ID
		replay("shipping_method", func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			return s.gw.SetShippingMethod(ctx, basketID, etag, id)
		})
	}
	if snap.HasShippingPriceOverride() && !cur.HasShippingPriceOverride() {
		m := snap.SelectedShippingMethod()
		ov := model.PriceOverride{
			Type:       m.PriceOverrideType,
			Value:      m.PriceOverrideValue,
			ReasonCode: m.PriceOverrideReason,
		}
		replay("shipping_price_override", func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			return s.gw.SetShippingPriceOverride(ctx, basketID, etag, ov)
		})
	}
	for _, item := range snap.ProductItems {
		if !item.HasPriceOverride() {
			continue
		}
		if live := cur.FindItem(item.ItemID); live == nil || live.HasPriceOverride() {
			continue
		}
		itemID := item.ItemID
		ov := model.PriceOverride{
			Type:       item.PriceOverrideType,
			Value:      item.PriceOverrideValue,
			ReasonCode: item.PriceOverrideReason,
		}
		replay("product_price_override", func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			return s.gw.SetProductPriceOverride(ctx, basketID, etag, itemID, ov)
		})
	}
	for _, c := range snap.CouponItems {
		if cur.HasCoupon(c.Code) {
			continue
		}
		code := c.Code
		replay("coupon", func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			return s.gw.AddCoupon(ctx, basketID, etag, code)
		})
	}
	return cur
}

// DeleteBasket removes the basket server-side and fetches the fresh
// replacement, resetting the session to the cart step.
func (s *Session) DeleteBasket(ctx context.Context) (*model.Basket, error) {
	cur := s.syncer.Basket()
	if err := s.gw.DeleteBasket(ctx, cur.ID, cur.Etag); err != nil {
		return nil, err
	}
	fresh, err := s.gw.GetBasket(ctx)
	if err != nil {
		return nil, err
	}
	s.syncer.Replace(fresh)

	s.mu.Lock()
	s.status = s.machine.Initial()
	s.preOrder = nil
	s.mu.Unlock()

	s.publish(model.ChangeReset)
	return s.stamp(fresh.Clone()), nil
}
