package basket

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"pos-basket/internal/model"
)

// SetShippingAddress replaces the shipment's shipping address. The gateway
// recomputes the applicable shipping method catalog as a side effect, so
// callers should refetch methods afterwards.
func (s *Session) SetShippingAddress(ctx context.Context, addr model.Address) (*model.Basket, error) {
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.SetShippingAddress(ctx, basketID, etag, addr)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeShipping)
	return s.stamp(b), nil
}

// SetBillingAddress replaces the basket's billing address.
func (s *Session) SetBillingAddress(ctx context.Context, addr model.Address) (*model.Basket, error) {
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.SetBillingAddress(ctx, basketID, etag, addr)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeBilling)
	return s.stamp(b), nil
}

// SetCustomerEmail attaches the customer's email to the basket.
func (s *Session) SetCustomerEmail(ctx context.Context, email string) (*model.Basket, error) {
	if email == "" {
		return nil, model.NewValidationFault("email", "required")
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.SetCustomerInfo(ctx, basketID, etag, email)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeCustomer)
	return s.stamp(b), nil
}

// GetShippingMethods fetches the address-dependent method catalog.
func (s *Session) GetShippingMethods(ctx context.Context) ([]model.ShippingMethod, error) {
	return s.gw.GetShippingMethods(ctx, s.syncer.Basket().ID)
}

// SetShippingMethod selects a shipping method. When the method is a
// configured free-shipping method, the basket is ship-to-store, and no
// shipping override is already active, a zero fixed-price override is
// composed on top so the customer is not charged for store delivery. The
// composition is at most two gateway calls; a failure in the second step is
// surfaced with the method already applied.
func (s *Session) SetShippingMethod(ctx context.Context, methodID string) (*model.Basket, error) {
	if methodID == "" {
		return nil, model.NewValidationFault("shipping_method_id", "required")
	}
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.SetShippingMethod(ctx, basketID, etag, methodID)
	})
	if err != nil {
		return nil, err
	}

	if s.shouldAutoFreeShipping(b, methodID) {
		s.logger.Debug("composing free ship-to-store override",
			slog.String("basket_id", b.ID),
			slog.String("method_id", methodID),
		)
		ov := model.PriceOverride{Type: model.OverrideFixedPrice, Value: 0, ReasonCode: "ship-to-store"}
		b, err = s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			return s.gw.SetShippingPriceOverride(ctx, basketID, etag, ov)
		})
		if err != nil {
			// The method is already applied; surface which step failed while
			// keeping the underlying fault class intact for the caller.
			s.publish(model.ChangeShipping)
			ftype, code := model.FaultValidation, "VALIDATION"
			var f *model.Fault
			if errors.As(err, &f) {
				ftype, code = f.Type, f.Code
			}
			return nil, &model.Fault{
				Type:    ftype,
				Code:    code,
				Message: "shipping method applied but free-shipping override failed",
				Err:     err,
			}
		}
	}

	s.publish(model.ChangeShipping)
	return s.stamp(b), nil
}

// shouldAutoFreeShipping reports whether the free ship-to-store override
// composes on top of the selected method.
func (s *Session) shouldAutoFreeShipping(b *model.Basket, methodID string) bool {
	if !b.ShipToStore || b.HasShippingPriceOverride() {
		return false
	}
	return slices.Contains(s.cfg.FreeShippingMethodIDs, methodID)
}

// SetShippingPriceOverride applies a manual price to the selected shipping
// method.
func (s *Session) SetShippingPriceOverride(ctx context.Context, ov model.PriceOverride) (*model.Basket, error) {
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if s.syncer.Basket().SelectedShippingMethod() == nil {
		return nil, model.NewValidationFault("shipping_method", "select a shipping method first")
	}
	if err := s.validateOverride(ov); err != nil {
		return nil, err
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.SetShippingPriceOverride(ctx, basketID, etag, ov)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeShipping)
	return s.stamp(b), nil
}

// RemoveShippingPriceOverride restores the computed shipping price.
func (s *Session) RemoveShippingPriceOverride(ctx context.Context) (*model.Basket, error) {
	return s.SetShippingPriceOverride(ctx, model.PriceOverride{Type: model.OverrideNone})
}

func validateAddress(addr model.Address) error {
	switch {
	case addr.Address1 == "":
		return model.NewValidationFault("address1", "required")
	case addr.City == "":
		return model.NewValidationFault("city", "required")
	case addr.PostalCode == "":
		return model.NewValidationFault("postal_code", "required")
	case addr.CountryCode == "":
		return model.NewValidationFault("country_code", "required")
	}
	return nil
}
