package basket

import (
	"context"

	"pos-basket/internal/model"
)

// AddCoupon applies a coupon code. Re-applying a code already on the basket
// is a no-op success rather than a gateway round trip, since codes are
// unique within a basket.
func (s *Session) AddCoupon(ctx context.Context, code string) (*model.Basket, error) {
	if code == "" {
		return nil, model.NewValidationFault("coupon_code", "required")
	}
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if s.syncer.Basket().HasCoupon(code) {
		return s.Basket(), nil
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.AddCoupon(ctx, basketID, etag, code)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeCoupons)
	return s.stamp(b), nil
}

// RemoveCoupon removes an applied coupon code.
func (s *Session) RemoveCoupon(ctx context.Context, code string) (*model.Basket, error) {
	if code == "" {
		return nil, model.NewValidationFault("coupon_code", "required")
	}
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if !s.syncer.Basket().HasCoupon(code) {
		return nil, model.NewNotFoundFault("coupon")
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.RemoveCoupon(ctx, basketID, etag, code)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeCoupons)
	return s.stamp(b), nil
}
