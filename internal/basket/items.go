package basket

import (
	"context"

	"pos-basket/internal/model"
)

// AddProduct adds quantity units of a product as a new line item.
func (s *Session) AddProduct(ctx context.Context, productID string, quantity int) (*model.Basket, error) {
	if productID == "" {
		return nil, model.NewValidationFault("product_id", "required")
	}
	if quantity < 1 {
		return nil, model.NewValidationFault("quantity", "must be at least 1")
	}
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.AddItem(ctx, basketID, etag, productID, quantity)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeItems)
	return s.stamp(b), nil
}

// UpdateQuantity changes a line item's quantity. Zero removes the line.
func (s *Session) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*model.Basket, error) {
	if quantity < 0 {
		return nil, model.NewValidationFault("quantity", "must not be negative")
	}
	if quantity == 0 {
		return s.RemoveProduct(ctx, itemID)
	}
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if s.syncer.Basket().FindItem(itemID) == nil {
		return nil, model.NewNotFoundFault("product item")
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.UpdateItemQuantity(ctx, basketID, etag, itemID, quantity)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeItems)
	return s.stamp(b), nil
}

// RemoveProduct deletes a line item. Removing the last item returns the
// session to the cart step, since checkout progress is meaningless for an
// empty basket.
func (s *Session) RemoveProduct(ctx context.Context, itemID string) (*model.Basket, error) {
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if s.syncer.Basket().FindItem(itemID) == nil {
		return nil, model.NewNotFoundFault("product item")
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.RemoveItem(ctx, basketID, etag, itemID)
	})
	if err != nil {
		return nil, err
	}
	if len(b.ProductItems) == 0 {
		s.mu.Lock()
		s.status = s.machine.Initial()
		s.mu.Unlock()
	}
	s.publish(model.ChangeItems)
	return s.stamp(b), nil
}

// SetProductPriceOverride applies a manual price to one line item.
func (s *Session) SetProductPriceOverride(ctx context.Context, itemID string, ov model.PriceOverride) (*model.Basket, error) {
	if err := s.guardPostOrder(); err != nil {
		return nil, err
	}
	if s.syncer.Basket().FindItem(itemID) == nil {
		return nil, model.NewNotFoundFault("product item")
	}
	if err := s.validateOverride(ov); err != nil {
		return nil, err
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.SetProductPriceOverride(ctx, basketID, etag, itemID, ov)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangeItems)
	return s.stamp(b), nil
}

// RemoveProductPriceOverride restores the computed price on one line item.
func (s *Session) RemoveProductPriceOverride(ctx context.Context, itemID string) (*model.Basket, error) {
	return s.SetProductPriceOverride(ctx, itemID, model.PriceOverride{Type: model.OverrideNone})
}
