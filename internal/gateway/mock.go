package gateway

import (
	"context"

	"pos-basket/internal/model"
)

// Mock implements Interface for testing.
// Each method can be configured via function fields; Calls records every
// invocation by method name so tests can assert call counts and order.
type Mock struct {
	Calls []string

	GetBasketFunc                func(ctx context.Context) (*model.Basket, error)
	DeleteBasketFunc             func(ctx context.Context, basketID, etag string) error
	AddItemFunc                  func(ctx context.Context, basketID, etag, productID string, quantity int) (*model.Basket, error)
	UpdateItemQuantityFunc       func(ctx context.Context, basketID, etag, itemID string, quantity int) (*model.Basket, error)
	RemoveItemFunc               func(ctx context.Context, basketID, etag, itemID string) (*model.Basket, error)
	SetShippingAddressFunc       func(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error)
	SetBillingAddressFunc        func(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error)
	SetCustomerInfoFunc          func(ctx context.Context, basketID, etag, email string) (*model.Basket, error)
	GetShippingMethodsFunc       func(ctx context.Context, basketID string) ([]model.ShippingMethod, error)
	SetShippingMethodFunc        func(ctx context.Context, basketID, etag, methodID string) (*model.Basket, error)
	SetShippingPriceOverrideFunc func(ctx context.Context, basketID, etag string, ov model.PriceOverride) (*model.Basket, error)
	SetProductPriceOverrideFunc  func(ctx context.Context, basketID, etag, itemID string, ov model.PriceOverride) (*model.Basket, error)
	AddCouponFunc                func(ctx context.Context, basketID, etag, code string) (*model.Basket, error)
	RemoveCouponFunc             func(ctx context.Context, basketID, etag, code string) (*model.Basket, error)
	AddPaymentInstrumentFunc     func(ctx context.Context, basketID, etag string, req PaymentRequest) (*model.Basket, error)
	RemovePaymentInstrumentFunc  func(ctx context.Context, basketID, etag, instrumentID string) (*model.Basket, error)
	GiftCardBalanceFunc          func(ctx context.Context, track1, track2 string) (int64, error)
	CreateOrderFunc              func(ctx context.Context, basketID, etag string) (*model.Basket, error)
	AbandonOrderFunc             func(ctx context.Context, basketID, etag string, req AbandonRequest) (*model.Basket, error)
	CapabilitiesFunc             func(ctx context.Context) (*Capabilities, error)
}

// CallCount returns how many recorded calls match the given method name.
func (m *Mock) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *Mock) record(method string) {
	m.Calls = append(m.Calls, method)
}

func (m *Mock) GetBasket(ctx context.Context) (*model.Basket, error) {
	m.record("GetBasket")
	if m.GetBasketFunc != nil {
		return m.GetBasketFunc(ctx)
	}
	return &model.Basket{ID: "mock-basket", Etag: "etag-0", Status: model.StateCart}, nil
}

func (m *Mock) DeleteBasket(ctx context.Context, basketID, etag string) error {
	m.record("DeleteBasket")
	if m.DeleteBasketFunc != nil {
		return m.DeleteBasketFunc(ctx, basketID, etag)
	}
	return nil
}

func (m *Mock) AddItem(ctx context.Context, basketID, etag, productID string, quantity int) (*model.Basket, error) {
	m.record("AddItem")
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, basketID, etag, productID, quantity)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) UpdateItemQuantity(ctx context.Context, basketID, etag, itemID string, quantity int) (*model.Basket, error) {
	m.record("UpdateItemQuantity")
	if m.UpdateItemQuantityFunc != nil {
		return m.UpdateItemQuantityFunc(ctx, basketID, etag, itemID, quantity)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) RemoveItem(ctx context.Context, basketID, etag, itemID string) (*model.Basket, error) {
	m.record("RemoveItem")
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, basketID, etag, itemID)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) SetShippingAddress(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error) {
	m.record("SetShippingAddress")
	if m.SetShippingAddressFunc != nil {
		return m.SetShippingAddressFunc(ctx, basketID, etag, addr)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) SetBillingAddress(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error) {
	m.record("SetBillingAddress")
	if m.SetBillingAddressFunc != nil {
		return m.SetBillingAddressFunc(ctx, basketID, etag, addr)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) SetCustomerInfo(ctx context.Context, basketID, etag, email string) (*model.Basket, error) {
	m.record("SetCustomerInfo")
	if m.SetCustomerInfoFunc != nil {
		return m.SetCustomerInfoFunc(ctx, basketID, etag, email)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) GetShippingMethods(ctx context.Context, basketID string) ([]model.ShippingMethod, error) {
	m.record("GetShippingMethods")
	if m.GetShippingMethodsFunc != nil {
		return m.GetShippingMethodsFunc(ctx, basketID)
	}
	return nil, nil
}

func (m *Mock) SetShippingMethod(ctx context.Context, basketID, etag, methodID string) (*model.Basket, error) {
	m.record("SetShippingMethod")
	if m.SetShippingMethodFunc != nil {
		return m.SetShippingMethodFunc(ctx, basketID, etag, methodID)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) SetShippingPriceOverride(ctx context.Context, basketID, etag string, ov model.PriceOverride) (*model.Basket, error) {
	m.record("SetShippingPriceOverride")
	if m.SetShippingPriceOverrideFunc != nil {
		return m.SetShippingPriceOverrideFunc(ctx, basketID, etag, ov)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) SetProductPriceOverride(ctx context.Context, basketID, etag, itemID string, ov model.PriceOverride) (*model.Basket, error) {
	m.record("SetProductPriceOverride")
	if m.SetProductPriceOverrideFunc != nil {
		return m.SetProductPriceOverrideFunc(ctx, basketID, etag, itemID, ov)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) AddCoupon(ctx context.Context, basketID, etag, code string) (*model.Basket, error) {
	m.record("AddCoupon")
	if m.AddCouponFunc != nil {
		return m.AddCouponFunc(ctx, basketID, etag, code)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) RemoveCoupon(ctx context.Context, basketID, etag, code string) (*model.Basket, error) {
	m.record("RemoveCoupon")
	if m.RemoveCouponFunc != nil {
		return m.RemoveCouponFunc(ctx, basketID, etag, code)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) AddPaymentInstrument(ctx context.Context, basketID, etag string, req PaymentRequest) (*model.Basket, error) {
	m.record("AddPaymentInstrument")
	if m.AddPaymentInstrumentFunc != nil {
		return m.AddPaymentInstrumentFunc(ctx, basketID, etag, req)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) RemovePaymentInstrument(ctx context.Context, basketID, etag, instrumentID string) (*model.Basket, error) {
	m.record("RemovePaymentInstrument")
	if m.RemovePaymentInstrumentFunc != nil {
		return m.RemovePaymentInstrumentFunc(ctx, basketID, etag, instrumentID)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) GiftCardBalance(ctx context.Context, track1, track2 string) (int64, error) {
	m.record("GiftCardBalance")
	if m.GiftCardBalanceFunc != nil {
		return m.GiftCardBalanceFunc(ctx, track1, track2)
	}
	return 0, nil
}

func (m *Mock) CreateOrder(ctx context.Context, basketID, etag string) (*model.Basket, error) {
	m.record("CreateOrder")
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, basketID, etag)
	}
	return nil, model.NewNotFoundFault("basket")
}

func (m *Mock) AbandonOrder(ctx context.Context, basketID, etag string, req AbandonRequest) (*model.Basket, error) {
	m.record("AbandonOrder")
	if m.AbandonOrderFunc != nil {
		return m.AbandonOrderFunc(ctx, basketID, etag, req)
	}
	return nil, model.NewNotFoundFault("order")
}

func (m *Mock) Capabilities(ctx context.Context) (*Capabilities, error) {
	m.record("Capabilities")
	if m.CapabilitiesFunc != nil {
		return m.CapabilitiesFunc(ctx)
	}
	return &Capabilities{APIVersion: SupportedAPIVersions[0]}, nil
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
