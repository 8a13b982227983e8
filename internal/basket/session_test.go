package basket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"pos-basket/internal/checkout"
	"pos-basket/internal/gateway"
	"pos-basket/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// completeBasket returns a basket that passes the order-creation gate.
func completeBasket() *model.Basket {
	return &model.Basket{
		ID:   "b-1",
		Etag: "etag-1",
		ProductItems: []model.ProductItem{
			{ItemID: "i-1", ProductID: "p-1", Quantity: 1, Price: 4000},
		},
		Shipments: []model.Shipment{
			{
				ShippingAddress: &model.Address{Address1: "1 Main St", City: "Basel", PostalCode: "4051", CountryCode: "CH"},
				Method:          &model.ShippingMethod{ID: "001", BasePrice: 500},
			},
		},
		ProductTotal:  4000,
		ShippingTotal: 500,
		TaxTotal:      300,
		OrderTotal:    4800,
	}
}

func newTestSession(t *testing.T, mock *gateway.Mock, cfg Config) *Session {
	t.Helper()
	s, err := New(context.Background(), mock, cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mock.Calls = nil
	return s
}

func TestAddProductValidation(t *testing.T) {
	mock := &gateway.Mock{}
	s := newTestSession(t, mock, Config{})

	if _, err := s.AddProduct(context.Background(), "", 1); !errors.Is(err, model.ErrValidation) {
		t.Errorf("AddProduct with empty product = %v, want validation", err)
	}
	if _, err := s.AddProduct(context.Background(), "p-1", 0); !errors.Is(err, model.ErrValidation) {
		t.Errorf("AddProduct with zero quantity = %v, want validation", err)
	}
	if mock.CallCount("AddItem") != 0 {
		t.Error("invalid input must not reach the gateway")
	}
}

func TestRemoveLastItemReturnsToCart(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
		RemoveItemFunc: func(ctx context.Context, basketID, etag, itemID string) (*model.Basket, error) {
			return &model.Basket{ID: basketID, Etag: "etag-2"}, nil
		},
	}
	s := newTestSession(t, mock, Config{})
	s.SetCheckoutStatus(model.StatePayment)

	b, err := s.RemoveProduct(context.Background(), "i-1")
	if err != nil {
		t.Fatalf("RemoveProduct() error = %v", err)
	}
	if len(b.ProductItems) != 0 {
		t.Errorf("items = %d, want 0", len(b.ProductItems))
	}
	if got := s.CheckoutStatus(); got != model.StateCart {
		t.Errorf("status after last item removed = %s, want %s", got, model.StateCart)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
		RemoveItemFunc: func(ctx context.Context, basketID, etag, itemID string) (*model.Basket, error) {
			return &model.Basket{ID: basketID, Etag: "etag-2"}, nil
		},
	}
	s := newTestSession(t, mock, Config{})

	if _, err := s.UpdateQuantity(context.Background(), "i-1", 0); err != nil {
		t.Fatalf("UpdateQuantity(0) error = %v", err)
	}
	if mock.CallCount("RemoveItem") != 1 {
		t.Errorf("RemoveItem calls = %d, want 1", mock.CallCount("RemoveItem"))
	}
	if mock.CallCount("UpdateItemQuantity") != 0 {
		t.Errorf("UpdateItemQuantity calls = %d, want 0", mock.CallCount("UpdateItemQuantity"))
	}
}

func TestSetShippingMethodComposesFreeShipping(t *testing.T) {
	base := completeBasket()
	base.ShipToStore = true
	base.Shipments[0].Method = nil

	var overrideSent model.PriceOverride
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return base.Clone(), nil
		},
		SetShippingMethodFunc: func(ctx context.Context, basketID, etag, methodID string) (*model.Basket, error) {
			b := base.Clone()
			b.Etag = "etag-2"
			b.Shipments[0].Method = &model.ShippingMethod{ID: methodID, BasePrice: 500}
			return b, nil
		},
		SetShippingPriceOverrideFunc: func(ctx context.Context, basketID, etag string, ov model.PriceOverride) (*model.Basket, error) {
			overrideSent = ov
			b := base.Clone()
			b.Etag = "etag-3"
			b.Shipments[0].Method = &model.ShippingMethod{
				ID: "005", BasePrice: 500,
				PriceOverride: true, PriceOverrideType: ov.Type, PriceOverrideValue: ov.Value,
			}
			b.ShippingTotal = 0
			return b, nil
		},
	}
	s := newTestSession(t, mock, Config{FreeShippingMethodIDs: []string{"005", "006"}})

	b, err := s.SetShippingMethod(context.Background(), "005")
	if err != nil {
		t.Fatalf("SetShippingMethod() error = %v", err)
	}

	// Exactly two gateway mutations: the method then the zero override
	if mock.CallCount("SetShippingMethod") != 1 || mock.CallCount("SetShippingPriceOverride") != 1 {
		t.Errorf("calls = %v, want one SetShippingMethod and one SetShippingPriceOverride", mock.Calls)
	}
	if overrideSent.Type != model.OverrideFixedPrice || overrideSent.Value != 0 {
		t.Errorf("override = %+v, want zero fixed-price", overrideSent)
	}
	if !b.HasShippingPriceOverride() {
		t.Error("returned basket missing the composed override")
	}
}

func TestSetShippingMethodNoCompositionCases(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*model.Basket)
		methodID string
		free     []string
	}{
		{
			name:     "method not in free list",
			mutate:   func(b *model.Basket) { b.ShipToStore = true },
			methodID: "001",
			free:     []string{"005"},
		},
		{
			name:     "not ship to store",
			mutate:   func(b *model.Basket) {},
			methodID: "005",
			free:     []string{"005"},
		},
		{
			name: "override already active",
			mutate: func(b *model.Basket) {
				b.ShipToStore = true
				b.Shipments[0].Method = &model.ShippingMethod{
					ID: "005", PriceOverride: true,
					PriceOverrideType: model.OverrideFixedPrice, PriceOverrideValue: 200,
				}
			},
			methodID: "005",
			free:     []string{"005"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := completeBasket()
			mock := &gateway.Mock{
				GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
					return base.Clone(), nil
				},
				SetShippingMethodFunc: func(ctx context.Context, basketID, etag, methodID string) (*model.Basket, error) {
					b := base.Clone()
					b.Etag = "etag-2"
					tt.mutate(b)
					if b.Shipments[0].Method == nil || !b.Shipments[0].Method.PriceOverride {
						b.Shipments[0].Method = &model.ShippingMethod{ID: methodID, BasePrice: 500}
					}
					return b, nil
				},
			}
			s := newTestSession(t, mock, Config{FreeShippingMethodIDs: tt.free})

			if _, err := s.SetShippingMethod(context.Background(), tt.methodID); err != nil {
				t.Fatalf("SetShippingMethod() error = %v", err)
			}
			if mock.CallCount("SetShippingPriceOverride") != 0 {
				t.Error("override composed when it should not be")
			}
		})
	}
}

func TestAddCouponIdempotent(t *testing.T) {
	base := completeBasket()
	base.CouponItems = []model.CouponItem{{Code: "SAVE10", Applied: true}}
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return base.Clone(), nil
		},
	}
	s := newTestSession(t, mock, Config{})

	b, err := s.AddCoupon(context.Background(), "SAVE10")
	if err != nil {
		t.Fatalf("AddCoupon() error = %v", err)
	}
	if mock.CallCount("AddCoupon") != 0 {
		t.Error("re-applying an applied code must not reach the gateway")
	}
	if !b.HasCoupon("SAVE10") {
		t.Error("coupon missing from returned basket")
	}
}

func TestRemoveCouponNotApplied(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
	}
	s := newTestSession(t, mock, Config{})

	if _, err := s.RemoveCoupon(context.Background(), "NOPE"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("RemoveCoupon(NOPE) = %v, want not found", err)
	}
}

func TestAuthorizeCreditCardDefaultsToBalanceDue(t *testing.T) {
	base := completeBasket()
	base.PaymentInstruments = []model.PaymentInstrument{
		{ID: "pi-1", Method: model.PaymentGiftCertificate, AmountAuthorized: 700},
	}

	var sent gateway.PaymentRequest
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return base.Clone(), nil
		},
		AddPaymentInstrumentFunc: func(ctx context.Context, basketID, etag string, req gateway.PaymentRequest) (*model.Basket, error) {
			sent = req
			b := base.Clone()
			b.Etag = "etag-2"
			return b, nil
		},
	}
	s := newTestSession(t, mock, Config{})

	_, err := s.AuthorizeCreditCard(context.Background(), CreditCard{Token: "tok-1", LastFour: "4242"}, 0)
	if err != nil {
		t.Fatalf("AuthorizeCreditCard() error = %v", err)
	}
	// Order total 4800 minus 700 already authorized
	if sent.Amount != 4100 {
		t.Errorf("amount = %d, want 4100 (balance due)", sent.Amount)
	}
	if sent.Method != model.PaymentCreditCard {
		t.Errorf("method = %s, want credit-card", sent.Method)
	}
}

func TestAuthorizeGiftCardRequiresOrder(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
	}
	s := newTestSession(t, mock, Config{})

	_, err := s.AuthorizeGiftCard(context.Background(), GiftCard{Track1: "%B123^"}, 0)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("AuthorizeGiftCard before order = %v, want validation", err)
	}
	if mock.CallCount("AddPaymentInstrument") != 0 {
		t.Error("gift card authorization must not reach the gateway without an order")
	}
}

func TestCreateOrderGate(t *testing.T) {
	base := completeBasket()
	base.Shipments[0].Method = nil // incomplete
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return base.Clone(), nil
		},
	}
	s := newTestSession(t, mock, Config{})

	if _, err := s.CreateOrder(context.Background()); !errors.Is(err, model.ErrValidation) {
		t.Errorf("CreateOrder on incomplete basket = %v, want validation", err)
	}
	if mock.CallCount("CreateOrder") != 0 {
		t.Error("gate must stop the call before the gateway")
	}
}

func TestCreateOrderSetsOrderMode(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
		CreateOrderFunc: func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			b := completeBasket()
			b.Etag = "etag-2"
			b.OrderNo = "00012345"
			return b, nil
		},
	}
	s := newTestSession(t, mock, Config{})

	b, err := s.CreateOrder(context.Background())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if b.OrderNo != "00012345" {
		t.Errorf("OrderNo = %s, want 00012345", b.OrderNo)
	}
	if got := s.CheckoutStatus(); got != model.StateOrderCreation {
		t.Errorf("status = %s, want %s", got, model.StateOrderCreation)
	}

	// Basket shape is frozen while the order exists
	if _, err := s.AddProduct(context.Background(), "p-2", 1); !errors.Is(err, model.ErrValidation) {
		t.Errorf("AddProduct post-order = %v, want validation", err)
	}

	// A second create is rejected
	if _, err := s.CreateOrder(context.Background()); !errors.Is(err, model.ErrValidation) {
		t.Errorf("second CreateOrder = %v, want validation", err)
	}
}

func TestAbandonOrderRestoresSnapshot(t *testing.T) {
	pre := completeBasket()
	pre.ProductItems[0].PriceOverrideType = model.OverrideFixedPrice
	pre.ProductItems[0].PriceOverrideValue = 3000
	pre.ProductItems[0].PriceOverrideReason = "PRICE_MATCH"
	pre.CouponItems = []model.CouponItem{{Code: "SAVE10", Applied: true}}

	// The reversal returns a basket stripped of overrides and coupons
	stripped := completeBasket()

	var restoredOverride model.PriceOverride
	var restoredCoupon string
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return pre.Clone(), nil
		},
		CreateOrderFunc: func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			b := pre.Clone()
			b.Etag = "etag-2"
			b.OrderNo = "00012345"
			return b, nil
		},
		AbandonOrderFunc: func(ctx context.Context, basketID, etag string, req gateway.AbandonRequest) (*model.Basket, error) {
			b := stripped.Clone()
			b.Etag = "etag-3"
			return b, nil
		},
		SetProductPriceOverrideFunc: func(ctx context.Context, basketID, etag, itemID string, ov model.PriceOverride) (*model.Basket, error) {
			restoredOverride = ov
			b := stripped.Clone()
			b.Etag = "etag-4"
			b.ProductItems[0].PriceOverrideType = ov.Type
			b.ProductItems[0].PriceOverrideValue = ov.Value
			return b, nil
		},
		AddCouponFunc: func(ctx context.Context, basketID, etag, code string) (*model.Basket, error) {
			restoredCoupon = code
			b := stripped.Clone()
			b.Etag = "etag-5"
			b.CouponItems = []model.CouponItem{{Code: code, Applied: true}}
			return b, nil
		},
	}
	s := newTestSession(t, mock, Config{})

	if _, err := s.CreateOrder(context.Background()); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	b, err := s.AbandonOrder(context.Background(), gateway.AbandonRequest{EmployeeID: "emp-1", Passcode: "1234"})
	if err != nil {
		t.Fatalf("AbandonOrder() error = %v", err)
	}

	if b.HasOrder() {
		t.Errorf("OrderNo = %s, want cleared", b.OrderNo)
	}
	if restoredOverride.Type != model.OverrideFixedPrice || restoredOverride.Value != 3000 {
		t.Errorf("restored override = %+v, want fixed-price 3000", restoredOverride)
	}
	if restoredCoupon != "SAVE10" {
		t.Errorf("restored coupon = %s, want SAVE10", restoredCoupon)
	}
	if got := s.CheckoutStatus(); got != model.StatePayment {
		t.Errorf("status after abandon = %s, want %s", got, model.StatePayment)
	}
}

func TestAbandonOrderRequiresCredentials(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
	}
	s := newTestSession(t, mock, Config{})

	_, err := s.AbandonOrder(context.Background(), gateway.AbandonRequest{})
	if !errors.Is(err, model.ErrAuthorization) {
		t.Errorf("AbandonOrder without credentials = %v, want authorization", err)
	}
}

func TestSetCheckoutStatusRejectsUnknownState(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
	}
	// Default flow: billing address is not a reachable state
	s := newTestSession(t, mock, Config{Flow: checkout.Flow{}})

	if err := s.SetCheckoutStatus(model.StateBillingAddress); !errors.Is(err, model.ErrValidation) {
		t.Errorf("SetCheckoutStatus(billingAddress) = %v, want validation", err)
	}
	if err := s.SetCheckoutStatus(model.StatePayment); err != nil {
		t.Errorf("SetCheckoutStatus(payment) = %v, want nil", err)
	}
}

func TestSessionPublishesChanges(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
		AddItemFunc: func(ctx context.Context, basketID, etag, productID string, quantity int) (*model.Basket, error) {
			b := completeBasket()
			b.Etag = "etag-2"
			return b, nil
		},
	}
	s := newTestSession(t, mock, Config{})

	id, ch := s.Subscribe(4)
	defer s.Unsubscribe(id)

	if _, err := s.AddProduct(context.Background(), "p-2", 1); err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}

	select {
	case c := <-ch:
		if c.Kind != model.ChangeItems {
			t.Errorf("Kind = %s, want %s", c.Kind, model.ChangeItems)
		}
	default:
		t.Fatal("no change published")
	}
}

func TestPriceOverrideRequiresManager(t *testing.T) {
	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return completeBasket(), nil
		},
		SetProductPriceOverrideFunc: func(ctx context.Context, basketID, etag, itemID string, ov model.PriceOverride) (*model.Basket, error) {
			b := completeBasket()
			b.Etag = "etag-2"
			b.ProductItems[0].PriceOverrideType = ov.Type
			b.ProductItems[0].PriceOverrideValue = ov.Value
			return b, nil
		},
	}
	s := newTestSession(t, mock, Config{OverrideRequiresManager: true})

	ov := model.PriceOverride{Type: model.OverrideFixedPrice, Value: 3000, ReasonCode: "damaged"}
	if _, err := s.SetProductPriceOverride(context.Background(), "i-1", ov); !errors.Is(err, model.ErrAuthorization) {
		t.Errorf("override without manager = %v, want authorization fault", err)
	}
	if mock.CallCount("SetProductPriceOverride") != 0 {
		t.Error("unauthorized override must not reach the gateway")
	}

	ov.ManagerID = "mgr-7"
	b, err := s.SetProductPriceOverride(context.Background(), "i-1", ov)
	if err != nil {
		t.Fatalf("SetProductPriceOverride() with manager error = %v", err)
	}
	if !b.ProductItems[0].HasPriceOverride() {
		t.Error("override not applied")
	}

	// Removal clears, so no authorization is needed
	if _, err := s.RemoveProductPriceOverride(context.Background(), "i-1"); err != nil {
		t.Errorf("RemoveProductPriceOverride() error = %v", err)
	}
}

func TestAbandonOrderRestoresAddresses(t *testing.T) {
	pre := completeBasket()
	pre.BillingAddress = &model.Address{Address1: "2 Side St", City: "Basel", PostalCode: "4052", CountryCode: "CH"}

	// The reversal strips both addresses but keeps the method
	stripped := completeBasket()
	stripped.Shipments[0].ShippingAddress = nil

	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return pre.Clone(), nil
		},
		CreateOrderFunc: func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
			b := pre.Clone()
			b.Etag = "etag-2"
			b.OrderNo = "00012345"
			return b, nil
		},
		AbandonOrderFunc: func(ctx context.Context, basketID, etag string, req gateway.AbandonRequest) (*model.Basket, error) {
			b := stripped.Clone()
			b.Etag = "etag-3"
			return b, nil
		},
		SetShippingAddressFunc: func(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error) {
			b := stripped.Clone()
			b.Etag = "etag-4"
			b.Shipments[0].ShippingAddress = &addr
			return b, nil
		},
		SetBillingAddressFunc: func(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error) {
			b := stripped.Clone()
			b.Etag = "etag-5"
			b.Shipments[0].ShippingAddress = pre.ShippingAddress()
			b.BillingAddress = &addr
			return b, nil
		},
	}
	s := newTestSession(t, mock, Config{})

	if _, err := s.CreateOrder(context.Background()); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	b, err := s.AbandonOrder(context.Background(), gateway.AbandonRequest{EmployeeID: "emp-1", Passcode: "1234"})
	if err != nil {
		t.Fatalf("AbandonOrder() error = %v", err)
	}

	if mock.CallCount("SetShippingAddress") != 1 {
		t.Errorf("SetShippingAddress calls = %d, want 1", mock.CallCount("SetShippingAddress"))
	}
	if mock.CallCount("SetBillingAddress") != 1 {
		t.Errorf("SetBillingAddress calls = %d, want 1", mock.CallCount("SetBillingAddress"))
	}
	if a := b.ShippingAddress(); a == nil || a.Address1 != "1 Main St" {
		t.Errorf("shipping address = %+v, want pre-order value restored", a)
	}
	if b.BillingAddress == nil || b.BillingAddress.Address1 != "2 Side St" {
		t.Errorf("billing address = %+v, want pre-order value restored", b.BillingAddress)
	}
}

func TestSetShippingMethodCompositionFailureKeepsFaultClass(t *testing.T) {
	base := completeBasket()
	base.ShipToStore = true
	base.Shipments[0].Method = nil

	mock := &gateway.Mock{
		GetBasketFunc: func(ctx context.Context) (*model.Basket, error) {
			return base.Clone(), nil
		},
		SetShippingMethodFunc: func(ctx context.Context, basketID, etag, methodID string) (*model.Basket, error) {
			b := base.Clone()
			b.Etag = "etag-2"
			b.Shipments[0].Method = &model.ShippingMethod{ID: methodID, BasePrice: 500}
			return b, nil
		},
		SetShippingPriceOverrideFunc: func(ctx context.Context, basketID, etag string, ov model.PriceOverride) (*model.Basket, error) {
			return nil, model.NewConflictFault("")
		},
	}
	s := newTestSession(t, mock, Config{FreeShippingMethodIDs: []string{"005"}})

	_, err := s.SetShippingMethod(context.Background(), "005")
	if err == nil {
		t.Fatal("SetShippingMethod() succeeded, want composition failure")
	}

	// The step context is added without losing the underlying fault class
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("errors.Is(err, ErrConflict) = false for %v", err)
	}
	var fault *model.Fault
	if !errors.As(err, &fault) || fault.Type != model.FaultConflict {
		t.Errorf("fault = %+v, want conflict type", fault)
	}
	if mock.CallCount("SetShippingMethod") != 1 {
		t.Errorf("SetShippingMethod calls = %d, want 1", mock.CallCount("SetShippingMethod"))
	}
}
