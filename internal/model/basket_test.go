package model

import "testing"

func testBasket() *Basket {
	return &Basket{
		ID:   "b-1",
		Etag: "etag-1",
		ProductItems: []ProductItem{
			{ItemID: "i-1", ProductID: "p-1", Quantity: 2, Price: 4000},
			{ItemID: "i-2", ProductID: "p-2", Quantity: 1, Price: 2500},
		},
		Shipments: []Shipment{
			{
				ShippingAddress: &Address{Address1: "1 Main St", City: "Basel", PostalCode: "4051", CountryCode: "CH"},
				Method:          &ShippingMethod{ID: "001", BasePrice: 500, Surcharge: 100},
			},
		},
		CouponItems:   []CouponItem{{Code: "SAVE10", Applied: true}},
		ProductTotal:  6500,
		ShippingTotal: 600,
		TaxTotal:      500,
		OrderTotal:    7600,
	}
}

func TestBalanceDue(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		instruments []PaymentInstrument
		want        int64
	}{
		{"no instruments", 9000, nil, 9000},
		{"partial gift card", 9000, []PaymentInstrument{
			{Method: PaymentGiftCertificate, AmountAuthorized: 700},
		}, 8300},
		{"fully covered", 9000, []PaymentInstrument{
			{Method: PaymentGiftCertificate, AmountAuthorized: 700},
			{Method: PaymentCreditCard, AmountAuthorized: 8300},
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Basket{OrderTotal: tt.total, PaymentInstruments: tt.instruments}
			if got := b.BalanceDue(); got != tt.want {
				t.Errorf("BalanceDue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShippingDiscount(t *testing.T) {
	b := testBasket()

	// Method charges 600, shipping total 600: no discount
	if got := b.ShippingDiscount(); got != 0 {
		t.Errorf("ShippingDiscount() = %d, want 0", got)
	}

	// Server discounted shipping to 100
	b.ShippingTotal = 100
	if got := b.ShippingDiscount(); got != 500 {
		t.Errorf("ShippingDiscount() = %d, want 500", got)
	}

	// Server total above method price: clamp to zero, never negative
	b.ShippingTotal = 900
	if got := b.ShippingDiscount(); got != 0 {
		t.Errorf("ShippingDiscount() = %d, want 0 (clamped)", got)
	}

	// No method selected
	b.Shipments = nil
	if got := b.ShippingDiscount(); got != 0 {
		t.Errorf("ShippingDiscount() without method = %d, want 0", got)
	}
}

func TestShippingMethodPrice(t *testing.T) {
	m := ShippingMethod{BasePrice: 500, Surcharge: 100}
	if got := m.Price(); got != 600 {
		t.Errorf("Price() = %d, want 600", got)
	}

	m.PriceOverride = true
	m.PriceOverrideType = OverrideFixedPrice
	m.PriceOverrideValue = 0
	if got := m.Price(); got != 0 {
		t.Errorf("Price() with zero override = %d, want 0", got)
	}
}

func TestPriceOverrideActive(t *testing.T) {
	tests := []struct {
		name string
		ov   PriceOverride
		want bool
	}{
		{"empty type", PriceOverride{}, false},
		{"none", PriceOverride{Type: OverrideNone}, false},
		{"fixed price", PriceOverride{Type: OverrideFixedPrice, Value: 100}, true},
		{"per unit", PriceOverride{Type: OverrideFixedPricePerUnit, Value: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ov.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindItem(t *testing.T) {
	b := testBasket()
	if item := b.FindItem("i-2"); item == nil || item.ProductID != "p-2" {
		t.Errorf("FindItem(i-2) = %+v, want product p-2", item)
	}
	if item := b.FindItem("missing"); item != nil {
		t.Errorf("FindItem(missing) = %+v, want nil", item)
	}
}

func TestHasCoupon(t *testing.T) {
	b := testBasket()
	if !b.HasCoupon("SAVE10") {
		t.Error("HasCoupon(SAVE10) = false, want true")
	}
	// Exact match only
	if b.HasCoupon("save10") {
		t.Error("HasCoupon(save10) = true, want false")
	}
}

func TestInstrumentByMethod(t *testing.T) {
	b := testBasket()
	b.PaymentInstruments = []PaymentInstrument{
		{ID: "pi-1", Method: PaymentGiftCertificate, AmountAuthorized: 700},
	}
	if pi := b.InstrumentByMethod(PaymentGiftCertificate); pi == nil || pi.ID != "pi-1" {
		t.Errorf("InstrumentByMethod(gift) = %+v, want pi-1", pi)
	}
	if pi := b.InstrumentByMethod(PaymentCreditCard); pi != nil {
		t.Errorf("InstrumentByMethod(card) = %+v, want nil", pi)
	}
}

func TestCloneIndependence(t *testing.T) {
	b := testBasket()
	c := b.Clone()

	c.ProductItems[0].Quantity = 99
	c.Shipments[0].Method.ID = "changed"
	c.Shipments[0].ShippingAddress.City = "changed"
	c.CouponItems[0].Code = "changed"

	if b.ProductItems[0].Quantity != 2 {
		t.Error("clone shares product items with original")
	}
	if b.Shipments[0].Method.ID != "001" {
		t.Error("clone shares shipping method with original")
	}
	if b.Shipments[0].ShippingAddress.City != "Basel" {
		t.Error("clone shares shipping address with original")
	}
	if b.CouponItems[0].Code != "SAVE10" {
		t.Error("clone shares coupons with original")
	}
}

func TestCloneNil(t *testing.T) {
	var b *Basket
	if b.Clone() != nil {
		t.Error("Clone of nil basket should be nil")
	}
}

func TestHasOrder(t *testing.T) {
	b := testBasket()
	if b.HasOrder() {
		t.Error("HasOrder() = true before order creation")
	}
	b.OrderNo = "00012345"
	if !b.HasOrder() {
		t.Error("HasOrder() = false after order creation")
	}
}
