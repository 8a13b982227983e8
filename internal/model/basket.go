// Package model defines the basket aggregate and the value types it owns.
package model

// === Enums ===

// OverrideType classifies a manual price override.
type OverrideType string

const (
	OverrideNone              OverrideType = "none"
	OverrideFixedPrice        OverrideType = "fixed-price"
	OverrideFixedPricePerUnit OverrideType = "fixed-price-per-unit"
)

// CheckoutState is the basket's position in the checkout step sequence.
// Membership and ordering are owned by the checkout package; the values
// live here so the aggregate can carry its status without an import cycle.
type CheckoutState string

const (
	StateCart            CheckoutState = "cart"
	StateShippingAddress CheckoutState = "shippingAddress"
	StateShippingMethod  CheckoutState = "shippingMethod"
	StateBillingAddress  CheckoutState = "billingAddress"
	StatePayment         CheckoutState = "payment"
	StateOrderCreation   CheckoutState = "orderCreation"
)

// PaymentMethod identifies the kind of payment instrument.
type PaymentMethod string

const (
	PaymentCreditCard      PaymentMethod = "credit-card"
	PaymentGiftCertificate PaymentMethod = "gift-certificate"
)

// InstrumentStatus reports whether an instrument authorized cleanly.
type InstrumentStatus string

const (
	InstrumentOK    InstrumentStatus = "ok"
	InstrumentError InstrumentStatus = "error"
)

// === Value types ===

// Address is an immutable postal address. Updates replace the whole value;
// the gateway never accepts field-level patches.
type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	StateCode   string `json:"state_code,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// PriceOverride is an associate-authorized replacement of a computed price.
// Value is in minor currency units (cents).
type PriceOverride struct {
	Type       OverrideType `json:"type"`
	Value      int64        `json:"value"`
	ReasonCode string       `json:"reason_code,omitempty"`
	ManagerID  string       `json:"manager_id,omitempty"`
}

// Active reports whether the override replaces a price.
func (o PriceOverride) Active() bool {
	return o.Type != "" && o.Type != OverrideNone
}

// ProductItem is one line in the basket. Price fields come from the server
// and are never recomputed client-side.
type ProductItem struct {
	ItemID              string       `json:"item_id"`
	ProductID           string       `json:"product_id"`
	Name                string       `json:"name,omitempty"`
	Quantity            int          `json:"quantity"`
	Price               int64        `json:"price"` // line total, cents
	BasePrice           int64        `json:"base_price,omitempty"`
	PriceOverrideType   OverrideType `json:"price_override_type,omitempty"`
	PriceOverrideValue  int64        `json:"price_override_value,omitempty"`
	PriceOverrideReason string       `json:"price_override_reason,omitempty"`
}

// HasPriceOverride reports whether a manual price is active on this line.
func (p ProductItem) HasPriceOverride() bool {
	return p.PriceOverrideType != "" && p.PriceOverrideType != OverrideNone
}

// ShippingMethod is one entry from the gateway's address-dependent catalog.
type ShippingMethod struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name,omitempty"`
	BasePrice           int64        `json:"base_price"`
	Surcharge           int64        `json:"surcharge,omitempty"`
	PriceOverride       bool         `json:"price_override,omitempty"`
	PriceOverrideType   OverrideType `json:"price_override_type,omitempty"`
	PriceOverrideValue  int64        `json:"price_override_value,omitempty"`
	PriceOverrideReason string       `json:"price_override_reason,omitempty"`
	DefaultMethod       bool         `json:"default_method,omitempty"`
}

// Price returns what the selected method charges: the override value when one
// is active, otherwise base price plus surcharge.
func (m ShippingMethod) Price() int64 {
	if m.PriceOverride && m.PriceOverrideType != "" && m.PriceOverrideType != OverrideNone {
		return m.PriceOverrideValue
	}
	return m.BasePrice + m.Surcharge
}

// Shipment pairs a shipping address with a shipping method. A shipment with
// no method blocks order creation.
type Shipment struct {
	ID              string          `json:"id,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	Method          *ShippingMethod `json:"shipping_method,omitempty"`
	Gift            bool            `json:"gift,omitempty"`
	GiftMessage     string          `json:"gift_message,omitempty"`
}

// CustomerInfo carries the customer identity attached to the basket.
type CustomerInfo struct {
	Email string `json:"email,omitempty"`
}

// CouponItem is an applied coupon. Codes are unique within a basket.
type CouponItem struct {
	Code       string `json:"code"`
	Applied    bool   `json:"applied,omitempty"`
	StatusCode string `json:"status_code,omitempty"`
}

// PaymentInstrument is a payment method applied to the basket or order.
// AmountAuthorized is in minor units.
type PaymentInstrument struct {
	ID               string           `json:"id"`
	Method           PaymentMethod    `json:"payment_method"`
	Status           InstrumentStatus `json:"status,omitempty"`
	AmountAuthorized int64            `json:"amt_auth"`
	LastFour         string           `json:"last_four,omitempty"`
	CardType         string           `json:"card_type,omitempty"`
}

// === Root aggregate ===

// Basket is the root aggregate for one associate session. It is mutated
// exclusively through the optimistic-sync core; every successful mutating
// response replaces the whole value and its etag.
type Basket struct {
	ID       string `json:"basket_id"`
	Etag     string `json:"-"` // opaque concurrency token, sent as If-Match
	Currency string `json:"currency,omitempty"`

	ProductItems       []ProductItem       `json:"product_items,omitempty"`
	Shipments          []Shipment          `json:"shipments,omitempty"`
	BillingAddress     *Address            `json:"billing_address,omitempty"`
	Customer           CustomerInfo        `json:"customer_info"`
	CouponItems        []CouponItem        `json:"coupon_items,omitempty"`
	PaymentInstruments []PaymentInstrument `json:"payment_instruments,omitempty"`

	// OrderNo is set only by a successful order creation and cleared by
	// abandonment. While set, the basket is in post-order mode.
	OrderNo string `json:"order_no,omitempty"`

	Status               CheckoutState `json:"checkout_status,omitempty"`
	ShipToStore          bool          `json:"ship_to_store,omitempty"`
	DifferentStorePickup bool          `json:"different_store_pickup,omitempty"`

	// Server-computed authoritative totals, cents. Pass-through only:
	// recomputing them client-side would drift from the server's
	// promotion and tax engines.
	ProductTotal  int64 `json:"product_total"`
	ShippingTotal int64 `json:"shipping_total"`
	TaxTotal      int64 `json:"tax_total"`
	OrderTotal    int64 `json:"order_total"`
}

// SelectedShippingMethod returns the first shipment's method, or nil.
// Baskets in this domain carry a single shipment in practice.
func (b *Basket) SelectedShippingMethod() *ShippingMethod {
	for i := range b.Shipments {
		if b.Shipments[i].Method != nil {
			return b.Shipments[i].Method
		}
	}
	return nil
}

// ShippingAddress returns the first shipment's address, or nil.
func (b *Basket) ShippingAddress() *Address {
	for i := range b.Shipments {
		if b.Shipments[i].ShippingAddress != nil {
			return b.Shipments[i].ShippingAddress
		}
	}
	return nil
}

// ShippingDiscount derives the discount the server applied to shipping:
// the selected method's price minus the authoritative shipping total.
// The server total is trusted over any client arithmetic, and the result is
// clamped at zero so a surcharge never reads as a negative discount.
func (b *Basket) ShippingDiscount() int64 {
	m := b.SelectedShippingMethod()
	if m == nil {
		return 0
	}
	d := m.Price() - b.ShippingTotal
	if d < 0 {
		return 0
	}
	return d
}

// BalanceDue returns the order total minus everything already authorized.
// With no instruments applied the full order total is due.
func (b *Basket) BalanceDue() int64 {
	due := b.OrderTotal
	for _, pi := range b.PaymentInstruments {
		due -= pi.AmountAuthorized
	}
	return due
}

// HasShippingPriceOverride reports whether the selected shipping method
// carries an active manual price.
func (b *Basket) HasShippingPriceOverride() bool {
	m := b.SelectedShippingMethod()
	if m == nil {
		return false
	}
	return m.PriceOverride && m.PriceOverrideType != "" && m.PriceOverrideType != OverrideNone
}

// HasProductPriceOverride reports whether any line carries an active
// manual price.
func (b *Basket) HasProductPriceOverride() bool {
	for _, p := range b.ProductItems {
		if p.HasPriceOverride() {
			return true
		}
	}
	return false
}

// HasCoupon reports whether code is already applied. Match is exact.
func (b *Basket) HasCoupon(code string) bool {
	for _, c := range b.CouponItems {
		if c.Code == code {
			return true
		}
	}
	return false
}

// FindItem returns the product item with the given item id, or nil.
func (b *Basket) FindItem(itemID string) *ProductItem {
	for i := range b.ProductItems {
		if b.ProductItems[i].ItemID == itemID {
			return &b.ProductItems[i]
		}
	}
	return nil
}

// InstrumentByMethod returns the first instrument of the given method, or nil.
// At most one active instrument per method type exists at the gateway.
func (b *Basket) InstrumentByMethod(method PaymentMethod) *PaymentInstrument {
	for i := range b.PaymentInstruments {
		if b.PaymentInstruments[i].Method == method {
			return &b.PaymentInstruments[i]
		}
	}
	return nil
}

// HasOrder reports whether the basket is in post-order mode.
func (b *Basket) HasOrder() bool {
	return b.OrderNo != ""
}

// Clone returns a deep copy. Used for pre-order snapshots and for handing
// consistent state to observers without sharing slices.
func (b *Basket) Clone() *Basket {
	if b == nil {
		return nil
	}
	c := *b

	if b.ProductItems != nil {
		c.ProductItems = make([]ProductItem, len(b.ProductItems))
		copy(c.ProductItems, b.ProductItems)
	}
	if b.Shipments != nil {
		c.Shipments = make([]Shipment, len(b.Shipments))
		for i, s := range b.Shipments {
			cs := s
			if s.ShippingAddress != nil {
				addr := *s.ShippingAddress
				cs.ShippingAddress = &addr
			}
			if s.Method != nil {
				m := *s.Method
				cs.Method = &m
			}
			c.Shipments[i] = cs
		}
	}
	if b.BillingAddress != nil {
		addr := *b.BillingAddress
		c.BillingAddress = &addr
	}
	if b.CouponItems != nil {
		c.CouponItems = make([]CouponItem, len(b.CouponItems))
		copy(c.CouponItems, b.CouponItems)
	}
	if b.PaymentInstruments != nil {
		c.PaymentInstruments = make([]PaymentInstrument, len(b.PaymentInstruments))
		copy(c.PaymentInstruments, b.PaymentInstruments)
	}
	return &c
}
