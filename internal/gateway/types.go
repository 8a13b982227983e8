package gateway

import "pos-basket/internal/model"

// Wire types for the commerce gateway's JSON bodies. Money fields arrive as
// decimal strings in major units and are converted to cents during transform.

// BasketDocument is the gateway's representation of a basket. Every mutating
// response carries one, alongside an ETag header with the new token.
type BasketDocument struct {
	BasketID string `json:"basket_id"`
	Currency string `json:"currency"`

	ProductItems       []ProductItemDocument `json:"product_items"`
	Shipments          []ShipmentDocument    `json:"shipments"`
	BillingAddress     *AddressDocument      `json:"billing_address"`
	CustomerInfo       CustomerInfoDocument  `json:"customer_info"`
	CouponItems        []CouponItemDocument  `json:"coupon_items"`
	PaymentInstruments []InstrumentDocument  `json:"payment_instruments"`

	OrderNo              string `json:"order_no"`
	ShipToStore          bool   `json:"c_ship_to_store"`
	DifferentStorePickup bool   `json:"c_different_store_pickup"`

	ProductTotal  string `json:"product_total"`
	ShippingTotal string `json:"shipping_total"`
	TaxTotal      string `json:"tax_total"`
	OrderTotal    string `json:"order_total"`
}

// ProductItemDocument is one basket line on the wire.
type ProductItemDocument struct {
	ItemID              string `json:"item_id"`
	ProductID           string `json:"product_id"`
	ProductName         string `json:"product_name"`
	Quantity            int    `json:"quantity"`
	Price               string `json:"price"`
	BasePrice           string `json:"base_price"`
	PriceOverrideType   string `json:"c_price_override_type"`
	PriceOverrideValue  string `json:"c_price_override_value"`
	PriceOverrideReason string `json:"c_price_override_reason"`
}

// ShipmentDocument pairs an address with a shipping method on the wire.
type ShipmentDocument struct {
	ShipmentID      string                  `json:"shipment_id"`
	ShippingAddress *AddressDocument        `json:"shipping_address"`
	ShippingMethod  *ShippingMethodDocument `json:"shipping_method"`
	Gift            bool                    `json:"gift"`
	GiftMessage     string                  `json:"gift_message"`
}

// ShippingMethodDocument is a shipping method with override annotations.
type ShippingMethodDocument struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	BasePrice           string `json:"base_price"`
	Surcharge           string `json:"surcharge"`
	PriceOverride       bool   `json:"c_price_override"`
	PriceOverrideType   string `json:"c_price_override_type"`
	PriceOverrideValue  string `json:"c_price_override_value"`
	PriceOverrideReason string `json:"c_price_override_reason"`
	DefaultMethod       bool   `json:"default_method"`
}

// AddressDocument matches the gateway's address shape.
type AddressDocument struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

// CustomerInfoDocument carries the customer identity.
type CustomerInfoDocument struct {
	Email string `json:"email"`
}

// CouponItemDocument is one applied coupon.
type CouponItemDocument struct {
	Code       string `json:"code"`
	Applied    bool   `json:"applied"`
	StatusCode string `json:"status_code"`
}

// InstrumentDocument is one payment instrument on the wire.
type InstrumentDocument struct {
	ID            string `json:"payment_instrument_id"`
	PaymentMethod string `json:"payment_method_id"`
	Status        string `json:"c_status"`
	AmountAuth    string `json:"amount_auth"`
	LastFour      string `json:"c_last_four"`
	CardType      string `json:"c_card_type"`
}

// ShippingMethodsDocument wraps the method catalog response.
type ShippingMethodsDocument struct {
	Methods []ShippingMethodDocument `json:"applicable_shipping_methods"`
}

// GiftCardBalanceDocument wraps a balance check response.
type GiftCardBalanceDocument struct {
	Balance string `json:"balance"`
}

// FaultDocument is the structured error envelope the gateway returns.
type FaultDocument struct {
	Fault struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"fault"`
}

// === Transforms ===

// ToBasket converts a wire document to the aggregate, attaching the etag
// from the response header.
func (d *BasketDocument) ToBasket(etag string) *model.Basket {
	b := &model.Basket{
		ID:                   d.BasketID,
		Etag:                 etag,
		Currency:             d.Currency,
		OrderNo:              d.OrderNo,
		ShipToStore:          d.ShipToStore,
		DifferentStorePickup: d.DifferentStorePickup,
		Customer:             model.CustomerInfo{Email: d.CustomerInfo.Email},
		ProductTotal:         model.ParseCents(d.ProductTotal),
		ShippingTotal:        model.ParseCents(d.ShippingTotal),
		TaxTotal:             model.ParseCents(d.TaxTotal),
		OrderTotal:           model.ParseCents(d.OrderTotal),
	}

	for _, pi := range d.ProductItems {
		b.ProductItems = append(b.ProductItems, model.ProductItem{
			ItemID:              pi.ItemID,
			ProductID:           pi.ProductID,
			Name:                pi.ProductName,
			Quantity:            pi.Quantity,
			Price:               model.ParseCents(pi.Price),
			BasePrice:           model.ParseCents(pi.BasePrice),
			PriceOverrideType:   overrideType(pi.PriceOverrideType),
			PriceOverrideValue:  model.ParseCents(pi.PriceOverrideValue),
			PriceOverrideReason: pi.PriceOverrideReason,
		})
	}

	for _, s := range d.Shipments {
		b.Shipments = append(b.Shipments, model.Shipment{
			ID:              s.ShipmentID,
			ShippingAddress: s.ShippingAddress.toModel(),
			Method:          s.ShippingMethod.toModel(),
			Gift:            s.Gift,
			GiftMessage:     s.GiftMessage,
		})
	}

	b.BillingAddress = d.BillingAddress.toModel()

	for _, c := range d.CouponItems {
		b.CouponItems = append(b.CouponItems, model.CouponItem{
			Code:       c.Code,
			Applied:    c.Applied,
			StatusCode: c.StatusCode,
		})
	}

	for _, pi := range d.PaymentInstruments {
		b.PaymentInstruments = append(b.PaymentInstruments, model.PaymentInstrument{
			ID:               pi.ID,
			Method:           model.PaymentMethod(pi.PaymentMethod),
			Status:           model.InstrumentStatus(pi.Status),
			AmountAuthorized: model.ParseCents(pi.AmountAuth),
			LastFour:         pi.LastFour,
			CardType:         pi.CardType,
		})
	}

	return b
}

func (a *AddressDocument) toModel() *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		StateCode:   a.StateCode,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
	}
}

func (m *ShippingMethodDocument) toModel() *model.ShippingMethod {
	if m == nil {
		return nil
	}
	v := m.toValue()
	return &v
}

func (m *ShippingMethodDocument) toValue() model.ShippingMethod {
	return model.ShippingMethod{
		ID:                  m.ID,
		Name:                m.Name,
		BasePrice:           model.ParseCents(m.BasePrice),
		Surcharge:           model.ParseCents(m.Surcharge),
		PriceOverride:       m.PriceOverride,
		PriceOverrideType:   overrideType(m.PriceOverrideType),
		PriceOverrideValue:  model.ParseCents(m.PriceOverrideValue),
		PriceOverrideReason: m.PriceOverrideReason,
		DefaultMethod:       m.DefaultMethod,
	}
}

// addressDocument converts the model address to its wire shape.
func addressDocument(a model.Address) AddressDocument {
	return AddressDocument{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		StateCode:   a.StateCode,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
	}
}

// overrideType normalizes the wire string; absent means none.
func overrideType(s string) model.OverrideType {
	if s == "" {
		return model.OverrideNone
	}
	return model.OverrideType(s)
}
