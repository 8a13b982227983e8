// Package gateway implements the client for the remote commerce service
// that owns baskets, orders, and payment authorization.
package gateway

import (
	"context"

	"pos-basket/internal/model"
)

// Interface abstracts the remote commerce gateway. Every mutating call takes
// the caller's etag and returns the server's authoritative basket together
// with a fresh etag (carried on model.Basket). Conflict classification is the
// caller's concern; implementations only translate wire faults.
type Interface interface {
	// GetBasket fetches the associate's current basket, creating one
	// server-side when none exists.
	GetBasket(ctx context.Context) (*model.Basket, error)

	// DeleteBasket removes the basket entirely. No successor is created
	// until the next GetBasket.
	DeleteBasket(ctx context.Context, basketID, etag string) error

	AddItem(ctx context.Context, basketID, etag, productID string, quantity int) (*model.Basket, error)
	UpdateItemQuantity(ctx context.Context, basketID, etag, itemID string, quantity int) (*model.Basket, error)
	RemoveItem(ctx context.Context, basketID, etag, itemID string) (*model.Basket, error)

	SetShippingAddress(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error)
	SetBillingAddress(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error)
	SetCustomerInfo(ctx context.Context, basketID, etag, email string) (*model.Basket, error)

	// GetShippingMethods lists the methods available for the basket's
	// current shipping address. Address-dependent: callers must set the
	// address first.
	GetShippingMethods(ctx context.Context, basketID string) ([]model.ShippingMethod, error)
	SetShippingMethod(ctx context.Context, basketID, etag, methodID string) (*model.Basket, error)

	// SetShippingPriceOverride applies a manual shipping price. An override
	// of type none removes the active one.
	SetShippingPriceOverride(ctx context.Context, basketID, etag string, ov model.PriceOverride) (*model.Basket, error)
	SetProductPriceOverride(ctx context.Context, basketID, etag, itemID string, ov model.PriceOverride) (*model.Basket, error)

	AddCoupon(ctx context.Context, basketID, etag, code string) (*model.Basket, error)
	RemoveCoupon(ctx context.Context, basketID, etag, code string) (*model.Basket, error)

	AddPaymentInstrument(ctx context.Context, basketID, etag string, req PaymentRequest) (*model.Basket, error)
	RemovePaymentInstrument(ctx context.Context, basketID, etag, instrumentID string) (*model.Basket, error)

	// GiftCardBalance checks a card's remaining balance from its track data.
	// Read-only: not etag-gated.
	GiftCardBalance(ctx context.Context, track1, track2 string) (int64, error)

	CreateOrder(ctx context.Context, basketID, etag string) (*model.Basket, error)
	AbandonOrder(ctx context.Context, basketID, etag string, req AbandonRequest) (*model.Basket, error)

	// Capabilities fetches the gateway's advertised feature set and picks a
	// compatible API version.
	Capabilities(ctx context.Context) (*Capabilities, error)
}

// PaymentRequest describes a payment instrument to apply.
// Amount is in minor units. Exactly one credential group is set: card fields
// for credit cards, track data for gift certificates.
type PaymentRequest struct {
	Method model.PaymentMethod `json:"payment_method"`
	Amount int64               `json:"amount"`

	// Credit card fields (tokenized by the terminal collaborator).
	CardToken string `json:"card_token,omitempty"`
	LastFour  string `json:"last_four,omitempty"`
	CardType  string `json:"card_type,omitempty"`

	// Gift certificate track data.
	Track1 string `json:"track1,omitempty"`
	Track2 string `json:"track2,omitempty"`

	// OrderNo scopes gift card authorization to a created order.
	OrderNo string `json:"order_no,omitempty"`
}

// AbandonRequest carries the manager credentials required to reverse an
// order back to an editable basket.
type AbandonRequest struct {
	EmployeeID string `json:"employee_id"`
	Passcode   string `json:"passcode"`
	StoreID    string `json:"store_id"`
}
