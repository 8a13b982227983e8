package handler

import (
	"net/http"

	"pos-basket/internal/basket"
	"pos-basket/internal/gateway"
	"pos-basket/internal/model"
)

// === Request payloads ===

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type priceOverrideRequest struct {
	Type       model.OverrideType `json:"type"`
	Value      string             `json:"value,omitempty"` // decimal string, e.g. "19.99"
	ReasonCode string             `json:"reason_code,omitempty"`
	ManagerID  string             `json:"manager_id,omitempty"`
}

func (r priceOverrideRequest) toModel() model.PriceOverride {
	return model.PriceOverride{
		Type:       r.Type,
		Value:      model.ParseCents(r.Value),
		ReasonCode: r.ReasonCode,
		ManagerID:  r.ManagerID,
	}
}

type customerRequest struct {
	Email string `json:"email"`
}

type shippingMethodRequest struct {
	MethodID string `json:"shipping_method_id"`
}

type couponRequest struct {
	Code string `json:"code"`
}

type giftCardRequest struct {
	Track1 string `json:"track1,omitempty"`
	Track2 string `json:"track2,omitempty"`
	Amount string `json:"amount,omitempty"` // decimal string; empty = balance due
}

type creditCardRequest struct {
	Token    string `json:"card_token"`
	LastFour string `json:"last_four,omitempty"`
	CardType string `json:"card_type,omitempty"`
	Amount   string `json:"amount,omitempty"` // decimal string; empty = balance due
}

type checkoutStatusRequest struct {
	Status model.CheckoutState `json:"checkout_status"`
}

type abandonRequest struct {
	EmployeeID string `json:"employee_id"`
	Passcode   string `json:"passcode"`
	StoreID    string `json:"store_id,omitempty"`
}

// === Basket aggregate ===

func (h *Handler) handleGetBasket(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.session.Basket())
}

func (h *Handler) handleDeleteBasket(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.DeleteBasket(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.Refresh(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// === Items ===

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.AddProduct(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.UpdateQuantity(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.RemoveProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleItemPriceOverride(w http.ResponseWriter, r *http.Request) {
	var req priceOverrideRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.SetProductPriceOverride(r.Context(), r.PathValue("id"), req.toModel())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleRemoveItemPriceOverride(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.RemoveProductPriceOverride(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// === Addresses and customer ===

func (h *Handler) handleShippingAddress(w http.ResponseWriter, r *http.Request) {
	var addr model.Address
	if err := decodeJSON(r, &addr); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.SetShippingAddress(r.Context(), addr)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleBillingAddress(w http.ResponseWriter, r *http.Request) {
	var addr model.Address
	if err := decodeJSON(r, &addr); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.SetBillingAddress(r.Context(), addr)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.SetCustomerEmail(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// === Shipping method ===

func (h *Handler) handleShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.session.GetShippingMethods(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if methods == nil {
		methods = []model.ShippingMethod{}
	}
	h.writeJSON(w, http.StatusOK, map[string][]model.ShippingMethod{
		"applicable_shipping_methods": methods,
	})
}

func (h *Handler) handleShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req shippingMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.SetShippingMethod(r.Context(), req.MethodID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleShippingPriceOverride(w http.ResponseWriter, r *http.Request) {
	var req priceOverrideRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.SetShippingPriceOverride(r.Context(), req.toModel())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleRemoveShippingPriceOverride(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.RemoveShippingPriceOverride(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// === Coupons ===

func (h *Handler) handleAddCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.AddCoupon(r.Context(), req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.RemoveCoupon(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// === Payment ===

func (h *Handler) handleGiftCardBalance(w http.ResponseWriter, r *http.Request) {
	var req giftCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	balance, err := h.session.GiftCardBalance(r.Context(), basket.GiftCard{Track1: req.Track1, Track2: req.Track2})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"balance": model.FormatCents(balance)})
}

func (h *Handler) handleAuthorizeGiftCard(w http.ResponseWriter, r *http.Request) {
	var req giftCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.AuthorizeGiftCard(r.Context(),
		basket.GiftCard{Track1: req.Track1, Track2: req.Track2},
		model.ParseCents(req.Amount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleRemoveGiftCard(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.RemoveGiftCard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleAuthorizeCreditCard(w http.ResponseWriter, r *http.Request) {
	var req creditCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	card := basket.CreditCard{Token: req.Token, LastFour: req.LastFour, CardType: req.CardType}
	b, err := h.session.AuthorizeCreditCard(r.Context(), card, model.ParseCents(req.Amount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleRemoveCreditCard(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.RemoveCreditCard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// === Checkout and order ===

type checkoutStatusResponse struct {
	Status      model.CheckoutState `json:"checkout_status"`
	Next        model.CheckoutState `json:"next,omitempty"`
	CanCheckout bool                `json:"can_checkout"`
}

func (h *Handler) handleCheckoutStatus(w http.ResponseWriter, r *http.Request) {
	resp := checkoutStatusResponse{
		Status:      h.session.CheckoutStatus(),
		CanCheckout: h.session.CanEnableCheckout(),
	}
	if next, ok := h.session.NextCheckoutState(); ok {
		resp.Next = next
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSetCheckoutStatus(w http.ResponseWriter, r *http.Request) {
	var req checkoutStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.session.SetCheckoutStatus(req.Status); err != nil {
		h.writeError(w, err)
		return
	}
	h.handleCheckoutStatus(w, r)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.CreateOrder(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleAbandonOrder(w http.ResponseWriter, r *http.Request) {
	var req abandonRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.session.AbandonOrder(r.Context(), gateway.AbandonRequest{
		EmployeeID: req.EmployeeID,
		Passcode:   req.Passcode,
		StoreID:    req.StoreID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}
