// Package handler provides the HTTP surface for the basket service.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"pos-basket/internal/basket"
	"pos-basket/internal/model"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	session *basket.Session
	logger  *slog.Logger
}

// New creates a new Handler around a basket session.
func New(session *basket.Session, logger *slog.Logger) *Handler {
	return &Handler{
		session: session,
		logger:  logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Basket aggregate
	mux.HandleFunc("GET /basket", h.handleGetBasket)
	mux.HandleFunc("DELETE /basket", h.handleDeleteBasket)
	mux.HandleFunc("POST /basket/refresh", h.handleRefresh)

	// Items and overrides
	mux.HandleFunc("POST /basket/items", h.handleAddItem)
	mux.HandleFunc("PUT /basket/items/{id}", h.handleUpdateItem)
	mux.HandleFunc("DELETE /basket/items/{id}", h.handleRemoveItem)
	mux.HandleFunc("PUT /basket/items/{id}/price-override", h.handleItemPriceOverride)
	mux.HandleFunc("DELETE /basket/items/{id}/price-override", h.handleRemoveItemPriceOverride)

	// Addresses and customer
	mux.HandleFunc("PUT /basket/shipping-address", h.handleShippingAddress)
	mux.HandleFunc("PUT /basket/billing-address", h.handleBillingAddress)
	mux.HandleFunc("PUT /basket/customer", h.handleCustomer)

	// Shipping method and override
	mux.HandleFunc("GET /basket/shipping-methods", h.handleShippingMethods)
	mux.HandleFunc("PUT /basket/shipping-method", h.handleShippingMethod)
	mux.HandleFunc("PUT /basket/shipping-method/price-override", h.handleShippingPriceOverride)
	mux.HandleFunc("DELETE /basket/shipping-method/price-override", h.handleRemoveShippingPriceOverride)

	// Coupons
	mux.HandleFunc("POST /basket/coupons", h.handleAddCoupon)
	mux.HandleFunc("DELETE /basket/coupons/{code}", h.handleRemoveCoupon)

	// Payment
	mux.HandleFunc("POST /basket/payment/gift-card/balance", h.handleGiftCardBalance)
	mux.HandleFunc("POST /basket/payment/gift-card", h.handleAuthorizeGiftCard)
	mux.HandleFunc("DELETE /basket/payment/gift-card", h.handleRemoveGiftCard)
	mux.HandleFunc("POST /basket/payment/credit-card", h.handleAuthorizeCreditCard)
	mux.HandleFunc("DELETE /basket/payment/credit-card", h.handleRemoveCreditCard)

	// Checkout progression and order lifecycle
	mux.HandleFunc("GET /basket/checkout", h.handleCheckoutStatus)
	mux.HandleFunc("PUT /basket/checkout", h.handleSetCheckoutStatus)
	mux.HandleFunc("POST /basket/order", h.handleCreateOrder)
	mux.HandleFunc("POST /basket/order/abandon", h.handleAbandonOrder)

	// Change stream
	mux.HandleFunc("GET /basket/events", h.handleEvents)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, mapping Fault types to HTTP statuses.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var fault *model.Fault

	if !errors.As(err, &fault) {
		h.logger.Error("internal error", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorBody{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
		})
		return
	}

	h.writeJSON(w, statusForFault(fault.Type), errorResponse{
		Error: errorBody{Code: fault.Code, Message: fault.UserMessage()},
	})
}

// statusForFault maps a fault classification to its HTTP status.
func statusForFault(t model.FaultType) int {
	switch t {
	case model.FaultConflict:
		return http.StatusConflict
	case model.FaultValidation:
		return http.StatusBadRequest
	case model.FaultAuthorization:
		return http.StatusForbidden
	case model.FaultNotFound:
		return http.StatusNotFound
	case model.FaultGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
func decodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationFault("body", "invalid JSON")
	}
	return nil
}
