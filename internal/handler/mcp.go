// MCP transport handler using the official MCP Go SDK.
// Exposes basket operations as tools so an agent collaborator (for example a
// store-assistant bot) can drive the same session the register UI drives.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pos-basket/internal/gateway"
	"pos-basket/internal/model"
)

// === MCP Tool Input Types ===

// GetBasketInput is the input schema for the get_basket tool.
type GetBasketInput struct{}

// AddItemInput is the input schema for the add_item tool.
type AddItemInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID,required"`
	Quantity  int    `json:"quantity" jsonschema:"quantity,required"`
}

// UpdateItemInput is the input schema for the update_item_quantity tool.
type UpdateItemInput struct {
	ItemID   string `json:"item_id" jsonschema:"basket line item ID,required"`
	Quantity int    `json:"quantity" jsonschema:"new quantity; zero removes the line,required"`
}

// SetAddressInput is the input schema for the address tools.
type SetAddressInput struct {
	Address model.Address `json:"address" jsonschema:"postal address,required"`
}

// SetShippingMethodInput is the input schema for the set_shipping_method tool.
type SetShippingMethodInput struct {
	MethodID string `json:"shipping_method_id" jsonschema:"shipping method ID,required"`
}

// PriceOverrideInput is the input schema for the price override tools.
type PriceOverrideInput struct {
	ItemID     string `json:"item_id,omitempty" jsonschema:"line item ID; empty targets the shipping method"`
	Type       string `json:"type" jsonschema:"override type: none, fixed-price, or fixed-price-per-unit,required"`
	Value      string `json:"value,omitempty" jsonschema:"decimal amount, e.g. 19.99"`
	ReasonCode string `json:"reason_code,omitempty" jsonschema:"override reason code"`
	ManagerID  string `json:"manager_id,omitempty" jsonschema:"authorizing manager ID"`
}

// CouponInput is the input schema for the coupon tools.
type CouponInput struct {
	Code string `json:"code" jsonschema:"coupon code,required"`
}

// AbandonOrderInput is the input schema for the abandon_order tool.
type AbandonOrderInput struct {
	EmployeeID string `json:"employee_id" jsonschema:"manager employee ID,required"`
	Passcode   string `json:"passcode" jsonschema:"manager passcode,required"`
	StoreID    string `json:"store_id,omitempty" jsonschema:"store ID"`
}

// NewMCPServer creates an MCP server with basket tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pos-basket",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Point-of-sale basket operations. Use these tools to edit the " +
				"associate's basket, progress checkout, and create or abandon orders.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_basket",
		Description: "Get the current basket with items, totals, and checkout status.",
	}, h.mcpGetBasket)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_item",
		Description: "Add a product to the basket.",
	}, h.mcpAddItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_item_quantity",
		Description: "Change a line item's quantity. Quantity zero removes the line.",
	}, h.mcpUpdateItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_shipping_address",
		Description: "Set the shipping address. Refreshes the applicable shipping methods.",
	}, h.mcpSetShippingAddress)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_shipping_method",
		Description: "Select a shipping method by ID.",
	}, h.mcpSetShippingMethod)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_price_override",
		Description: "Apply a manager price override to a line item, or to the shipping method when item_id is empty. Type none removes the override.",
	}, h.mcpSetPriceOverride)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_coupon",
		Description: "Apply a coupon code to the basket. Already-applied codes are a no-op.",
	}, h.mcpApplyCoupon)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_coupon",
		Description: "Remove an applied coupon code.",
	}, h.mcpRemoveCoupon)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_order",
		Description: "Turn the basket into an order. The basket must have items, an address or store fulfillment, and a shipping method.",
	}, h.mcpCreateOrder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "abandon_order",
		Description: "Abandon a created order and restore the editable basket. Requires manager credentials.",
	}, h.mcpAbandonOrder)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpGetBasket(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetBasketInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	return nil, h.session.Basket(), nil
}

func (h *Handler) mcpAddItem(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AddItemInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.AddProduct(ctx, input.ProductID, input.Quantity)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpUpdateItem(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input UpdateItemInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.UpdateQuantity(ctx, input.ItemID, input.Quantity)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpSetShippingAddress(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SetAddressInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.SetShippingAddress(ctx, input.Address)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpSetShippingMethod(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SetShippingMethodInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.SetShippingMethod(ctx, input.MethodID)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpSetPriceOverride(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input PriceOverrideInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	ov := model.PriceOverride{
		Type:       model.OverrideType(input.Type),
		Value:      model.ParseCents(input.Value),
		ReasonCode: input.ReasonCode,
		ManagerID:  input.ManagerID,
	}

	var (
		b   *model.Basket
		err error
	)
	if input.ItemID == "" {
		b, err = h.session.SetShippingPriceOverride(ctx, ov)
	} else {
		b, err = h.session.SetProductPriceOverride(ctx, input.ItemID, ov)
	}
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpApplyCoupon(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CouponInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.AddCoupon(ctx, input.Code)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpRemoveCoupon(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CouponInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.RemoveCoupon(ctx, input.Code)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpCreateOrder(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetBasketInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.CreateOrder(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

func (h *Handler) mcpAbandonOrder(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AbandonOrderInput,
) (*mcp.CallToolResult, *model.Basket, error) {
	b, err := h.session.AbandonOrder(ctx, gateway.AbandonRequest{
		EmployeeID: input.EmployeeID,
		Passcode:   input.Passcode,
		StoreID:    input.StoreID,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, b, nil
}

// mcpError converts session faults to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var fault *model.Fault
	if errors.As(err, &fault) {
		return fmt.Errorf("%s: %s", fault.Code, fault.UserMessage())
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
